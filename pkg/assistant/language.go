package assistant

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AutoCode is the tag that asks the model to answer in the question's own language.
const AutoCode = "auto"

// DefaultLanguageCode is used when no fallback language is configured.
const DefaultLanguageCode = "en"

// Language is a resolved response language.
type Language struct {
	// Code is an ISO 639-1 code, or AutoCode.
	Code string
	// Name is the English name used in prompt directives.
	Name string
}

// Auto lets the model mirror the language of the question.
var Auto = Language{Code: AutoCode, Name: "Auto-detect"}

// supported is the fixed set of response languages.
var supported = []Language{
	{Code: "en", Name: "English"},
	{Code: "ar", Name: "Arabic"},
	{Code: "de", Name: "German"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "hi", Name: "Hindi"},
	{Code: "it", Name: "Italian"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ru", Name: "Russian"},
	{Code: "zh", Name: "Chinese"},
	{Code: "bn", Name: "Bengali"},
	{Code: "ta", Name: "Tamil"},
	{Code: "te", Name: "Telugu"},
	{Code: "th", Name: "Thai"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "tr", Name: "Turkish"},
	{Code: "vi", Name: "Vietnamese"},
	{Code: "kn", Name: "Kannada"},
}

// Directive is the instruction embedded in a prompt to select the answer language.
func (l Language) Directive() string {
	if l.Code == AutoCode {
		return "Respond in the same language the question is written in."
	}
	return fmt.Sprintf("Respond in %s.", l.Name)
}

// IsAuto reports whether the language is left to the model.
func (l Language) IsAuto() bool {
	return l.Code == AutoCode
}

func (l Language) String() string {
	return l.Name
}

// Languages resolves language tags against the supported set.
type Languages struct {
	fallback Language
}

// NewLanguages creates a handler whose absent-tag fallback is defaultTag.
// An empty defaultTag selects English. A defaultTag outside the supported
// set is an error.
func NewLanguages(defaultTag string) (*Languages, error) {
	if strings.TrimSpace(defaultTag) == "" {
		defaultTag = DefaultLanguageCode
	}
	fallback, ok := lookup(defaultTag)
	if !ok {
		return nil, fmt.Errorf("default language: %w", &UnsupportedLanguageError{Tag: defaultTag})
	}
	return &Languages{fallback: fallback}, nil
}

// Default returns the fallback language.
func (l *Languages) Default() Language {
	return l.fallback
}

// Resolve maps an optional tag to a supported language. An absent tag yields
// the fallback. Tags may be ISO 639-1 codes, BCP 47 tags (reduced to their
// base language), English language names, or AutoCode; matching is
// case-insensitive.
func (l *Languages) Resolve(tag string) (Language, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return l.fallback, nil
	}
	lang, ok := lookup(tag)
	if !ok {
		return Language{}, &UnsupportedLanguageError{Tag: tag}
	}
	return lang, nil
}

// Supported returns the supported languages, English first.
func (l *Languages) Supported() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// Names returns the sorted English names of the supported languages.
func (l *Languages) Names() []string {
	return supportedNames()
}

func supportedNames() []string {
	names := make([]string, 0, len(supported))
	for _, lang := range supported {
		names = append(names, lang.Name)
	}
	sort.Strings(names)
	return names
}

// English is the pivot language for translation and section extraction.
func English() Language {
	return supported[0]
}

func lookup(tag string) (Language, bool) {
	folded := cases.Fold().String(strings.TrimSpace(tag))
	if folded == AutoCode {
		return Auto, true
	}
	for _, lang := range supported {
		if cases.Fold().String(lang.Name) == folded {
			return lang, true
		}
	}
	code := BaseCode(tag)
	for _, lang := range supported {
		if lang.Code == code {
			return lang, true
		}
	}
	return Language{}, false
}

// BaseCode reduces a language tag to its base language code.
// Examples:
//   - "EN" -> "en"
//   - "fr-CA" -> "fr"
//   - "pt_BR" -> "pt"
//
// Tags that do not parse yield "".
func BaseCode(tag string) string {
	t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if err != nil {
		return ""
	}
	base, _ := t.Base()
	return base.String()
}
