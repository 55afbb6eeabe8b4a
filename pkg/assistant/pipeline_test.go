package assistant

import (
	"errors"
	"strings"
	"testing"

	"github.com/dasmlab/pharmagen/pkg/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"What is ibuprofen used for?", "What is ibuprofen used for?"},
		{"  padded question \n", "padded question"},
		{"\t nbsp around ", "nbsp around"},
		{"café", "café"},
		{"keeps  inner   spacing", "keeps  inner   spacing"},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.raw)
		if err != nil {
			t.Errorf("Normalize(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		if strings.TrimSpace(got) != got {
			t.Errorf("Normalize(%q) left surrounding whitespace", tt.raw)
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, raw := range []string{"", " ", "\n\r\t", "  "} {
		if _, err := Normalize(raw); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Normalize(%q): expected ErrEmptyInput, got %v", raw, err)
		}
	}
}

func TestLanguagesResolve(t *testing.T) {
	langs, err := NewLanguages("en")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tag       string
		wantCode  string
		directive string
	}{
		{"", "en", "Respond in English."},
		{"   ", "en", "Respond in English."},
		{"es", "es", "Respond in Spanish."},
		{"ES", "es", "Respond in Spanish."},
		{"fr-CA", "fr", "Respond in French."},
		{"pt_BR", "pt", "Respond in Portuguese."},
		{"zh-Hant-TW", "zh", "Respond in Chinese."},
		{"german", "de", "Respond in German."},
		{"  Japanese ", "ja", "Respond in Japanese."},
		{"auto", "auto", "Respond in the same language the question is written in."},
		{"AUTO", "auto", "Respond in the same language the question is written in."},
	}
	for _, tt := range tests {
		lang, err := langs.Resolve(tt.tag)
		if err != nil {
			t.Errorf("Resolve(%q): unexpected error %v", tt.tag, err)
			continue
		}
		if lang.Code != tt.wantCode {
			t.Errorf("Resolve(%q) = %q, want %q", tt.tag, lang.Code, tt.wantCode)
		}
		if lang.Directive() != tt.directive {
			t.Errorf("Resolve(%q).Directive() = %q, want %q", tt.tag, lang.Directive(), tt.directive)
		}
	}
}

func TestLanguagesResolve_Unsupported(t *testing.T) {
	langs, _ := NewLanguages("")
	for _, tag := range []string{"xx", "he", "nl", "klingon", "english please", "12"} {
		_, err := langs.Resolve(tag)
		var langErr *UnsupportedLanguageError
		if !errors.As(err, &langErr) {
			t.Errorf("Resolve(%q): expected UnsupportedLanguageError, got %v", tag, err)
			continue
		}
		if langErr.Tag != tag || !errors.Is(err, ErrUnsupportedLanguage) {
			t.Errorf("Resolve(%q): unexpected error %v", tag, err)
		}
	}
}

func TestNewLanguages_Default(t *testing.T) {
	langs, err := NewLanguages("hindi")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := langs.Resolve(""); got.Code != "hi" {
		t.Errorf("expected configured fallback hi, got %q", got.Code)
	}
	if _, err := NewLanguages("nl"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("expected error for unsupported default, got %v", err)
	}
}

func TestLanguagesNames(t *testing.T) {
	langs, _ := NewLanguages("")
	names := langs.Names()
	if len(names) != 20 || names[0] != "Arabic" || names[len(names)-1] != "Vietnamese" {
		t.Errorf("unexpected names %v", names)
	}
	if langs.Supported()[0] != English() {
		t.Errorf("expected English first")
	}
}

func TestBaseCode(t *testing.T) {
	for in, want := range map[string]string{"EN": "en", "fr-CA": "fr", "en_US": "en", "": "", "not a tag": ""} {
		if got := BaseCode(in); got != want {
			t.Errorf("BaseCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt("What is ibuprofen used for?", "Respond in English.")
	b := BuildPrompt("What is ibuprofen used for?", "Respond in English.")
	if a != b {
		t.Fatal("expected identical prompts for identical inputs")
	}
	if !strings.Contains(a.Instruction, "pharmacology assistant") {
		t.Error("expected domain framing in instruction")
	}
	if !strings.HasSuffix(a.Instruction, "Question: What is ibuprofen used for?") {
		t.Errorf("expected question at the end of the instruction, got %q", a.Instruction)
	}
	if a.Directive != "Respond in English." {
		t.Errorf("unexpected directive %q", a.Directive)
	}
	if c := BuildPrompt("What is ibuprofen used for?", "Respond in French."); c == a {
		t.Error("expected different directive to change the prompt")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"trim", "  Ibuprofen is a pain reliever...  \n", "Ibuprofen is a pain reliever..."},
		{"fence", "```markdown\n**Aspirin** thins blood.\n```", "**Aspirin** thins blood."},
		{"two fences kept", "```\na\n```\ntext\n```\nb\n```", "```\na\n```\ntext\n```\nb\n```"},
		{"blank runs", "Uses:\n\n\n\nPain.\n \n\t\nFever.", "Uses:\n\nPain.\n\nFever."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(model.OK(tt.body))
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat_EmptyBody(t *testing.T) {
	for _, body := range []string{"", "  ", "```\n\n```", "```\n```", "```json\n```"} {
		if _, err := Format(model.OK(body)); !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("Format(%q): expected ErrEmptyResponse, got %v", body, err)
		}
	}
}

func TestFormat_ErrorStatus(t *testing.T) {
	_, err := Format(model.Failed(model.KindQuota, "429 from upstream"))
	if !errors.Is(err, model.ErrModelQuota) {
		t.Fatalf("expected quota error, got %v", err)
	}

	_, err = Format(model.Response{Status: model.StatusError})
	if !errors.Is(err, model.ErrModelUnavailable) {
		t.Fatalf("expected unavailable for error status without detail, got %v", err)
	}
}

func TestUserMessage_NoDiagnostics(t *testing.T) {
	detail := "googleapi: Error 500: backend stack trace at node-17"
	errs := []error{
		ErrEmptyInput,
		&UnsupportedLanguageError{Tag: "xx"},
		ErrEmptyResponse,
		&model.Error{Kind: model.KindUnavailable, Detail: detail},
		&model.Error{Kind: model.KindQuota, Detail: detail},
		&model.Error{Kind: model.KindAuth, Detail: detail},
		&model.Error{Kind: model.KindRejected, Detail: detail},
		errors.New(detail),
	}
	seen := map[string]bool{}
	for _, err := range errs {
		msg := UserMessage(err)
		if msg == "" {
			t.Errorf("%v: empty user message", err)
		}
		if strings.Contains(msg, "stack trace") || strings.Contains(msg, "googleapi") {
			t.Errorf("%v: user message leaks diagnostics: %q", err, msg)
		}
		seen[msg] = true
	}
	if len(seen) != len(errs) {
		t.Errorf("expected a distinct message per failure kind, got %d distinct for %d errors", len(seen), len(errs))
	}
	if UserMessage(nil) != "" {
		t.Error("expected empty message for nil error")
	}
	if !strings.Contains(UserMessage(&UnsupportedLanguageError{Tag: "xx"}), "Spanish") {
		t.Error("expected supported languages to be listed")
	}
}
