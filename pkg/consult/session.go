// Package consult implements the guided consultation: the user picks a
// language, describes symptoms and allergies, receives an assessment and can
// then ask follow-up questions about it.
package consult

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dasmlab/pharmagen/pkg/assistant"
	"github.com/dasmlab/pharmagen/pkg/model"
	"github.com/sirupsen/logrus"
)

// Stage is the step of the consultation the next message answers.
type Stage int

const (
	StageLanguage Stage = iota
	StageSymptoms
	StageAllergies
	StageFollowUp
)

func (s Stage) String() string {
	switch s {
	case StageLanguage:
		return "language"
	case StageSymptoms:
		return "symptoms"
	case StageAllergies:
		return "allergies"
	case StageFollowUp:
		return "follow_up"
	default:
		return "unknown"
	}
}

// Canned messages, written in English and translated for the user.
const (
	msgGreeting        = "Welcome to PharmaGEN. Which language would you like to use?"
	msgLanguageChosen  = "Thank you. Your selected language is %s."
	msgAskSymptoms     = "Please describe your symptoms."
	msgSymptomsEmpty   = "Please describe your symptoms so I can assist you."
	msgAskAllergies    = "Thank you for sharing your symptoms. Do you have any known allergies? If none, please say 'None'."
	msgFollowUpInvite  = "You can now ask follow-up questions about this assessment."
	msgFollowUpEmpty   = "Please enter a question about your assessment."
	noAllergiesDefault = "None"
)

// Session is one user's consultation. It is not safe for concurrent use;
// a session belongs to a single conversation loop.
type Session struct {
	assistant *assistant.Assistant
	logger    *logrus.Logger

	stage    Stage
	language assistant.Language

	symptoms     string
	symptomsEN   string
	allergies    string
	allergiesEN  string
	assessmentEN string
}

// NewSession starts a consultation at StageLanguage.
func NewSession(a *assistant.Assistant) *Session {
	s := &Session{
		assistant: a,
		logger:    a.Logger,
	}
	s.Reset()
	return s
}

// Greeting is the first message of a consultation.
func (s *Session) Greeting() string {
	return msgGreeting + "\n" + s.languageList()
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	return s.stage
}

// Language returns the language chosen for the consultation. It is the
// zero Language before StageSymptoms.
func (s *Session) Language() assistant.Language {
	return s.language
}

// Reset discards everything collected and returns to StageLanguage.
func (s *Session) Reset() {
	*s = Session{
		assistant: s.assistant,
		logger:    s.logger,
		stage:     StageLanguage,
	}
}

// Handle processes one user message and returns the reply in the user's
// language. A returned error ends the current turn without advancing the
// stage.
func (s *Session) Handle(ctx context.Context, msg string) (string, error) {
	startTime := time.Now()
	stage := s.stage

	var (
		reply string
		err   error
	)
	switch s.stage {
	case StageLanguage:
		reply = s.chooseLanguage(ctx, msg)
	case StageSymptoms:
		reply = s.recordSymptoms(ctx, msg)
	case StageAllergies:
		reply, err = s.assess(ctx, msg)
	case StageFollowUp:
		reply, err = s.followUp(ctx, msg)
	default:
		err = fmt.Errorf("unknown consultation stage %d", s.stage)
	}

	fields := logrus.Fields{
		"stage":       stage.String(),
		"next_stage":  s.stage.String(),
		"language":    s.language.Code,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Warn("Consultation turn failed")
		return "", err
	}
	s.logger.WithFields(fields).Debug("Consultation turn completed")
	return reply, nil
}

func (s *Session) chooseLanguage(ctx context.Context, msg string) string {
	tag := strings.TrimSpace(msg)
	lang, err := s.assistant.Languages.Resolve(tag)
	if tag == "" || err != nil {
		return fmt.Sprintf("Sorry, '%s' is not a supported language. Please select from: %s", tag, s.languageList())
	}

	s.language = lang
	s.stage = StageSymptoms
	return s.localize(ctx, fmt.Sprintf(msgLanguageChosen, lang.Name)) + "\n\n" + s.localize(ctx, msgAskSymptoms)
}

func (s *Session) recordSymptoms(ctx context.Context, msg string) string {
	text := strings.TrimSpace(msg)
	if text == "" {
		return s.localize(ctx, msgSymptomsEmpty)
	}

	s.symptoms = text
	s.symptomsEN = s.toEnglish(ctx, text)
	s.stage = StageAllergies
	return s.localize(ctx, msgAskAllergies)
}

func (s *Session) assess(ctx context.Context, msg string) (string, error) {
	allergies := strings.TrimSpace(msg)
	if allergies == "" {
		allergies = noAllergiesDefault
	}
	allergiesEN := s.toEnglish(ctx, allergies)

	assessment, err := s.assistant.Complete(ctx, assessmentPrompt(s.symptomsEN, allergiesEN))
	if err != nil {
		return "", fmt.Errorf("assessment failed: %w", err)
	}

	s.allergies = allergies
	s.allergiesEN = allergiesEN
	s.assessmentEN = assessment
	s.stage = StageFollowUp

	s.logger.WithFields(logrus.Fields{
		"language":          s.language.Code,
		"assessment_length": len(assessment),
	}).Info("Consultation assessment generated")

	return s.fromEnglish(ctx, assessment) + "\n\n" + s.localize(ctx, msgFollowUpInvite), nil
}

func (s *Session) followUp(ctx context.Context, msg string) (string, error) {
	question := strings.TrimSpace(msg)
	if question == "" {
		return s.localize(ctx, msgFollowUpEmpty), nil
	}

	answer, err := s.assistant.Complete(ctx, followUpPrompt(s.symptomsEN, s.allergiesEN, s.assessmentEN, s.toEnglish(ctx, question)))
	if err != nil {
		return "", fmt.Errorf("follow-up failed: %w", err)
	}
	return s.fromEnglish(ctx, answer), nil
}

// localize translates a canned English message into the session language.
func (s *Session) localize(ctx context.Context, text string) string {
	return s.fromEnglish(ctx, text)
}

func (s *Session) toEnglish(ctx context.Context, text string) string {
	return s.assistant.TranslateOrKeep(ctx, text, s.sourceLanguage(), assistant.English())
}

func (s *Session) fromEnglish(ctx context.Context, text string) string {
	return s.assistant.TranslateOrKeep(ctx, text, assistant.English(), s.language)
}

// sourceLanguage is the language user messages are assumed to be written in.
func (s *Session) sourceLanguage() assistant.Language {
	if s.language.Code == "" {
		return assistant.Auto
	}
	return s.language
}

func (s *Session) languageList() string {
	return strings.Join(s.assistant.Languages.Names(), ", ")
}

func assessmentPrompt(symptoms, allergies string) model.Prompt {
	var b strings.Builder
	b.WriteString("Based on the following symptoms and allergies, provide:\n")
	b.WriteString("1. A potential diagnosis\n")
	b.WriteString("2. A hypothetical new drug concept that could treat this condition\n")
	b.WriteString("3. Hypothetical dosage instructions\n")
	b.WriteString("4. Safety considerations related to the patient's allergies\n\n")
	fmt.Fprintf(&b, "Symptoms: %s\nAllergies: %s\n\n", symptoms, allergies)
	b.WriteString("Format your response with these exact headings:\n")
	for _, h := range []string{HeadingDiagnosis, HeadingDrug, HeadingDosage, HeadingSafety} {
		b.WriteString(h + "\n")
	}
	return model.Prompt{
		Instruction: strings.TrimRight(b.String(), "\n"),
		Directive:   "Respond in English.",
	}
}

func followUpPrompt(symptoms, allergies, assessment, question string) model.Prompt {
	return model.Prompt{
		Instruction: fmt.Sprintf(
			"Previous symptoms: %s\nPrevious allergies: %s\nPrevious diagnosis and drug concept: %s\n\nUser question: %s",
			symptoms, allergies, assessment, question),
		Directive: "Respond in English, in a clear, concise way that would be easy to translate to another language.",
	}
}
