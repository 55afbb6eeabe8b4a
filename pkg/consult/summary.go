package consult

import (
	"context"
	"fmt"
	"strings"

	"github.com/dasmlab/pharmagen/pkg/assistant"
)

// Disclaimer closes every consultation report.
const Disclaimer = "This is an AI-generated report for conceptual purposes only. Consult a medical professional."

type reportField struct {
	title string
	body  string
}

// HasAssessment reports whether the consultation has produced an assessment.
func (s *Session) HasAssessment() bool {
	return s.assessmentEN != ""
}

// Sections returns the headed sections of the assessment.
func (s *Session) Sections() Sections {
	return ExtractSections(s.assessmentEN)
}

// Summary renders the consultation as an English markdown report. It is
// empty until an assessment exists.
func (s *Session) Summary() string {
	if !s.HasAssessment() {
		return ""
	}
	return renderReport("PharmaGEN Consultation Report", s.reportFields(s.symptomsEN, s.allergiesEN, s.Sections()))
}

// LocalizedSummary renders the report in the consultation language. Titles
// and section bodies are translated; symptoms and allergies are shown as the
// user wrote them. Translation failures keep the English text.
func (s *Session) LocalizedSummary(ctx context.Context) string {
	if !s.HasAssessment() {
		return ""
	}
	if s.language.IsAuto() || s.language.Code == assistant.English().Code {
		return s.Summary()
	}

	sec := s.Sections()
	translated := Sections{
		Diagnosis: s.fromEnglish(ctx, sec.Diagnosis),
		Drug:      s.fromEnglish(ctx, sec.Drug),
		Dosage:    s.fromEnglish(ctx, sec.Dosage),
		Safety:    s.fromEnglish(ctx, sec.Safety),
	}
	fields := s.reportFields(s.symptoms, s.allergies, translated)
	for i := range fields {
		fields[i].title = s.fromEnglish(ctx, fields[i].title)
	}
	title := s.fromEnglish(ctx, "PharmaGEN Consultation Report")
	return renderReport(title, fields)
}

func (s *Session) reportFields(symptoms, allergies string, sec Sections) []reportField {
	return []reportField{
		{"Symptoms", symptoms},
		{"Allergies", allergies},
		{"Diagnosis", sec.Diagnosis},
		{"Drug Concept", sec.Drug},
		{"Dosage", sec.Dosage},
		{"Safety", sec.Safety},
	}
}

func renderReport(title string, fields []reportField) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for _, f := range fields {
		fmt.Fprintf(&b, "### %s:\n%s\n\n", f.title, f.body)
	}
	b.WriteString("**Disclaimer:** " + Disclaimer)
	return b.String()
}
