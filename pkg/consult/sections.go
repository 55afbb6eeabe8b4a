package consult

import (
	"regexp"
	"strings"
)

// Headings the assessment prompt asks the model to use, in order.
const (
	HeadingDiagnosis = "Diagnosis:"
	HeadingDrug      = "Proposed New Drug:"
	HeadingDosage    = "Hypothetical Dosage/Instructions:"
	HeadingSafety    = "Allergy/Safety Note:"
)

// NotFound is the value of a section missing from the model's reply.
const NotFound = "Not found"

// Sections holds the headed parts of an assessment.
type Sections struct {
	Diagnosis string
	Drug      string
	Dosage    string
	Safety    string
}

var sectionPatterns = func() [4]*regexp.Regexp {
	headings := []string{HeadingDiagnosis, HeadingDrug, HeadingDosage, HeadingSafety}
	var out [4]*regexp.Regexp
	for i, h := range headings {
		stops := make([]string, 0, len(headings)-i)
		for _, next := range headings[i+1:] {
			stops = append(stops, regexp.QuoteMeta(next))
		}
		stops = append(stops, "$")
		out[i] = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(h) + `(.*?)(?:` + strings.Join(stops, "|") + `)`)
	}
	return out
}()

// ExtractSections pulls the four headed sections out of an assessment.
// Headings match case-insensitively and each section runs until the next
// later heading. Missing sections are NotFound.
func ExtractSections(text string) Sections {
	var found [4]string
	for i, re := range sectionPatterns {
		found[i] = NotFound
		if m := re.FindStringSubmatch(text); m != nil {
			found[i] = cleanSection(m[1])
		}
	}
	return Sections{
		Diagnosis: found[0],
		Drug:      found[1],
		Dosage:    found[2],
		Safety:    found[3],
	}
}

// cleanSection trims whitespace and the markdown emphasis models tend to put
// around headings.
func cleanSection(s string) string {
	s = strings.Trim(s, "*_# \t\r\n")
	if s == "" {
		return NotFound
	}
	return s
}
