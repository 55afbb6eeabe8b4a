package assistant

import (
	"strings"

	"github.com/dasmlab/pharmagen/pkg/model"
)

// framing sets the assistant's role for every question.
const framing = `You are PharmaGEN, a pharmacology assistant. Answer the user's question about medicines, drugs and their effects clearly and accurately.
Where relevant, cover:
- what the drug is used for
- how it works
- typical adult dosage ranges
- common and serious side effects
- important interactions and contraindications
Keep the answer concise and easy to translate. If the question is not about pharmacology or health, say so briefly.
End with a short reminder to consult a doctor or pharmacist before taking or changing any medication.`

// BuildPrompt composes the prompt for a normalized question and a language
// directive. It is deterministic and has no side effects.
func BuildPrompt(text, directive string) model.Prompt {
	var sb strings.Builder
	sb.WriteString(framing)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(text)
	return model.Prompt{
		Instruction: sb.String(),
		Directive:   directive,
	}
}
