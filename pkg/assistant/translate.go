package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/dasmlab/pharmagen/pkg/model"
	"github.com/sirupsen/logrus"
)

// Translate translates text between two languages with the model. Empty
// text yields "", and text whose source and target match is returned
// unchanged. Long text is translated in chunks which are re-joined with
// blank lines.
func (a *Assistant) Translate(ctx context.Context, text string, from, to Language) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if to.IsAuto() || (!from.IsAuto() && from.Code == to.Code) {
		return text, nil
	}

	chunks := splitIntoChunks(text, a.chunkSize)
	if len(chunks) > 1 {
		a.Logger.WithFields(logrus.Fields{
			"text_length":  len(text),
			"total_chunks": len(chunks),
			"source_lang":  from.Code,
			"target_lang":  to.Code,
		}).Info("Translating long text in chunks")
	}

	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := a.Complete(ctx, translationPrompt(chunk, from, to))
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d translation failed: %w", i+1, len(chunks), err)
		}
		translated = append(translated, out)
	}

	a.Logger.WithFields(logrus.Fields{
		"source_lang":       from.Code,
		"target_lang":       to.Code,
		"original_length":   len(text),
		"translated_length": len(strings.Join(translated, "")),
	}).Debug("Translation completed")

	return strings.Join(translated, "\n\n"), nil
}

// TranslateOrKeep translates text and falls back to the source text when the
// model fails.
func (a *Assistant) TranslateOrKeep(ctx context.Context, text string, from, to Language) string {
	out, err := a.Translate(ctx, text, from, to)
	if err != nil {
		a.Logger.WithError(err).WithFields(logrus.Fields{
			"source_lang": from.Code,
			"target_lang": to.Code,
		}).Warn("Translation failed, keeping source text")
		return text
	}
	return out
}

// TranslationTemperature is the sampling temperature for translations.
const TranslationTemperature float32 = 0.1

func translationPrompt(text string, from, to Language) model.Prompt {
	instruction := fmt.Sprintf("Translate the following text to %s:", to.Name)
	if !from.IsAuto() {
		instruction = fmt.Sprintf("Translate the following text from %s to %s:", from.Name, to.Name)
	}
	temp := TranslationTemperature
	return model.Prompt{
		Instruction: instruction + "\n\n" + text,
		Directive:   "Reply with the translation only.",
		Temperature: &temp,
	}
}
