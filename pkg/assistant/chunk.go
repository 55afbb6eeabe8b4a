package assistant

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the largest text, in bytes, sent to the model in one
// translation request.
const DefaultChunkSize = 4 * 1024

// splitIntoChunks splits text into chunks of at most maxChunkSize bytes,
// breaking at paragraph boundaries first and sentence boundaries second.
// A single sentence longer than maxChunkSize becomes its own chunk.
func splitIntoChunks(text string, maxChunkSize int) []string {
	if len(text) <= maxChunkSize {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		if current.Len() > 0 && current.Len()+len(para)+2 > maxChunkSize {
			flush()
		}

		if len(para) <= maxChunkSize {
			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
			continue
		}

		// Paragraph alone is too large: split it by sentences.
		flush()
		for _, sentence := range splitBySentences(para) {
			if current.Len() > 0 && current.Len()+len(sentence)+1 > maxChunkSize {
				flush()
			}
			if current.Len() > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(sentence)
		}
		flush()
	}
	flush()

	return chunks
}

// splitBySentences splits text after sentence-ending punctuation. ASCII
// terminators need following whitespace; CJK full-width terminators do not.
func splitBySentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		end := false
		switch r {
		case '.', '!', '?':
			if next, _ := utf8.DecodeRuneInString(text[i+utf8.RuneLen(r):]); next == ' ' || next == '\n' || next == '\t' {
				end = true
			}
		case '。', '！', '？':
			end = true
		}
		if end {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
