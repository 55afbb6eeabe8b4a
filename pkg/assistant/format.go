package assistant

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dasmlab/pharmagen/pkg/model"
)

var (
	// fenced matches an answer wrapped entirely in a single markdown code fence.
	fenced = regexp.MustCompile("(?s)^```[a-zA-Z]*\\n(.*?)\\n?```$")
	// blankRun matches three or more consecutive line breaks.
	blankRun = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)
)

// Format validates a model response and turns it into a displayable answer.
// Failed responses return their *model.Error; successful responses with no
// text return ErrEmptyResponse.
func Format(resp model.Response) (string, error) {
	if resp.Status == model.StatusError {
		if resp.Err == nil {
			return "", &model.Error{Kind: model.KindUnavailable}
		}
		return "", resp.Err
	}

	text := strings.TrimSpace(resp.Body)
	if m := fenced.FindStringSubmatch(text); m != nil && !strings.Contains(m[1], "```") {
		text = strings.TrimSpace(m[1])
	}
	text = blankRun.ReplaceAllString(text, "\n\n")
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// UserMessage describes err for end users. It never includes backend
// diagnostics.
func UserMessage(err error) string {
	var langErr *UnsupportedLanguageError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "Please enter a question."
	case errors.As(err, &langErr):
		return "Sorry, that language is not supported. Supported languages: " + strings.Join(supportedNames(), ", ") + "."
	case errors.Is(err, ErrEmptyResponse):
		return "The model returned an empty answer. Please try rephrasing your question."
	case errors.Is(err, model.ErrModelQuota):
		return "Rate limit exceeded. Please try again later."
	case errors.Is(err, model.ErrModelAuth):
		return "The model service rejected our credentials. Check your API key."
	case errors.Is(err, model.ErrModelRejected):
		return "The model declined to answer this request. Please rephrase your question."
	case errors.Is(err, model.ErrModelUnavailable):
		return "The model service is currently unavailable. Please try again in a moment."
	default:
		return "Something went wrong while answering your question. Please try again."
	}
}
