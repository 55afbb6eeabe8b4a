package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the question is empty after normalization.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnsupportedLanguage matches every *UnsupportedLanguageError.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrEmptyResponse is returned when the model reports success with no text.
	ErrEmptyResponse = errors.New("empty model response")
)

// UnsupportedLanguageError reports a language tag outside the supported set.
type UnsupportedLanguageError struct {
	Tag string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q", e.Tag)
}

func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}
