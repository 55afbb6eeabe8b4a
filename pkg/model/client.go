package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Client defines the interface for generative-model backends.
// This abstraction allows us to switch between different model APIs
// (native Gemini, OpenAI-compatible) without changing the assistant pipeline.
type Client interface {
	// Submit sends the prompt to the model and returns its tagged result.
	// Submit never returns a nil-equivalent: failures are reported through
	// Response.Status and Response.Err.
	Submit(ctx context.Context, p Prompt) Response

	// CheckHealth verifies that the model backend is reachable and the
	// configured model exists.
	CheckHealth(ctx context.Context) error
}

// Prompt is the structured text sent to a model.
type Prompt struct {
	// Instruction carries the domain framing and the user's question.
	Instruction string
	// Directive tells the model which language to answer in.
	Directive string
	// Temperature overrides the client's sampling temperature when set.
	Temperature *float32
}

// TemperatureOr returns the prompt's temperature, or def if it has none.
func (p Prompt) TemperatureOr(def float32) float32 {
	if p.Temperature == nil {
		return def
	}
	return *p.Temperature
}

// Text renders the prompt as the single string sent to the model.
func (p Prompt) Text() string {
	if p.Directive == "" {
		return p.Instruction
	}
	return p.Instruction + "\n\n" + p.Directive
}

// Status tags a Response as successful or failed.
type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Response is the result of a Submit call.
// Body is only meaningful when Status is StatusOK, Err only when it is StatusError.
type Response struct {
	Status Status
	Body   string
	Err    *Error
}

// OK builds a successful response.
func OK(body string) Response {
	return Response{Status: StatusOK, Body: body}
}

// Failed builds a failed response of the given kind.
func Failed(kind Kind, detail string) Response {
	return Response{Status: StatusError, Err: &Error{Kind: kind, Detail: detail}}
}

// Kind classifies model failures.
type Kind int

const (
	KindUnavailable Kind = iota
	KindQuota
	KindAuth
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindQuota:
		return "quota"
	case KindAuth:
		return "auth"
	case KindRejected:
		return "rejected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrModelUnavailable covers network errors, timeouts and server-side failures.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrModelQuota is returned when the API rate limit or quota is exhausted.
	ErrModelQuota = errors.New("model quota exceeded")
	// ErrModelAuth is returned when the credential is missing or rejected.
	ErrModelAuth = errors.New("model authentication failed")
	// ErrModelRejected is returned when the API refuses the request itself.
	ErrModelRejected = errors.New("model rejected request")
)

// Error is a classified model failure. Detail holds the backend's diagnostic
// text and must not be shown to end users.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.sentinel().Error()
	}
	return e.sentinel().Error() + ": " + e.Detail
}

// Is lets errors.Is match an *Error against the sentinel of its kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindQuota:
		return ErrModelQuota
	case KindAuth:
		return ErrModelAuth
	case KindRejected:
		return ErrModelRejected
	default:
		return ErrModelUnavailable
	}
}

// truncate shortens backend diagnostics before they are stored in Error.Detail.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
