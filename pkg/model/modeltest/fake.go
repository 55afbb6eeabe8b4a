// Package modeltest provides a scripted model.Client for tests.
package modeltest

import (
	"context"
	"sync"

	"github.com/dasmlab/pharmagen/pkg/model"
)

// Fake is a model.Client that answers from a function and records every
// prompt it receives.
type Fake struct {
	// Respond produces the response for a prompt. Nil answers every prompt
	// with an empty successful response.
	Respond func(p model.Prompt) model.Response
	// HealthErr is returned by CheckHealth.
	HealthErr error

	mu      sync.Mutex
	prompts []model.Prompt
}

// Reply returns a Fake that always answers body.
func Reply(body string) *Fake {
	return &Fake{Respond: func(model.Prompt) model.Response { return model.OK(body) }}
}

// Fail returns a Fake that always fails with the given kind and detail.
func Fail(kind model.Kind, detail string) *Fake {
	return &Fake{Respond: func(model.Prompt) model.Response { return model.Failed(kind, detail) }}
}

// Sequence returns a Fake that answers with bodies in order and repeats the
// last one once they run out.
func Sequence(bodies ...string) *Fake {
	f := &Fake{}
	f.Respond = func(model.Prompt) model.Response {
		n := f.Calls() - 1
		if n >= len(bodies) {
			n = len(bodies) - 1
		}
		if n < 0 {
			return model.OK("")
		}
		return model.OK(bodies[n])
	}
	return f
}

func (f *Fake) Submit(ctx context.Context, p model.Prompt) model.Response {
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return model.Failed(model.KindUnavailable, err.Error())
	}
	if f.Respond == nil {
		return model.OK("")
	}
	return f.Respond(p)
}

func (f *Fake) CheckHealth(ctx context.Context) error {
	return f.HealthErr
}

// Calls returns the number of prompts received so far.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// Prompts returns a copy of the received prompts.
func (f *Fake) Prompts() []model.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Prompt, len(f.prompts))
	copy(out, f.prompts)
	return out
}

// Last returns the most recent prompt, or the zero Prompt.
func (f *Fake) Last() model.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return model.Prompt{}
	}
	return f.prompts[len(f.prompts)-1]
}
