package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dasmlab/pharmagen/pkg/assistant"
	"github.com/dasmlab/pharmagen/pkg/config"
	"github.com/dasmlab/pharmagen/pkg/consult"
)

const replHelp = `Commands:
  /lang <tag>   set the response language (e.g. es, fr-CA, japanese, auto)
  /languages    list supported languages
  /summary      show the consultation report (consult mode)
  /reset        start over
  /quit         exit`

// runOnce answers a single question and returns the process exit code.
func runOnce(ctx context.Context, a *assistant.Assistant, question string, out io.Writer) int {
	answer, err := a.Ask(ctx, assistant.Query{RawText: question})
	if err != nil {
		fmt.Fprintln(out, assistant.UserMessage(err))
		return 1
	}
	fmt.Fprintln(out, answer.Text)
	return 0
}

// promptAPIKey asks for the API key on the terminal.
func promptAPIKey(in *bufio.Scanner, out io.Writer) string {
	fmt.Fprintf(out, "No Gemini API key found. You can set it with: export %s='your-key-here'\n", config.EnvAPIKey)
	fmt.Fprint(out, "Please enter your Gemini API key: ")
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// repl reads questions line by line. In consult mode lines drive a
// consultation session instead of free questions.
type repl struct {
	assistant *assistant.Assistant
	in        *bufio.Scanner
	out       io.Writer

	// language is the tag sent with free questions; empty uses the default.
	language string
	session  *consult.Session
}

func newREPL(a *assistant.Assistant, in *bufio.Scanner, out io.Writer, consultMode bool) *repl {
	r := &repl{
		assistant: a,
		in:        in,
		out:       out,
	}
	if consultMode {
		r.session = consult.NewSession(a)
	}
	return r
}

// run loops until /quit or end of input.
func (r *repl) run(ctx context.Context) {
	if r.session != nil {
		fmt.Fprintln(r.out, r.session.Greeting())
	} else {
		fmt.Fprintf(r.out, "PharmaGEN pharmacology assistant (%s). Type /help for commands.\n", r.assistant.Languages.Default().Name)
	}

	for {
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" && r.session == nil {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return
			}
			continue
		}

		fmt.Fprintln(r.out, r.answer(ctx, line))
	}
}

func (r *repl) answer(ctx context.Context, line string) string {
	if r.session != nil {
		reply, err := r.session.Handle(ctx, line)
		if err != nil {
			return assistant.UserMessage(err)
		}
		return reply
	}

	answer, err := r.assistant.Ask(ctx, assistant.Query{RawText: line, LanguageTag: r.language})
	if err != nil {
		return assistant.UserMessage(err)
	}
	return answer.Text
}

// command runs a slash command and reports whether the loop should end.
func (r *repl) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, replHelp)
	case "/languages":
		fmt.Fprintln(r.out, strings.Join(r.assistant.Languages.Names(), ", "))
	case "/lang":
		if r.session != nil {
			fmt.Fprintln(r.out, "The consultation language is chosen at the start. Use /reset to choose again.")
			break
		}
		fmt.Fprintln(r.out, r.setLanguage(arg))
	case "/summary":
		if r.session == nil {
			fmt.Fprintln(r.out, "/summary is only available with -consult.")
			break
		}
		summary := r.session.LocalizedSummary(ctx)
		if summary == "" {
			summary = "No consultation summary yet."
		}
		fmt.Fprintln(r.out, summary)
	case "/reset":
		if r.session != nil {
			r.session.Reset()
			fmt.Fprintln(r.out, r.session.Greeting())
			break
		}
		r.language = ""
		fmt.Fprintf(r.out, "Language reset to %s.\n", r.assistant.Languages.Default().Name)
	default:
		fmt.Fprintf(r.out, "Unknown command %s. Type /help for commands.\n", name)
	}
	return false
}

// setLanguage changes the language of free questions and returns the
// message to show.
func (r *repl) setLanguage(tag string) string {
	if tag == "" {
		return "Usage: /lang <tag>"
	}
	lang, err := r.assistant.Languages.Resolve(tag)
	if err != nil {
		return assistant.UserMessage(err)
	}
	r.language = tag
	return fmt.Sprintf("Language set to %s.", lang.Name)
}
