// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/Work-Fort/crypto-install/pkg/config"
	"github.com/Work-Fort/crypto-install/pkg/provision"
)

// NoticeWidth is the column notices are wrapped at.
const NoticeWidth = 80

// ErrNoInput is returned when the input stream ends before a value was read.
var ErrNoInput = errors.New("input ended")

// Prompter is the plain-text adapter: one question per line on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// ReadSecret reads one line without echo. Nil reads a visible line.
	ReadSecret func() (string, error)
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// NewTerminalPrompter prompts on stdin/stdout and hides secrets when stdin
// is a terminal.
func NewTerminalPrompter() *Prompter {
	p := NewPrompter(os.Stdin, os.Stdout)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		p.ReadSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(p.out)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}
	return p
}

// Collect asks for each field until an acceptable value is entered.
func (p *Prompter) Collect(ctx context.Context, fields []provision.Field) ([]string, error) {
	values := make([]string, 0, len(fields))
	for _, f := range fields {
		v, err := p.ask(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func (p *Prompter) ask(ctx context.Context, f provision.Field) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		v, err := p.readValue(f, PromptLine(f))
		if err != nil {
			return "", err
		}
		if v == "" && !f.Secret {
			v = f.Default
		}

		if f.Secret && f.Confirm {
			again, err := p.readValue(f, "Repeat: ")
			if err != nil {
				return "", err
			}
			if again != v {
				fmt.Fprintln(p.out, config.CurrentTheme.ErrorMessage("Entries do not match"))
				continue
			}
		}

		if !f.Accepts(v) {
			msg := f.Invalid
			if msg == "" {
				msg = "Invalid value"
			}
			fmt.Fprintln(p.out, config.CurrentTheme.ErrorMessage(msg))
			continue
		}
		log.Debugf("prompt: %s accepted", f.Key)
		return v, nil
	}
}

func (p *Prompter) readValue(f provision.Field, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if f.Secret && p.ReadSecret != nil {
		return p.ReadSecret()
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		if err == io.EOF {
			return "", ErrNoInput
		}
		return "", err
	}
	if f.Secret {
		return strings.TrimRight(line, "\r\n"), nil
	}
	return strings.TrimSpace(line), nil
}

// PromptLine renders "Question?  (example) ". The parenthesised hint is the
// default when there is one, otherwise the placeholder.
func PromptLine(f provision.Field) string {
	hint := f.Default
	if hint == "" {
		hint = f.Placeholder
	}
	if hint == "" || f.Secret {
		return f.Prompt + "  "
	}
	return fmt.Sprintf("%s  (%s) ", f.Prompt, hint)
}

// Notice prints a message wrapped to NoticeWidth columns.
func (p *Prompter) Notice(msg string) {
	fmt.Fprintln(p.out, Wrap(msg, NoticeWidth))
}

// Progress echoes generator output dimmed.
func (p *Prompter) Progress(line string) {
	fmt.Fprintln(p.out, config.CurrentTheme.SubtleStyle().Render(line))
}

// StageStarted implements provision.StageObserver.
func (p *Prompter) StageStarted(spec provision.Spec) {
	log.Debugf("prompt: stage %s started", spec.Kind.Slug())
}

// StageFinished prints the outcome of a credential.
func (p *Prompter) StageFinished(res provision.Result) {
	fmt.Fprintln(p.out, OutcomeLine(res))
}

// OutcomeLine formats a result with its indicator.
func OutcomeLine(res provision.Result) string {
	theme := config.CurrentTheme
	switch res.Outcome {
	case provision.OutcomeCreated:
		return theme.SuccessMessage(fmt.Sprintf("%s created: %s", res.Kind, res.Path))
	case provision.OutcomeAlreadyExists:
		return theme.InfoMessage(fmt.Sprintf("%s already exists: %s", res.Kind, res.Path))
	default:
		return theme.ErrorMessage(fmt.Sprintf("%s failed: %v", res.Kind, res.Err))
	}
}
