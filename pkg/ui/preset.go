// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/crypto-install/pkg/provision"
)

// Preset answers every field from flags or the field default. It is used
// when stdin is not a terminal.
type Preset struct {
	// Values maps field keys to answers.
	Values map[string]string
	Out    io.Writer
}

// Collect never blocks. A secret field without a preset answer is an error:
// passphrases reach non-interactive runs through the environment or stdin.
func (p *Preset) Collect(ctx context.Context, fields []provision.Field) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := p.Values[f.Key]
		if !ok || (v == "" && !f.Secret) {
			if f.Secret {
				return nil, fmt.Errorf("%s: cannot prompt without a terminal", f.Key)
			}
			v = f.Default
		}
		if !f.Accepts(v) {
			msg := f.Invalid
			if msg == "" {
				msg = "invalid value"
			}
			return nil, fmt.Errorf("%w: %s: %s (got %q)", provision.ErrInvalidInput, f.Key, msg, v)
		}
		log.Debugf("preset: %s resolved", f.Key)
		values = append(values, v)
	}
	return values, nil
}

// Notice writes the message as is.
func (p *Preset) Notice(msg string) {
	if p.Out != nil {
		fmt.Fprintln(p.Out, Wrap(msg, NoticeWidth))
	}
}

// Progress only reaches the debug log.
func (p *Preset) Progress(line string) {
	log.Debugf("preset: %s", line)
}

// StageStarted implements provision.StageObserver.
func (p *Preset) StageStarted(spec provision.Spec) {}

// StageFinished prints the outcome line.
func (p *Preset) StageFinished(res provision.Result) {
	if p.Out != nil {
		fmt.Fprintln(p.Out, OutcomeLine(res))
	}
}
