// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"context"
	"fmt"
)

// Field is one value to collect from the operator.
type Field struct {
	Key         string
	Prompt      string
	Default     string
	Placeholder string
	// Validate is applied before a value is accepted. Nil accepts anything.
	Validate func(string) bool
	// Invalid is shown when Validate rejects a value.
	Invalid string
	// Secret hides the input. Confirm asks for it twice.
	Secret  bool
	Confirm bool
}

// Accepts reports whether v passes the field's validator.
func (f Field) Accepts(v string) bool {
	return f.Validate == nil || f.Validate(v)
}

// Adapter is the presentation layer. Text prompts, presets and the form
// wizard all implement it.
type Adapter interface {
	// Collect returns one value per field, in order. Interactive adapters
	// re-prompt until each value is accepted.
	Collect(ctx context.Context, fields []Field) ([]string, error)
	// Notice shows an informational message.
	Notice(msg string)
	// Progress shows one line of generator output.
	Progress(line string)
}

// StageObserver is optionally implemented by adapters that want to know when
// a credential starts and finishes.
type StageObserver interface {
	StageStarted(spec Spec)
	StageFinished(result Result)
}

// PassphraseSource supplies the passphrase protecting the new key of kind.
// The empty string means no passphrase.
type PassphraseSource interface {
	Passphrase(ctx context.Context, a Adapter, kind Kind) (string, error)
}

// CollectField asks for a single value.
func CollectField(ctx context.Context, a Adapter, f Field) (string, error) {
	values, err := a.Collect(ctx, []Field{f})
	if err != nil {
		return "", err
	}
	if len(values) != 1 {
		return "", fmt.Errorf("adapter returned %d values for 1 field", len(values))
	}
	return values[0], nil
}
