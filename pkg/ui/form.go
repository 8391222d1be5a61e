// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/Work-Fort/crypto-install/pkg/provision"
)

// FieldForm renders a set of provision fields as one huh form group.
type FieldForm struct {
	fields   []provision.Field
	values   []string
	confirms []string
	form     *huh.Form
}

// NewFieldForm builds the form. Inputs start filled with the field defaults.
func NewFieldForm(fields []provision.Field) *FieldForm {
	ff := &FieldForm{
		fields:   fields,
		values:   make([]string, len(fields)),
		confirms: make([]string, len(fields)),
	}

	var inputs []huh.Field
	for i, f := range fields {
		if !f.Secret {
			ff.values[i] = f.Default
		}

		input := huh.NewInput().
			Key(f.Key).
			Title(f.Prompt).
			Placeholder(f.Placeholder).
			Value(&ff.values[i]).
			Validate(func(s string) error {
				if !f.Secret {
					s = strings.TrimSpace(s)
				}
				if !f.Accepts(s) {
					return errors.New(invalidMessage(f))
				}
				return nil
			})
		if f.Secret {
			input = input.EchoMode(huh.EchoModePassword)
		}
		inputs = append(inputs, input)

		if f.Secret && f.Confirm {
			inputs = append(inputs, huh.NewInput().
				Key(f.Key+"-confirm").
				Title("Repeat").
				EchoMode(huh.EchoModePassword).
				Value(&ff.confirms[i]).
				Validate(func(s string) error {
					if s != ff.values[i] {
						return errors.New("entries do not match")
					}
					return nil
				}))
		}
	}

	ff.form = huh.NewForm(huh.NewGroup(inputs...)).WithShowHelp(true)
	return ff
}

// Form returns the underlying huh form for embedding in a tea model.
func (ff *FieldForm) Form() *huh.Form {
	return ff.form
}

// SetForm stores the model returned by Form().Update.
func (ff *FieldForm) SetForm(f *huh.Form) {
	ff.form = f
}

// Values returns the answers in field order. Blank answers take the default.
func (ff *FieldForm) Values() []string {
	out := make([]string, len(ff.fields))
	for i, f := range ff.fields {
		v := ff.values[i]
		if !f.Secret {
			v = strings.TrimSpace(v)
			if v == "" {
				v = f.Default
			}
		}
		out[i] = v
	}
	return out
}

func invalidMessage(f provision.Field) string {
	if f.Invalid != "" {
		return f.Invalid
	}
	return "invalid value"
}
