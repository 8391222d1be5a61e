// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/crypto-install/pkg/runner"
)

const defaultGPGProgram = "gpg"

// gpgStripVars are removed from the gpg environment outside GUI mode so the
// agent never starts a terminal pinentry behind the operator's back.
var gpgStripVars = []string{"GPG_TTY", "PINENTRY_USER_DATA"}

// GnuPGFields are the prompts for a new identity, seeded with defaults.
func GnuPGFields(name, email string) []Field {
	return []Field{
		{
			Key:         "name",
			Prompt:      "What is your name?",
			Default:     name,
			Placeholder: "Max Mustermann",
			Validate:    ValidName,
			Invalid:     "Name must not be empty",
		},
		{
			Key:         "email",
			Prompt:      "What is your email address?",
			Default:     email,
			Placeholder: "max@example.de",
			Validate:    ValidEmail,
			Invalid:     "Enter an address of the form name@domain",
		},
		{
			Key:         "comment",
			Prompt:      "What is your motto phrase, if any?",
			Placeholder: "Schlüssel für 2014",
			Validate:    ValidComment,
		},
	}
}

func (p *Provisioner) provisionGnuPG(ctx context.Context, spec Spec) Result {
	if path, ok := ExistingKey(spec); ok {
		p.Adapter.Notice("GnuPG key already exists: " + path)
		return Result{Kind: spec.Kind, Outcome: OutcomeAlreadyExists, Path: path}
	}

	p.Adapter.Notice("No default GnuPG key available. Please enter your information to create a new key.")

	id := p.defaults()
	values, err := p.Adapter.Collect(ctx, GnuPGFields(id.FullName, id.Email))
	if err != nil {
		return failed(spec, fmt.Errorf("failed to collect identity: %w", err))
	}
	if len(values) != 3 {
		return failed(spec, fmt.Errorf("%w: expected 3 values, got %d", ErrInvalidInput, len(values)))
	}
	fields := IdentityFields{Name: values[0], Email: values[1], Comment: values[2]}

	prot, err := p.gnupgProtection(ctx)
	if err != nil {
		return failed(spec, err)
	}

	batch, err := RenderBatch(fields, spec.Algorithm, prot)
	if err != nil {
		return failed(spec, err)
	}

	// The operator may have created a key while we were prompting.
	if path, ok := ExistingKey(spec); ok {
		p.Adapter.Notice("GnuPG key already exists: " + path)
		return Result{Kind: spec.Kind, Outcome: OutcomeAlreadyExists, Path: path}
	}

	if err := ensureDir(spec.Home); err != nil {
		return failed(spec, err)
	}

	batchFile, err := writeBatchFile(batch)
	if err != nil {
		return failed(spec, err)
	}
	defer os.Remove(batchFile)

	program := spec.Program
	if program == "" {
		program = defaultGPGProgram
	}

	log.Debugf("provision: generating GnuPG key in %s", spec.Home)
	err = p.generate(ctx, runner.Command{
		Program: program,
		Args:    []string{"--batch", "--homedir", spec.Home, "--gen-key", batchFile},
		Env:     childEnv(p.baseEnv(), p.Options.GUI, gpgStripVars, map[string]string{"GNUPGHOME": spec.Home}),
	})
	if err != nil {
		return failed(spec, err)
	}

	path, _ := ExistingKey(spec)
	if path == "" {
		path = spec.Home
	}
	return Result{Kind: spec.Kind, Outcome: OutcomeCreated, Path: path}
}

// gnupgProtection resolves the key passphrase up front. gpg runs without a
// terminal, so only GUI mode leaves the question to a graphical pinentry.
func (p *Provisioner) gnupgProtection(ctx context.Context) (KeyProtection, error) {
	if p.Options.GUI {
		return KeyProtection{Ask: true}, nil
	}
	if p.Passphrase == nil {
		return KeyProtection{}, fmt.Errorf("%w: no passphrase source configured", ErrPassphraseUnavailable)
	}
	pass, err := p.Passphrase.Passphrase(ctx, p.Adapter, GnuPGIdentity)
	if err != nil {
		if errors.Is(err, ErrPassphraseUnavailable) {
			return KeyProtection{}, err
		}
		return KeyProtection{}, fmt.Errorf("%w: %v", ErrPassphraseUnavailable, err)
	}
	return KeyProtection{Passphrase: pass}, nil
}

// writeBatchFile stores the batch description in a private temporary file
// since the generator's stdin is closed.
func writeBatchFile(batch string) (string, error) {
	f, err := os.CreateTemp("", "crypto-install-batch-*")
	if err != nil {
		return "", fmt.Errorf("failed to create batch file: %w", err)
	}
	defer f.Close()

	if err := f.Chmod(0o600); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to protect batch file: %w", err)
	}
	if _, err := f.WriteString(batch); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write batch file: %w", err)
	}
	return f.Name(), nil
}
