// SPDX-License-Identifier: Apache-2.0

// Package passphrase resolves key passphrases from the environment, a stdin
// pipe or an operator prompt.
package passphrase

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/crypto-install/pkg/provision"
)

// Source indicates where the passphrase comes from.
type Source int

const (
	// SourceAuto tries a stdin pipe, then the environment, then a prompt.
	SourceAuto Source = iota
	// SourceEnv reads the environment variable only.
	SourceEnv
	// SourceStdin reads the first line of stdin.
	SourceStdin
	// SourcePrompt asks through the interaction adapter.
	SourcePrompt
)

// Environment variables holding the passphrases for non-interactive runs.
// Setting one to the empty string requests a key without passphrase.
const (
	EnvPassphrase      = "CRYPTO_INSTALL_SSH_PASSPHRASE"
	EnvGnuPGPassphrase = "CRYPTO_INSTALL_GPG_PASSPHRASE"
)

// EnvVar returns the variable consulted for kind.
func EnvVar(kind provision.Kind) string {
	if kind == provision.GnuPGIdentity {
		return EnvGnuPGPassphrase
	}
	return EnvPassphrase
}

func (s Source) String() string {
	switch s {
	case SourceAuto:
		return "auto"
	case SourceEnv:
		return "env"
	case SourceStdin:
		return "stdin"
	case SourcePrompt:
		return "prompt"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// ParseSource parses a config value.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return SourceAuto, nil
	case "env":
		return SourceEnv, nil
	case "stdin":
		return SourceStdin, nil
	case "prompt":
		return SourcePrompt, nil
	default:
		return SourceAuto, fmt.Errorf("invalid passphrase source: %s (valid: auto, env, stdin, prompt)", s)
	}
}

// Resolver implements provision.PassphraseSource.
type Resolver struct {
	Source Source
	// Stdin defaults to os.Stdin. Each passphrase consumes one line, so a
	// Resolver asked for several keys needs a *bufio.Reader here to keep
	// read-ahead between calls. StdinIsPipe reports whether it is a pipe
	// rather than a terminal; nil checks os.Stdin.
	Stdin       io.Reader
	StdinIsPipe func() bool
	LookupEnv   func(string) (string, bool)
}

// Field is the prompt used when asking the operator.
func Field(kind provision.Kind) provision.Field {
	name := "OpenSSH"
	if kind == provision.GnuPGIdentity {
		name = "GnuPG"
	}
	return provision.Field{
		Key:     "passphrase",
		Prompt:  "Passphrase for the new " + name + " key (empty for none)",
		Secret:  true,
		Confirm: true,
	}
}

// Passphrase returns the passphrase for kind or an error wrapping
// provision.ErrPassphraseUnavailable.
func (r Resolver) Passphrase(ctx context.Context, a provision.Adapter, kind provision.Kind) (string, error) {
	var (
		pass string
		err  error
	)

	switch r.Source {
	case SourceEnv:
		pass, err = r.fromEnv(kind)
	case SourceStdin:
		pass, err = r.fromStdin()
	case SourcePrompt:
		pass, err = fromAdapter(ctx, a, kind)
	case SourceAuto:
		if r.stdinIsPipe() {
			if pass, err = r.fromStdin(); err == nil {
				log.Debugf("passphrase: read from stdin")
				return pass, nil
			}
		}
		if pass, err = r.fromEnv(kind); err == nil {
			log.Debugf("passphrase: read from %s", EnvVar(kind))
			return pass, nil
		}
		pass, err = fromAdapter(ctx, a, kind)
	default:
		err = fmt.Errorf("invalid passphrase source: %d", r.Source)
	}

	if err != nil {
		return "", fmt.Errorf("%w: %v", provision.ErrPassphraseUnavailable, err)
	}
	return pass, nil
}

func (r Resolver) fromEnv(kind provision.Kind) (string, error) {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	name := EnvVar(kind)
	pass, ok := lookup(name)
	if !ok {
		return "", fmt.Errorf("environment variable %s not set", name)
	}
	return pass, nil
}

// fromStdin reads a single line; only the line terminator is stripped.
func (r Resolver) fromStdin() (string, error) {
	in := r.Stdin
	if in == nil {
		in = os.Stdin
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", fmt.Errorf("no input from stdin")
		}
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r Resolver) stdinIsPipe() bool {
	if r.StdinIsPipe != nil {
		return r.StdinIsPipe()
	}
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

func fromAdapter(ctx context.Context, a provision.Adapter, kind provision.Kind) (string, error) {
	if a == nil {
		return "", fmt.Errorf("no prompt available")
	}
	pass, err := provision.CollectField(ctx, a, Field(kind))
	if err != nil {
		return "", fmt.Errorf("failed to prompt for passphrase: %w", err)
	}
	return pass, nil
}
