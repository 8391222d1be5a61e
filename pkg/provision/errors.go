// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned when collected fields fail validation and
	// the adapter cannot re-prompt.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDirectoryCreation is returned when a credential home cannot be created.
	ErrDirectoryCreation = errors.New("directory creation failed")
	// ErrPassphraseUnavailable is returned when no passphrase could be obtained.
	ErrPassphraseUnavailable = errors.New("passphrase unavailable")
)

// GenerationFailedError reports a generator that exited non-zero.
type GenerationFailedError struct {
	ExitCode int
	Output   string
}

func (e *GenerationFailedError) Error() string {
	msg := fmt.Sprintf("key generation failed (exit status %d)", e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// CredentialError ties a failure to the credential it belongs to.
type CredentialError struct {
	Kind Kind
	Err  error
}

func (e *CredentialError) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}
