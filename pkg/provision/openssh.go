// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/crypto-install/pkg/runner"
)

const defaultSSHKeygenProgram = "ssh-keygen"

// sshStripVars are removed from the ssh-keygen environment on top of the
// display variables.
var sshStripVars = []string{"SSH_ASKPASS", "SSH_ASKPASS_REQUIRE"}

// SSHCommentField asks to confirm the key comment.
func SSHCommentField(def string) Field {
	return Field{
		Key:     "ssh-comment",
		Prompt:  "Comment for the new OpenSSH key",
		Default: def,
	}
}

func (p *Provisioner) provisionOpenSSH(ctx context.Context, spec Spec) Result {
	if err := writeSSHConfig(spec); err != nil {
		return failed(spec, err)
	}

	if path, ok := ExistingKey(spec); ok {
		p.Adapter.Notice("OpenSSH key already exists: " + path)
		return Result{Kind: spec.Kind, Outcome: OutcomeAlreadyExists, Path: path}
	}

	p.Adapter.Notice("No OpenSSH key available. Generating new key.")

	comment, err := CollectField(ctx, p.Adapter, SSHCommentField(p.defaults().SSHComment()))
	if err != nil {
		return failed(spec, fmt.Errorf("failed to collect key comment: %w", err))
	}

	if p.Passphrase == nil {
		return failed(spec, fmt.Errorf("%w: no passphrase source configured", ErrPassphraseUnavailable))
	}
	passphrase, err := p.Passphrase.Passphrase(ctx, p.Adapter, OpenSSHKeyPair)
	if err != nil {
		if errors.Is(err, ErrPassphraseUnavailable) {
			return failed(spec, err)
		}
		return failed(spec, fmt.Errorf("%w: %v", ErrPassphraseUnavailable, err))
	}

	if err := ensureDir(spec.Home); err != nil {
		return failed(spec, err)
	}

	program := spec.Program
	if program == "" {
		program = defaultSSHKeygenProgram
	}
	keyPath := spec.KeyPath()

	log.Debugf("provision: generating OpenSSH key %s", keyPath)
	err = p.generate(ctx, runner.Command{
		Program: program,
		Args:    []string{"-q", "-t", "rsa", "-N", passphrase, "-C", comment, "-f", keyPath},
		Env:     childEnv(p.baseEnv(), p.Options.GUI, sshStripVars, nil),
	})
	if err != nil {
		return failed(spec, err)
	}
	return Result{Kind: spec.Kind, Outcome: OutcomeCreated, Path: keyPath}
}

// writeSSHConfig writes the client stanza when no config file exists yet.
// An existing file is never touched.
func writeSSHConfig(spec Spec) error {
	path := spec.SSHConfigPath()
	if fileExists(path) {
		return nil
	}

	if err := ensureDir(spec.Home); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != spec.Home {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.WriteString(sshConfigStanza); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Debugf("provision: wrote %s", path)
	return nil
}
