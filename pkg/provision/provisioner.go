// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/crypto-install/pkg/probe"
	"github.com/Work-Fort/crypto-install/pkg/runner"
)

// Options controls a provisioning run.
type Options struct {
	// Specs are provisioned in order. Disabled credentials are simply left out.
	Specs []Spec
	// StopOnError ends the run after the first failed credential.
	StopOnError bool
	// GUI keeps display variables so generators may use graphical prompts.
	GUI bool
	// BaseEnv is the environment children start from. Nil means os.Environ().
	BaseEnv []string
}

// Provisioner runs the provisioning workflow.
type Provisioner struct {
	Adapter    Adapter
	Runner     runner.Runner
	Passphrase PassphraseSource
	// Probe supplies input defaults. Nil means probe.Detect.
	Probe   func() probe.Identity
	Options Options
}

// Run provisions every spec and returns one result per attempted credential.
// The error joins all credential failures.
func (p *Provisioner) Run(ctx context.Context) ([]Result, error) {
	if p.Adapter == nil || p.Runner == nil {
		return nil, errors.New("provisioner needs an adapter and a runner")
	}

	var (
		results []Result
		errs    []error
	)

	observer, _ := p.Adapter.(StageObserver)

	for _, spec := range p.Options.Specs {
		if err := ctx.Err(); err != nil {
			return results, errors.Join(append(errs, err)...)
		}

		if observer != nil {
			observer.StageStarted(spec)
		}

		var res Result
		switch spec.Kind {
		case GnuPGIdentity:
			res = p.provisionGnuPG(ctx, spec)
		case OpenSSHKeyPair:
			res = p.provisionOpenSSH(ctx, spec)
		default:
			res = failed(spec, fmt.Errorf("unsupported credential kind %d", spec.Kind))
		}

		log.Debugf("provision: %s %s", spec.Kind.Slug(), res.Outcome)
		results = append(results, res)
		if observer != nil {
			observer.StageFinished(res)
		}

		if res.Outcome == OutcomeFailed {
			errs = append(errs, res.Err)
			if p.Options.StopOnError || ctx.Err() != nil {
				break
			}
		}
	}

	return results, errors.Join(errs...)
}

func (p *Provisioner) defaults() probe.Identity {
	if p.Probe != nil {
		return p.Probe()
	}
	return probe.Detect()
}

func (p *Provisioner) baseEnv() []string {
	if p.Options.BaseEnv != nil {
		return p.Options.BaseEnv
	}
	return os.Environ()
}

// generate runs the generator, forwarding every output line to the adapter.
func (p *Provisioner) generate(ctx context.Context, c runner.Command) error {
	stream, err := p.Runner.Start(ctx, c)
	if err != nil {
		return err
	}

	var output []string
	for line := range stream.Lines() {
		output = append(output, line)
		p.Adapter.Progress(line)
	}

	code, err := stream.Wait()
	if err != nil {
		return fmt.Errorf("%s did not finish: %w", c.Program, err)
	}
	if code != 0 {
		return &GenerationFailedError{ExitCode: code, Output: strings.Join(output, "\n")}
	}
	return nil
}

// ensureDir creates path and its parents with mode 0700. An existing
// directory is fine.
func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDirectoryCreation, path, err)
	}
	return nil
}

func failed(spec Spec, err error) Result {
	return Result{
		Kind:    spec.Kind,
		Outcome: OutcomeFailed,
		Err:     &CredentialError{Kind: spec.Kind, Err: err},
	}
}
