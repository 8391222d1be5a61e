// SPDX-License-Identifier: Apache-2.0
package cmdutil

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/Work-Fort/crypto-install/pkg/config"
	"github.com/Work-Fort/crypto-install/pkg/keyinfo"
	"github.com/Work-Fort/crypto-install/pkg/provision"
	"github.com/Work-Fort/crypto-install/pkg/runner"
)

// StdinIsTerminal reports whether stdin is connected to a terminal
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// UseWizard reports whether the form wizard should run: stdin is a terminal
// and plain text prompts were not requested.
func UseWizard() bool {
	return StdinIsTerminal() && !config.GetInteractive()
}

// Specs builds the credential specs from configuration, in provisioning
// order. Disabled credentials are left out unless all is set.
func Specs(all bool) []provision.Spec {
	var specs []provision.Spec

	if all || config.GetGnuPGEnabled() {
		specs = append(specs, provision.Spec{
			Kind:         provision.GnuPGIdentity,
			Home:         config.GetGnuPGHome(),
			Program:      config.GetGnuPGProgram(),
			KeyringCheck: provision.KeyringCheck(config.GetGnuPGExistenceCheck()),
			Algorithm:    provision.Algorithm(config.GetGnuPGAlgorithm()),
		})
	}

	if all || config.GetOpenSSHEnabled() {
		specs = append(specs, provision.Spec{
			Kind:       provision.OpenSSHKeyPair,
			Home:       config.GetOpenSSHHome(),
			ConfigFile: config.GetOpenSSHConfig(),
			Program:    config.GetOpenSSHProgram(),
		})
	}

	log.Debugf("cmdutil: %d credential specs", len(specs))
	return specs
}

// SpecFor returns the spec of kind from specs.
func SpecFor(specs []provision.Spec, kind provision.Kind) (provision.Spec, bool) {
	for _, s := range specs {
		if s.Kind == kind {
			return s, true
		}
	}
	return provision.Spec{}, false
}

// KeyDetails describes the key found at path for display: name, email and
// fingerprint for GnuPG, type, fingerprint and comment for OpenSSH.
func KeyDetails(ctx context.Context, r runner.Runner, spec provision.Spec, path string) (string, error) {
	switch spec.Kind {
	case provision.GnuPGIdentity:
		key, err := keyinfo.GnuPG(ctx, r, spec.Program, spec.Home)
		if err != nil {
			return "", err
		}
		return key.String(), nil
	case provision.OpenSSHKeyPair:
		if path == "" {
			path = spec.KeyPath()
		}
		key, err := keyinfo.OpenSSH(path)
		if err != nil {
			return "", err
		}
		return key.String(), nil
	default:
		return "", fmt.Errorf("unsupported credential kind %d", spec.Kind)
	}
}

// ResultDetails looks up KeyDetails for every successful result. Lookup
// failures are logged and leave the entry out.
func ResultDetails(ctx context.Context, r runner.Runner, specs []provision.Spec, results []provision.Result) map[provision.Kind]string {
	details := make(map[provision.Kind]string)
	for _, res := range results {
		if res.Outcome == provision.OutcomeFailed {
			continue
		}
		spec, ok := SpecFor(specs, res.Kind)
		if !ok {
			continue
		}
		d, err := KeyDetails(ctx, r, spec, res.Path)
		if err != nil {
			log.Warnf("cmdutil: no details for %s: %v", res.Kind.Slug(), err)
			continue
		}
		details[res.Kind] = d
	}
	return details
}
