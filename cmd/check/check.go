// SPDX-License-Identifier: Apache-2.0
package check

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Work-Fort/crypto-install/cmd/cmdutil"
	"github.com/Work-Fort/crypto-install/pkg/config"
	"github.com/Work-Fort/crypto-install/pkg/provision"
	"github.com/Work-Fort/crypto-install/pkg/runner"
	"github.com/Work-Fort/crypto-install/pkg/toolcheck"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report tool availability and credential status",
		Long: `Looks up gpg and the OpenSSH tools, prints their versions and shows
whether each credential exists, with its fingerprint. Nothing is generated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return Run(ctx, runner.Exec{}, cmdutil.Specs(true), os.Stdout)
		},
	}
}

// Run prints the report for specs to out.
func Run(ctx context.Context, r runner.Runner, specs []provision.Spec, out io.Writer) error {
	theme := config.CurrentTheme
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.GetPrimaryColor())

	fmt.Fprintln(out, heading.Render("Tools"))

	for _, spec := range specs {
		var (
			tool *toolcheck.Tool
			err  error
		)
		switch spec.Kind {
		case provision.GnuPGIdentity:
			tool, err = toolcheck.GnuPG(ctx, r, spec.Program)
		case provision.OpenSSHKeyPair:
			tool, err = toolcheck.OpenSSH(ctx, r, spec.Program)
		default:
			continue
		}
		fmt.Fprintln(out, toolLine(tool, err))

		if spec.Kind == provision.GnuPGIdentity && tool != nil && spec.KeyringCheck != provision.KeyringKeybox && toolcheck.UsesKeybox(tool.Version) {
			fmt.Fprintln(out, "  "+theme.WarningMessage(fmt.Sprintf(
				"GnuPG %s keeps secret keys in private-keys-v1.d; set gnupg.existence-check to keybox",
				tool.Version)))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, heading.Render("Credentials"))

	for _, spec := range specs {
		fmt.Fprintln(out, credentialLine(ctx, r, spec))
	}

	return nil
}

func toolLine(tool *toolcheck.Tool, err error) string {
	theme := config.CurrentTheme
	switch {
	case tool == nil:
		return theme.ErrorMessage(fmt.Sprintf("unknown tool: %v", err))
	case !tool.Found():
		return theme.ErrorMessage(tool.Program + " not found in PATH")
	case err != nil:
		log.Warnf("check: %s: %v", tool.Program, err)
		return theme.WarningMessage(fmt.Sprintf("%s at %s, version unknown", tool.Program, tool.Path))
	default:
		return theme.SuccessMessage(fmt.Sprintf("%s %s (%s)", tool.Program, tool.Version, tool.Path))
	}
}

func credentialLine(ctx context.Context, r runner.Runner, spec provision.Spec) string {
	theme := config.CurrentTheme

	enabled := true
	switch spec.Kind {
	case provision.GnuPGIdentity:
		enabled = config.GetGnuPGEnabled()
	case provision.OpenSSHKeyPair:
		enabled = config.GetOpenSSHEnabled()
	}
	suffix := ""
	if !enabled {
		suffix = " (disabled)"
	}

	path, ok := provision.ExistingKey(spec)
	if !ok {
		return theme.PendingIndicator() + " " + fmt.Sprintf("%s missing in %s%s", spec.Kind, spec.Home, suffix)
	}

	line := theme.CompleteIndicator() + " " + fmt.Sprintf("%s: %s%s", spec.Kind, path, suffix)
	if spec.Kind == provision.OpenSSHKeyPair && !provision.Exists(spec) {
		line += "\n  " + theme.WarningMessage("client config missing: "+spec.SSHConfigPath())
	}

	details, err := cmdutil.KeyDetails(ctx, r, spec, path)
	if err != nil {
		log.Debugf("check: %s details: %v", spec.Kind.Slug(), err)
		return line
	}
	return line + "\n  " + theme.SubtleStyle().Render(details)
}
