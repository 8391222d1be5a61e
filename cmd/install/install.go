// SPDX-License-Identifier: Apache-2.0
package install

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Work-Fort/crypto-install/cmd/cmdutil"
	"github.com/Work-Fort/crypto-install/pkg/config"
	"github.com/Work-Fort/crypto-install/pkg/passphrase"
	"github.com/Work-Fort/crypto-install/pkg/probe"
	"github.com/Work-Fort/crypto-install/pkg/provision"
	"github.com/Work-Fort/crypto-install/pkg/runner"
	"github.com/Work-Fort/crypto-install/pkg/ui"
)

// package-level flag variables bound to cobra flags
var (
	flagNoGPG       bool
	flagNoSSH       bool
	flagGnuPGHome   string
	flagSSHHome     string
	flagSSHConfig   string
	flagInteractive bool
	flagGUI         bool
	flagStopOnError bool
	flagName        string
	flagEmail       string
	flagComment     string
	flagSSHComment  string
)

// Long is the help text of the provisioning command.
const Long = `Creates a GnuPG identity and an OpenSSH key pair for the current user.

Each credential is checked first and left alone when it already exists.
Missing ones are generated with gpg and ssh-keygen; an OpenSSH client
config enabling agent and X11 forwarding is written when none exists.

Presentation:
  stdin is a terminal        form wizard (or text prompts with --interactive)
  stdin is not a terminal    values from --name, --email, --comment,
                             --ssh-comment and detected defaults

Key passphrases are read from CRYPTO_INSTALL_GPG_PASSPHRASE and
CRYPTO_INSTALL_SSH_PASSPHRASE, or one line each from stdin when piped (GnuPG
first); set a variable to the empty string for a key without passphrase.
With --gui the GnuPG passphrase is left to gpg's graphical pinentry.`

// Example shows typical invocations.
const Example = `  # Wizard
  crypto-install

  # Plain text prompts
  crypto-install --interactive

  # Unattended
  CRYPTO_INSTALL_GPG_PASSPHRASE="secret" CRYPTO_INSTALL_SSH_PASSPHRASE="secret" \
    crypto-install \
    --name "Max Mustermann" --email max@example.de < /dev/null

  # Only OpenSSH, custom client config
  crypto-install --no-gpg --ssh-config ~/.ssh/config.d/defaults`

// AddFlags registers the provisioning flags on flags.
func AddFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&flagNoGPG, "no-gpg", false, "Disable GnuPG setup")
	flags.BoolVar(&flagNoSSH, "no-ssh", false, "Disable OpenSSH setup")
	flags.StringVar(&flagGnuPGHome, "gnupg-home", "", "GnuPG home directory (default $GNUPGHOME or ~/.gnupg)")
	flags.StringVar(&flagSSHHome, "ssh-home", "", "OpenSSH directory (default ~/.ssh)")
	flags.StringVar(&flagSSHConfig, "ssh-config", "", "Path of the OpenSSH client configuration file (default {ssh-home}/config)")
	flags.BoolVar(&flagInteractive, "interactive", false, "Use plain text prompts instead of the form wizard")
	flags.BoolVar(&flagGUI, "gui", false, "Let gpg and ssh-keygen open graphical prompts")
	flags.BoolVar(&flagStopOnError, "stop-on-error", false, "Stop after the first credential that fails")
	flags.StringVar(&flagName, "name", "", "Full name for the GnuPG identity")
	flags.StringVar(&flagEmail, "email", "", "Email address for the GnuPG identity")
	flags.StringVar(&flagComment, "comment", "", "Motto phrase (comment) for the GnuPG identity")
	flags.StringVar(&flagSSHComment, "ssh-comment", "", "Comment for the OpenSSH key (default user@host)")
}

// NewInstallCmd returns the provisioning workflow as a subcommand. The root
// command runs the same workflow.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Provision a GnuPG identity and an OpenSSH key pair",
		Long:    Long,
		Example: Example,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return config.BindFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd)
		},
	}
	AddFlags(cmd.Flags())
	return cmd
}

// Run provisions the enabled credentials with the adapter matching the
// terminal and configuration.
func Run(cmd *cobra.Command) error {
	config.ApplyDisableFlags(cmd.Flags())

	specs := cmdutil.Specs(false)
	if len(specs) == 0 {
		fmt.Println(config.CurrentTheme.InfoMessage("Nothing to do: GnuPG and OpenSSH setup are both disabled"))
		return nil
	}

	source, err := passphrase.ParseSource(config.GetPassphraseSource())
	if err != nil {
		return err
	}

	p := &provision.Provisioner{
		Runner: runner.Exec{},
		// One reader so piped passphrases are consumed line by line
		Passphrase: passphrase.Resolver{Source: source, Stdin: bufio.NewReader(os.Stdin)},
		Probe:      identityProbe(cmd.Flags()),
		Options: provision.Options{
			Specs:       specs,
			StopOnError: config.GetStopOnError(),
			GUI:         config.GetGUI(),
		},
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cmdutil.UseWizard() {
		return runWizard(ctx, p)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmdutil.StdinIsTerminal() {
		p.Adapter = ui.NewTerminalPrompter()
	} else {
		p.Adapter = &ui.Preset{Values: presetValues(cmd.Flags()), Out: os.Stdout}
	}
	return runText(ctx, p, os.Stdout)
}

// runText runs the provisioner and prints key details for every credential
// that is in place.
func runText(ctx context.Context, p *provision.Provisioner, out io.Writer) error {
	results, runErr := p.Run(ctx)

	details := cmdutil.ResultDetails(ctx, p.Runner, p.Options.Specs, results)
	for _, res := range results {
		if d, ok := details[res.Kind]; ok {
			fmt.Fprintln(out, config.CurrentTheme.SubtleStyle().Render("  "+d))
		}
	}

	return runErr
}

// runWizard drives the provisioner from the form wizard. The provisioner
// runs on its own goroutine and talks to the wizard through messages.
func runWizard(ctx context.Context, p *provision.Provisioner) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewWizardModel(p.Options.Specs, cancel)
	program := tea.NewProgram(model, tea.WithAltScreen())

	p.Adapter = newFormAdapter(program.Send)

	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		results, err := p.Run(ctx)
		runErr = err
		details := cmdutil.ResultDetails(ctx, p.Runner, p.Options.Specs, results)
		program.Send(RunDoneMsg{Results: results, Details: details, Err: err})
	}()

	final, err := program.Run()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	// The alt screen is gone; repeat the outcome on the normal screen.
	if m, ok := final.(WizardModel); ok {
		for _, res := range m.results {
			fmt.Println(ui.OutcomeLine(res))
		}
		if m.cancelled {
			log.Debugf("install: wizard cancelled")
			if runErr == nil {
				runErr = context.Canceled
			}
		}
	}
	return runErr
}

// identityProbe returns detected defaults with --name and --email applied.
func identityProbe(flags *pflag.FlagSet) func() probe.Identity {
	return func() probe.Identity {
		id := probe.Detect()
		if f := flags.Lookup("name"); f != nil && f.Changed {
			id.FullName = f.Value.String()
		}
		if f := flags.Lookup("email"); f != nil && f.Changed {
			id.Email = f.Value.String()
		}
		return id
	}
}

// presetValues maps the identity flags that were set to field keys.
func presetValues(flags *pflag.FlagSet) map[string]string {
	values := make(map[string]string)
	for flagName, key := range map[string]string{
		"name":        "name",
		"email":       "email",
		"comment":     "comment",
		"ssh-comment": "ssh-comment",
	} {
		if f := flags.Lookup(flagName); f != nil && f.Changed {
			values[key] = f.Value.String()
		}
	}
	return values
}
