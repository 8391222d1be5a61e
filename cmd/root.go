// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Work-Fort/crypto-install/cmd/check"
	configCmd "github.com/Work-Fort/crypto-install/cmd/config"
	"github.com/Work-Fort/crypto-install/cmd/install"
	"github.com/Work-Fort/crypto-install/cmd/version"
	"github.com/Work-Fort/crypto-install/pkg/config"
)

var (
	// Version is set at build time via ldflags
	// -ldflags "-X github.com/Work-Fort/crypto-install/cmd.Version=x.y.z"
	Version string

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Provision a GnuPG identity and an OpenSSH key pair",
	Long: `crypto-install - GnuPG and OpenSSH credential setup

` + install.Long,
	Example: install.Example,
	Args:    cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitDirs(); err != nil {
			return err
		}

		if err := config.LoadConfig(); err != nil {
			return err
		}

		// The flag wins over config and env through the viper binding
		logLevel = config.GetLogLevel()

		return setupLogging(logLevel)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return config.BindFlags(cmd.Flags())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return install.Run(cmd)
	},
}

// setupLogging sends all logging to a JSON file in the data directory.
func setupLogging(level string) error {
	if level == "disabled" {
		log.SetOutput(io.Discard)
		return nil
	}

	var lvl log.Level
	switch level {
	case "info":
		lvl = log.InfoLevel
	case "warn":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	default:
		lvl = log.DebugLevel
	}

	logFile := filepath.Join(config.GlobalPaths.DataDir, config.DebugLogFile)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetDefault(log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02T15:04:05.000Z07:00",
		Level:           lvl,
		ReportCaller:    true,
		Formatter:       log.JSONFormatter,
	}))
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errorStyle := config.CurrentTheme.ErrorStyle()
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), err.Error())
		os.Exit(1)
	}
}

func init() {
	// Replaced by the file logger in PersistentPreRunE
	log.SetReportTimestamp(false)
	log.SetLevel(log.InfoLevel)

	config.InitViper()

	if Version == "" {
		Version = "dev"
	}
	// cobra adds --version with the -v shorthand
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(config.AppName + " version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "debug", "Log level: disabled, debug, info, warn, error")
	if err := config.BindFlags(rootCmd.PersistentFlags()); err != nil {
		log.Warnf("failed to bind flags: %v", err)
	}

	install.AddFlags(rootCmd.Flags())

	rootCmd.AddCommand(check.NewCheckCmd())
	rootCmd.AddCommand(configCmd.NewConfigCmd())
	rootCmd.AddCommand(install.NewInstallCmd())
	rootCmd.AddCommand(version.NewVersionCmd(Version))

	rootCmd.SetHelpFunc(styledHelpFunc)
	rootCmd.SetUsageFunc(styledUsageFunc)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	// Linux shells only
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	initCompletionCmd()
}

// initCompletionCmd mirrors cobra's default completion command without
// PowerShell.
func initCompletionCmd() {
	completionCmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate the autocompletion script for the specified shell",
		Long: fmt.Sprintf(`Generate the autocompletion script for %s for the specified shell.
See each sub-command's help for details on how to use the generated script.
`, rootCmd.Name()),
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	noDesc := false
	shortDesc := "Generate the autocompletion script for %s"

	bash := &cobra.Command{
		Use:   "bash",
		Short: fmt.Sprintf(shortDesc, "bash"),
		Long: fmt.Sprintf(`Generate the autocompletion script for the bash shell.

This script depends on the 'bash-completion' package.

To load completions in your current shell session:

	source <(%[1]s completion bash)

To load completions for every new session, execute once:

	%[1]s completion bash > ~/.local/share/bash-completion/completions/%[1]s
`, rootCmd.Name()),
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		ValidArgsFunction:     cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), !noDesc)
		},
	}

	zsh := &cobra.Command{
		Use:   "zsh",
		Short: fmt.Sprintf(shortDesc, "zsh"),
		Long: fmt.Sprintf(`Generate the autocompletion script for the zsh shell.

To load completions in your current shell session:

	source <(%[1]s completion zsh)

To load completions for every new session, execute once:

	%[1]s completion zsh > "${fpath[1]}/_%[1]s"
`, rootCmd.Name()),
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noDesc {
				return cmd.Root().GenZshCompletionNoDesc(cmd.OutOrStdout())
			}
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	}

	fish := &cobra.Command{
		Use:   "fish",
		Short: fmt.Sprintf(shortDesc, "fish"),
		Long: fmt.Sprintf(`Generate the autocompletion script for the fish shell.

To load completions in your current shell session:

	%[1]s completion fish | source

To load completions for every new session, execute once:

	%[1]s completion fish > ~/.config/fish/completions/%[1]s.fish
`, rootCmd.Name()),
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), !noDesc)
		},
	}

	for _, c := range []*cobra.Command{bash, zsh, fish} {
		c.Flags().BoolVar(&noDesc, "no-descriptions", false, "disable completion descriptions")
	}

	completionCmd.AddCommand(bash, zsh, fish)
	rootCmd.AddCommand(completionCmd)
}

func styledHelpFunc(cmd *cobra.Command, args []string) {
	renderMarkdown(os.Stdout, generateHelpMarkdown(cmd))
}

func styledUsageFunc(cmd *cobra.Command) error {
	renderMarkdown(os.Stdout, generateUsageMarkdown(cmd))
	return nil
}

func generateHelpMarkdown(cmd *cobra.Command) string {
	var md strings.Builder

	fmt.Fprintf(&md, "# %s\n\n", cmd.Name())

	if cmd.Long != "" {
		fmt.Fprintf(&md, "```\n%s\n```\n\n", cmd.Long)
	} else if cmd.Short != "" {
		fmt.Fprintf(&md, "%s\n\n", cmd.Short)
	}

	if cmd.Runnable() {
		md.WriteString("## Usage\n\n")
		fmt.Fprintf(&md, "```\n%s\n```\n\n", cmd.UseLine())
	}

	if len(cmd.Aliases) > 0 {
		md.WriteString("## Aliases\n\n")
		fmt.Fprintf(&md, "`%s`\n\n", strings.Join(cmd.Aliases, "`, `"))
	}

	if cmd.HasExample() {
		md.WriteString("## Examples\n\n")
		fmt.Fprintf(&md, "```\n%s\n```\n\n", cmd.Example)
	}

	writeCommandList(&md, "## Available Commands", cmd)

	if cmd.HasAvailableLocalFlags() {
		md.WriteString("## Flags\n\n")
		fmt.Fprintf(&md, "```\n%s\n```\n\n", cmd.LocalFlags().FlagUsages())
	}

	if cmd.HasAvailableInheritedFlags() {
		md.WriteString("## Global Flags\n\n")
		fmt.Fprintf(&md, "```\n%s\n```\n\n", cmd.InheritedFlags().FlagUsages())
	}

	fmt.Fprintf(&md, "Use `%s [command] --help` for more information about a command.\n", cmd.CommandPath())

	return md.String()
}

func generateUsageMarkdown(cmd *cobra.Command) string {
	var md strings.Builder

	md.WriteString("## Usage\n\n")

	if cmd.Runnable() {
		fmt.Fprintf(&md, "```\n%s\n```\n\n", cmd.UseLine())
	}

	writeCommandList(&md, "### Available Commands", cmd)

	if cmd.HasAvailableLocalFlags() {
		md.WriteString("### Flags\n\n")
		fmt.Fprintf(&md, "```\n%s\n```\n\n", cmd.LocalFlags().FlagUsages())
	}

	if cmd.HasAvailableInheritedFlags() {
		md.WriteString("### Global Flags\n\n")
		fmt.Fprintf(&md, "```\n%s\n```\n\n", cmd.InheritedFlags().FlagUsages())
	}

	return md.String()
}

func writeCommandList(md *strings.Builder, heading string, cmd *cobra.Command) {
	var lines []string
	for _, sub := range cmd.Commands() {
		if !sub.IsAvailableCommand() || sub.IsAdditionalHelpTopicCommand() {
			continue
		}
		lines = append(lines, fmt.Sprintf("- **%s** - %s\n", sub.Name(), sub.Short))
	}
	if len(lines) == 0 {
		return
	}
	md.WriteString(heading + "\n\n")
	for _, l := range lines {
		md.WriteString(l)
	}
	md.WriteString("\n")
}

// renderMarkdown renders through glamour at the terminal width and falls back
// to the raw markdown.
func renderMarkdown(out io.Writer, markdown string) {
	width := 100
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		fmt.Fprintln(out, markdown)
		return
	}

	rendered, err := r.Render(markdown)
	if err != nil {
		fmt.Fprintln(out, markdown)
		return
	}

	fmt.Fprintln(out, strings.TrimRight(rendered, " \n"))
}
