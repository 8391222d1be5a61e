// SPDX-License-Identifier: Apache-2.0
package config

import (
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command and its subcommands
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage crypto-install configuration",
		Long: `Manage crypto-install configuration settings.

Configuration precedence (highest to lowest):
  1. Command-line flags
  2. Environment variables (CRYPTO_INSTALL_*)
  3. User config (~/.config/crypto-install/config.yaml)
  4. Defaults`,
		Example: `  # Use text prompts instead of the form wizard
  crypto-install config set interactive true

  # Generate Ed25519/Curve25519 keys
  crypto-install config set gnupg.algorithm modern

  # Show a value and where it comes from
  crypto-install config get openssh.home

  # Remove a value
  crypto-install config unset gnupg.algorithm

  # List all configuration
  crypto-install config list`,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newUnsetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSchemaCmd())

	return cmd
}
