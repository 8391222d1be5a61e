// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/crypto-install/pkg/config"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set configuration value",
		Long: `Set a configuration key in the user config file.

Keys use dot notation for nested values (e.g., openssh.home). Values are
checked against the key's type, allowed values and pattern before writing.

Boolean values support natural language:
  - true:  true, yes, on, enable, enabled
  - false: false, no, off, disable, disabled`,
		Args: cobra.ExactArgs(2),
		Example: `  crypto-install config set interactive yes
  crypto-install config set gnupg.existence-check keybox
  crypto-install config set openssh.passphrase-source env`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if err := config.SetConfigValue(key, value); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s (%s)\n", key, value, config.ConfigFilePath())
			return nil
		},
	}
}
