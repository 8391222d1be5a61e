// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/crypto-install/pkg/config"
)

func newUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset [key]",
		Short: "Remove configuration value",
		Long: `Remove a key from the user config file.

Removing a parent key removes all nested values (unsetting 'openssh'
removes 'openssh.home' and its siblings). Environment variables and defaults
still apply afterwards.`,
		Args:    cobra.ExactArgs(1),
		Example: `  crypto-install config unset gnupg.algorithm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if err := config.UnsetConfigValue(key); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", key, config.ConfigFilePath())
			return nil
		},
	}
}
