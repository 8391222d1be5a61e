// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Work-Fort/crypto-install/pkg/config"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Get configuration value",
		Long: `Get a configuration value and show its source.

The source is one of:
  - ENV: environment variable (CRYPTO_INSTALL_*)
  - the user config file
  - default: built-in default value`,
		Args: cobra.ExactArgs(1),
		Example: `  crypto-install config get gnupg.home

  # Output shows value and source:
  # gnupg.home = /home/max/.gnupg (default)
  # interactive = true (from ENV: CRYPTO_INSTALL_INTERACTIVE)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := config.GetConfigValue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", cv.Key, cv.Value, cv.Source)
			return nil
		},
	}
}
