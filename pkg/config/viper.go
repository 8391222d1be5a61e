// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// InitViper sets defaults and environment binding.
// Precedence order: flags > ENV > user config > defaults
func InitViper() {
	viper.SetConfigType(ConfigType)

	for key, def := range ConfigRegistry {
		viper.SetDefault(key, def.Default)
	}
	// Defaults that depend on the environment
	viper.SetDefault("gnupg.home", DefaultGnupgHome())
	viper.SetDefault("openssh.home", DefaultSSHHome())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// LoadConfig reads ~/.config/crypto-install/config.yaml if present and
// validates every key in it.
func LoadConfig() error {
	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(GlobalPaths.ConfigDir)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read user config file: %w", err)
		}
		return nil
	}

	return validateConfigFile(ConfigFilePath())
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"log-level":     "log-level",
	"interactive":   "interactive",
	"gui":           "gui",
	"stop-on-error": "stop-on-error",
	"gnupg-home":    "gnupg.home",
	"ssh-home":      "openssh.home",
	"ssh-config":    "openssh.config",
}

// BindFlags binds the flags present in flags to their config keys.
func BindFlags(flags *pflag.FlagSet) error {
	for flagName, key := range flagKeys {
		f := flags.Lookup(flagName)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// ApplyDisableFlags turns --no-gpg and --no-ssh into overrides. It must run
// after flag parsing.
func ApplyDisableFlags(flags *pflag.FlagSet) {
	for flagName, key := range map[string]string{
		"no-gpg": "gnupg.enabled",
		"no-ssh": "openssh.enabled",
	} {
		if f := flags.Lookup(flagName); f != nil && f.Changed && f.Value.String() == "true" {
			viper.Set(key, false)
		}
	}
}

// GetLogLevel returns the log-level configuration value
func GetLogLevel() string {
	return viper.GetString("log-level")
}

// GetInteractive reports whether plain text prompts replace the form wizard.
func GetInteractive() bool {
	return viper.GetBool("interactive")
}

// GetGUI reports whether generators may open graphical prompts.
func GetGUI() bool {
	return viper.GetBool("gui")
}

func GetStopOnError() bool {
	return viper.GetBool("stop-on-error")
}

func GetGnuPGEnabled() bool {
	return viper.GetBool("gnupg.enabled")
}

// GetGnuPGHome returns the expanded gnupg.home value
func GetGnuPGHome() string {
	return ExpandPath(viper.GetString("gnupg.home"))
}

func GetGnuPGProgram() string {
	return viper.GetString("gnupg.program")
}

func GetGnuPGAlgorithm() string {
	return viper.GetString("gnupg.algorithm")
}

func GetGnuPGExistenceCheck() string {
	return viper.GetString("gnupg.existence-check")
}

func GetOpenSSHEnabled() bool {
	return viper.GetBool("openssh.enabled")
}

// GetOpenSSHHome returns the expanded openssh.home value
func GetOpenSSHHome() string {
	return ExpandPath(viper.GetString("openssh.home"))
}

// GetOpenSSHConfig returns the client config path, {openssh.home}/config
// unless set explicitly.
func GetOpenSSHConfig() string {
	if p := viper.GetString("openssh.config"); p != "" {
		return ExpandPath(p)
	}
	return filepath.Join(GetOpenSSHHome(), "config")
}

func GetOpenSSHProgram() string {
	return viper.GetString("openssh.program")
}

func GetPassphraseSource() string {
	return viper.GetString("openssh.passphrase-source")
}

// validateConfigFile rejects unknown keys and invalid values in a config file
func validateConfigFile(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	// Read the file on its own so defaults and ENV do not mask problems
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType(ConfigType)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file for validation: %w", err)
	}

	for _, key := range flattenKeys(v.AllSettings(), "") {
		if err := ValidateValue(key, v.Get(key)); err != nil {
			return fmt.Errorf("invalid value in config file %s: %w", configPath, err)
		}
	}

	return nil
}
