// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	AppName = "crypto-install"

	// Configuration
	EnvPrefix        = "CRYPTO_INSTALL" // Environment variable prefix for Viper
	ConfigFileName   = "config"         // Config file name in the XDG config dir (without extension)
	ConfigType       = "yaml"
	DefaultConfigExt = ".yaml"

	// DebugLogFile lives in the data directory.
	DebugLogFile = "debug.log"
)

// Paths holds the XDG directories used by the CLI
type Paths struct {
	DataDir   string
	ConfigDir string
}

var (
	// GlobalPaths is the global paths instance
	GlobalPaths *Paths
)

func init() {
	GlobalPaths = GetPaths()
}

// GetPaths returns XDG-compliant directory paths
func GetPaths() *Paths {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(userHome(), ".local", "share")
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(userHome(), ".config")
	}

	return &Paths{
		DataDir:   filepath.Join(dataHome, AppName),
		ConfigDir: filepath.Join(configHome, AppName),
	}
}

// ConfigFilePath is the user config file.
func ConfigFilePath() string {
	return filepath.Join(GlobalPaths.ConfigDir, ConfigFileName+DefaultConfigExt)
}

// InitDirs creates the config and data directories
func InitDirs() error {
	for _, dir := range []string{GlobalPaths.ConfigDir, GlobalPaths.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" {
		return userHome()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(userHome(), path[2:])
	}
	return path
}

// DefaultGnupgHome honours $GNUPGHOME like gpg itself does.
func DefaultGnupgHome() string {
	if home := os.Getenv("GNUPGHOME"); home != "" {
		return home
	}
	return filepath.Join(userHome(), ".gnupg")
}

// DefaultSSHHome is ~/.ssh.
func DefaultSSHHome() string {
	return filepath.Join(userHome(), ".ssh")
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to get home directory: %v\n", err)
		os.Exit(1)
	}
	return home
}
