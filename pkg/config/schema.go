// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
)

// ConfigKeyDefinition defines metadata for a configuration key
type ConfigKeyDefinition struct {
	Key         string      // Configuration key (dot notation)
	Type        string      // "string", "bool", "enum"
	Default     interface{} // Default value
	Description string      // Help text

	EnumValues []string // Valid values for enum type (if Type="enum")
	Pattern    string   // Regex pattern for validation (if Type="string")

	// Path marks string keys that name a filesystem location. Dir tells
	// whether that location must be a directory or a file.
	Path bool
	Dir  bool
}

// ConfigRegistry holds all known configuration keys.
var ConfigRegistry = map[string]ConfigKeyDefinition{
	"log-level": {
		Key:         "log-level",
		Type:        "enum",
		Default:     "debug",
		Description: "Debug log verbosity level",
		EnumValues:  []string{"disabled", "debug", "info", "warn", "error"},
	},

	"interactive": {
		Key:         "interactive",
		Type:        "bool",
		Default:     false,
		Description: "Use plain text prompts instead of the form wizard",
	},

	"gui": {
		Key:         "gui",
		Type:        "bool",
		Default:     false,
		Description: "Let key generators open graphical passphrase prompts",
	},

	"stop-on-error": {
		Key:         "stop-on-error",
		Type:        "bool",
		Default:     false,
		Description: "Stop after the first credential that fails to generate",
	},

	"gnupg.enabled": {
		Key:         "gnupg.enabled",
		Type:        "bool",
		Default:     true,
		Description: "Provision a GnuPG identity",
	},

	"gnupg.home": {
		Key:         "gnupg.home",
		Type:        "string",
		Default:     "", // Set in InitViper() from $GNUPGHOME or ~/.gnupg
		Description: "GnuPG home directory",
		Path:        true,
		Dir:         true,
	},

	"gnupg.program": {
		Key:         "gnupg.program",
		Type:        "string",
		Default:     "gpg",
		Description: "gpg executable (name in PATH or absolute path)",
		Pattern:     `^\S`,
	},

	"gnupg.algorithm": {
		Key:         "gnupg.algorithm",
		Type:        "enum",
		Default:     "legacy",
		Description: "Key algorithms: legacy (DSA/ElGamal 2048) or modern (Ed25519/Curve25519)",
		EnumValues:  []string{"legacy", "modern"},
	},

	"gnupg.existence-check": {
		Key:         "gnupg.existence-check",
		Type:        "enum",
		Default:     "secring",
		Description: "Files proving a GnuPG key exists: secring (secring.gpg) or keybox (private-keys-v1.d/*.key)",
		EnumValues:  []string{"secring", "keybox"},
	},

	"openssh.enabled": {
		Key:         "openssh.enabled",
		Type:        "bool",
		Default:     true,
		Description: "Provision an OpenSSH key pair",
	},

	"openssh.home": {
		Key:         "openssh.home",
		Type:        "string",
		Default:     "", // Set in InitViper() to ~/.ssh
		Description: "OpenSSH directory",
		Path:        true,
		Dir:         true,
	},

	"openssh.config": {
		Key:         "openssh.config",
		Type:        "string",
		Default:     "",
		Description: "OpenSSH client config file (default: {openssh.home}/config)",
		Path:        true,
	},

	"openssh.program": {
		Key:         "openssh.program",
		Type:        "string",
		Default:     "ssh-keygen",
		Description: "ssh-keygen executable (name in PATH or absolute path)",
		Pattern:     `^\S`,
	},

	"openssh.passphrase-source": {
		Key:         "openssh.passphrase-source",
		Type:        "enum",
		Default:     "auto",
		Description: "Where the OpenSSH key passphrase comes from: auto, env, stdin or prompt",
		EnumValues:  []string{"auto", "env", "stdin", "prompt"},
	},
}

// GetKeyDefinition returns the definition for a key, or nil if not found
func GetKeyDefinition(key string) *ConfigKeyDefinition {
	if def, ok := ConfigRegistry[key]; ok {
		return &def
	}
	return nil
}

// ValidateValue checks if a value is valid for the given key
func ValidateValue(key string, value interface{}) error {
	def := GetKeyDefinition(key)
	if def == nil {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	switch def.Type {
	case "bool":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("key '%s' must be a boolean", key)
		}

	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a string", key)
		}

		if def.Pattern != "" {
			matched, err := regexp.MatchString(def.Pattern, str)
			if err != nil {
				return fmt.Errorf("pattern validation error: %w", err)
			}
			if !matched {
				return fmt.Errorf("key '%s' value '%s' does not match required format", key, str)
			}
		}

		if def.Path && str != "" {
			if err := validatePath(ExpandPath(str), def.Dir); err != nil {
				return fmt.Errorf("key '%s': %w", key, err)
			}
		}

	case "enum":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("key '%s' must be a string", key)
		}
		if !slices.Contains(def.EnumValues, str) {
			return fmt.Errorf("key '%s' must be one of %v (got '%s')", key, def.EnumValues, str)
		}
	}

	return nil
}

// validatePath accepts a non-existent path (it will be created) or an
// existing one of the right kind.
func validatePath(path string, wantDir bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access path: %w", err)
	}

	if wantDir && !info.IsDir() {
		return fmt.Errorf("path points to an existing file; must be a directory or non-existent path")
	}
	if !wantDir && info.IsDir() {
		return fmt.Errorf("path points to a directory; must be a file or non-existent path")
	}
	return nil
}
