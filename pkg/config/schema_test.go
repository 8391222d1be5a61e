// SPDX-License-Identifier: Apache-2.0
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigRegistry_KeysMatchDefinitions(t *testing.T) {
	for key, def := range ConfigRegistry {
		if def.Key != key {
			t.Errorf("registry key %q has definition key %q", key, def.Key)
		}
		if def.Description == "" {
			t.Errorf("%s has no description", key)
		}
		if def.Type == "enum" {
			found := false
			for _, v := range def.EnumValues {
				if v == def.Default {
					found = true
				}
			}
			if !found {
				t.Errorf("%s default %v is not one of %v", key, def.Default, def.EnumValues)
			}
		}
	}
}

func TestConfigRegistry_Defaults(t *testing.T) {
	tests := []struct {
		key  string
		want interface{}
	}{
		{"gnupg.enabled", true},
		{"openssh.enabled", true},
		{"interactive", false},
		{"gui", false},
		{"stop-on-error", false},
		{"gnupg.program", "gpg"},
		{"gnupg.algorithm", "legacy"},
		{"gnupg.existence-check", "secring"},
		{"openssh.program", "ssh-keygen"},
		{"openssh.passphrase-source", "auto"},
		{"log-level", "debug"},
	}

	for _, tt := range tests {
		def := GetKeyDefinition(tt.key)
		if def == nil {
			t.Errorf("GetKeyDefinition(%q) = nil", tt.key)
			continue
		}
		if def.Default != tt.want {
			t.Errorf("%s default = %v, want %v", tt.key, def.Default, tt.want)
		}
	}
}

func TestGetKeyDefinition_NonExistentKey(t *testing.T) {
	if def := GetKeyDefinition("signing.key.name"); def != nil {
		t.Errorf("GetKeyDefinition() = %+v, want nil", def)
	}
}

func TestValidateValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   interface{}
		wantErr bool
	}{
		{"bool valid", "interactive", true, false},
		{"bool invalid", "interactive", "yes", true},
		{"enum valid", "gnupg.algorithm", "modern", false},
		{"enum invalid", "gnupg.algorithm", "rsa", true},
		{"enum wrong type", "log-level", 3, true},
		{"passphrase source", "openssh.passphrase-source", "stdin", false},
		{"existence check", "gnupg.existence-check", "keybox", false},
		{"program valid", "gnupg.program", "/usr/bin/gpg2", false},
		{"program blank", "openssh.program", " ", true},
		{"string wrong type", "gnupg.program", 1, true},
		{"unknown key", "no.such.key", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateValue(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateValue(%q, %v) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateValue_Paths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"home directory", "gnupg.home", dir, ""},
		{"home missing", "openssh.home", filepath.Join(dir, "new"), ""},
		{"home is a file", "gnupg.home", file, "existing file"},
		{"config is a file", "openssh.config", file, ""},
		{"config missing", "openssh.config", filepath.Join(dir, "config"), ""},
		{"config is a directory", "openssh.config", dir, "directory"},
		{"empty means default", "openssh.config", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateValue(tt.key, tt.value)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateValue() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateValue() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.ssh", filepath.Join(home, ".ssh")},
		{"/etc/ssh", "/etc/ssh"},
		{"relative/~", "relative/~"},
		{"~other/.ssh", "~other/.ssh"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultGnupgHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv("GNUPGHOME", "")
	if got, want := DefaultGnupgHome(), filepath.Join(home, ".gnupg"); got != want {
		t.Errorf("DefaultGnupgHome() = %q, want %q", got, want)
	}

	t.Setenv("GNUPGHOME", "/srv/gnupg")
	if got := DefaultGnupgHome(); got != "/srv/gnupg" {
		t.Errorf("DefaultGnupgHome() = %q, want $GNUPGHOME", got)
	}
}
