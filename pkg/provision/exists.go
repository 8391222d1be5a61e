// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"os"
	"path/filepath"
)

// Exists reports whether every existence marker of spec is present. It has
// no side effects; unreadable or missing paths count as absent.
func Exists(spec Spec) bool {
	markers := spec.Markers()
	if len(markers) == 0 {
		return false
	}
	for _, m := range markers {
		if !markerPresent(m) {
			return false
		}
	}
	return true
}

// ExistingKey returns the path of an already present key for spec, checked
// independently of any configuration file. OpenSSH also honours a legacy
// id_dsa key.
func ExistingKey(spec Spec) (string, bool) {
	switch spec.Kind {
	case GnuPGIdentity:
		for _, m := range spec.Markers() {
			if fileExists(m) {
				return m, true
			}
			if matches, _ := filepath.Glob(m); len(matches) > 0 {
				return matches[0], true
			}
		}
	case OpenSSHKeyPair:
		for _, name := range []string{sshKeyFile, legacySSHKey} {
			p := filepath.Join(spec.Home, name)
			if fileExists(p) {
				return p, true
			}
		}
	}
	return "", false
}

func markerPresent(pattern string) bool {
	if fileExists(pattern) {
		return true
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return false
	}
	for _, m := range matches {
		if fileExists(m) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
