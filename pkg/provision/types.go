// SPDX-License-Identifier: Apache-2.0

// Package provision decides whether a GnuPG identity and an OpenSSH key pair
// need to be created, collects validated input for them and drives the
// external key generators.
package provision

import "path/filepath"

// Kind identifies a credential type.
type Kind int

const (
	// GnuPGIdentity is an OpenPGP key pair managed by gpg.
	GnuPGIdentity Kind = iota
	// OpenSSHKeyPair is an RSA key pair created by ssh-keygen.
	OpenSSHKeyPair
)

func (k Kind) String() string {
	switch k {
	case GnuPGIdentity:
		return "GnuPG identity"
	case OpenSSHKeyPair:
		return "OpenSSH key pair"
	default:
		return "unknown credential"
	}
}

// Slug is the short lowercase name used in config keys and logs.
func (k Kind) Slug() string {
	switch k {
	case GnuPGIdentity:
		return "gnupg"
	case OpenSSHKeyPair:
		return "openssh"
	default:
		return "unknown"
	}
}

// KeyringCheck selects which files prove that a GnuPG secret key exists.
type KeyringCheck string

const (
	// KeyringSecring looks for the legacy secring.gpg file.
	KeyringSecring KeyringCheck = "secring"
	// KeyringKeybox looks for private-keys-v1.d/*.key, written by GnuPG 2.1 and later.
	KeyringKeybox KeyringCheck = "keybox"
)

// Algorithm selects the GnuPG key algorithms written to the batch description.
type Algorithm string

const (
	// AlgorithmLegacy is a DSA 2048 primary key with an ElGamal 2048 subkey.
	AlgorithmLegacy Algorithm = "legacy"
	// AlgorithmModern is an Ed25519 primary key with a Curve25519 subkey.
	AlgorithmModern Algorithm = "modern"
)

const (
	secringFile     = "secring.gpg"
	privateKeysDir  = "private-keys-v1.d"
	sshKeyFile      = "id_rsa"
	legacySSHKey    = "id_dsa"
	sshConfigFile   = "config"
	sshConfigStanza = "ForwardAgent yes\nForwardX11 yes\n"
)

// Spec describes one credential to provision. It is built once per run.
type Spec struct {
	Kind Kind
	// Home is the expanded directory holding the credential.
	Home string
	// ConfigFile is the OpenSSH client configuration path. Empty means {Home}/config.
	ConfigFile string
	// Program is the generator executable, looked up in PATH when not absolute.
	Program string
	// KeyringCheck applies to GnuPG only. Empty means KeyringSecring.
	KeyringCheck KeyringCheck
	// Algorithm applies to GnuPG only. Empty means AlgorithmLegacy.
	Algorithm Algorithm
}

// SSHConfigPath returns the effective OpenSSH config path.
func (s Spec) SSHConfigPath() string {
	if s.ConfigFile != "" {
		return s.ConfigFile
	}
	return filepath.Join(s.Home, sshConfigFile)
}

// KeyPath is where the generated private key ends up. For GnuPG it is the
// legacy secret keyring path.
func (s Spec) KeyPath() string {
	if s.Kind == OpenSSHKeyPair {
		return filepath.Join(s.Home, sshKeyFile)
	}
	return filepath.Join(s.Home, secringFile)
}

// Markers lists the paths whose joint presence means the credential exists.
func (s Spec) Markers() []string {
	switch s.Kind {
	case GnuPGIdentity:
		if s.KeyringCheck == KeyringKeybox {
			return []string{filepath.Join(s.Home, privateKeysDir, "*.key")}
		}
		return []string{filepath.Join(s.Home, secringFile)}
	case OpenSSHKeyPair:
		return []string{s.SSHConfigPath(), filepath.Join(s.Home, sshKeyFile)}
	default:
		return nil
	}
}

// IdentityFields is the operator input for a GnuPG identity.
type IdentityFields struct {
	Name    string
	Email   string
	Comment string
}

// Outcome classifies what happened to one credential.
type Outcome int

const (
	OutcomeAlreadyExists Outcome = iota
	OutcomeCreated
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyExists:
		return "already exists"
	case OutcomeCreated:
		return "created"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome for one credential.
type Result struct {
	Kind    Kind
	Outcome Outcome
	// Path is the existing or newly generated key location.
	Path string
	// Err is set when Outcome is OutcomeFailed.
	Err error
}
