// SPDX-License-Identifier: Apache-2.0

// Package keyinfo summarises provisioned keys for display. It only reads
// public key material.
package keyinfo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"golang.org/x/crypto/ssh"

	"github.com/Work-Fort/crypto-install/pkg/runner"
)

// PGPKey describes the first public key exported from a GnuPG home.
type PGPKey struct {
	KeyID       string
	Fingerprint string
	Name        string
	Email       string
	Comment     string
	Created     time.Time
}

// SSHKey describes an OpenSSH public key.
type SSHKey struct {
	Type        string
	Fingerprint string
	Comment     string
}

func (k PGPKey) String() string {
	return fmt.Sprintf("%s <%s> %s", k.Name, k.Email, k.Fingerprint)
}

func (k SSHKey) String() string {
	return fmt.Sprintf("%s %s %s", k.Type, k.Fingerprint, k.Comment)
}

// GnuPG exports the public keys of home with the given gpg program and parses
// the first one.
func GnuPG(ctx context.Context, r runner.Runner, program, home string) (*PGPKey, error) {
	if program == "" {
		program = "gpg"
	}

	stream, err := r.Start(ctx, runner.Command{
		Program: program,
		Args:    []string{"--batch", "--homedir", home, "--export", "--armor"},
		Env: map[string]string{
			"GNUPGHOME": home,
			"PATH":      os.Getenv("PATH"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to export public key: %w", err)
	}

	var lines []string
	for line := range stream.Lines() {
		lines = append(lines, line)
	}
	code, err := stream.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to export public key: %w", err)
	}
	if code != 0 {
		return nil, fmt.Errorf("%s --export exited with status %d", program, code)
	}

	return ParseArmored(armorBlock(lines))
}

// ParseArmored reads the first key of an ASCII-armored key block.
func ParseArmored(armored string) (*PGPKey, error) {
	if strings.TrimSpace(armored) == "" {
		return nil, fmt.Errorf("no public key exported")
	}

	key, err := crypto.NewKeyFromArmored(armored)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key: %w", err)
	}

	entity := key.GetEntity()
	if entity == nil || entity.PrimaryKey == nil {
		return nil, fmt.Errorf("invalid key structure")
	}

	info := &PGPKey{
		KeyID:       fmt.Sprintf("%X", entity.PrimaryKey.KeyId),
		Fingerprint: fmt.Sprintf("%X", entity.PrimaryKey.Fingerprint),
		Created:     entity.PrimaryKey.CreationTime,
	}
	for _, identity := range entity.Identities {
		if identity.UserId != nil {
			info.Name = identity.UserId.Name
			info.Email = identity.UserId.Email
			info.Comment = identity.UserId.Comment
		}
		break
	}
	return info, nil
}

// armorBlock keeps only the lines between the armor header and footer, which
// drops gpg warnings interleaved on the shared output stream.
func armorBlock(lines []string) string {
	var (
		out    []string
		inside bool
	)
	for _, l := range lines {
		if strings.HasPrefix(l, "-----BEGIN PGP PUBLIC KEY BLOCK-----") {
			inside = true
		}
		if inside {
			out = append(out, l)
		}
		if strings.HasPrefix(l, "-----END PGP PUBLIC KEY BLOCK-----") {
			break
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

// OpenSSH reads the public key next to privateKeyPath (privateKeyPath + ".pub").
func OpenSSH(privateKeyPath string) (*SSHKey, error) {
	data, err := os.ReadFile(privateKeyPath + ".pub")
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	return ParseAuthorizedKey(data)
}

// ParseAuthorizedKey parses one authorized_keys formatted line.
func ParseAuthorizedKey(data []byte) (*SSHKey, error) {
	pub, comment, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return &SSHKey{
		Type:        pub.Type(),
		Fingerprint: ssh.FingerprintSHA256(pub),
		Comment:     comment,
	}, nil
}
