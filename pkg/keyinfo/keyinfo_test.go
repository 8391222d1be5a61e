// SPDX-License-Identifier: Apache-2.0
package keyinfo

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"golang.org/x/crypto/ssh"

	"github.com/Work-Fort/crypto-install/pkg/runner/runnertest"
)

func armoredPublicKey(t *testing.T) string {
	t.Helper()
	key, err := crypto.PGP().KeyGeneration().AddUserId("John Doe", "john@example.com").New().GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	pub, err := key.ToPublic()
	if err != nil {
		t.Fatalf("ToPublic() error = %v", err)
	}
	armored, err := pub.Armor()
	if err != nil {
		t.Fatalf("Armor() error = %v", err)
	}
	return armored
}

func TestGnuPG(t *testing.T) {
	armored := armoredPublicKey(t)
	lines := append([]string{"gpg: WARNING: unsafe permissions on homedir"}, strings.Split(strings.TrimRight(armored, "\n"), "\n")...)
	rec := &runnertest.Recorder{Default: runnertest.Response{Lines: lines}}

	info, err := GnuPG(context.Background(), rec, "", "/home/john/.gnupg")
	if err != nil {
		t.Fatalf("GnuPG() error = %v", err)
	}
	if info.Name != "John Doe" || info.Email != "john@example.com" {
		t.Errorf("identity = %q <%q>", info.Name, info.Email)
	}
	if len(info.Fingerprint) < 40 {
		t.Errorf("fingerprint = %q, want at least 40 hex digits", info.Fingerprint)
	}

	call := rec.Calls[0]
	if call.Program != "gpg" || call.Env["GNUPGHOME"] != "/home/john/.gnupg" {
		t.Errorf("command = %s %v env %v", call.Program, call.Args, call.Env)
	}
}

func TestGnuPGFailures(t *testing.T) {
	tests := []struct {
		name string
		resp runnertest.Response
	}{
		{"exit status", runnertest.Response{ExitCode: 2, Lines: []string{"gpg: keyblock resource: No such file"}}},
		{"empty export", runnertest.Response{Lines: []string{"gpg: WARNING: nothing exported"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &runnertest.Recorder{Default: tt.resp}
			if _, err := GnuPG(context.Background(), rec, "gpg2", t.TempDir()); err == nil {
				t.Error("GnuPG() error = nil, want failure")
			}
		})
	}
}

func TestOpenSSH(t *testing.T) {
	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sshPub, err := ssh.NewPublicKey(pubKey)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " john@box\n"

	dir := t.TempDir()
	keyPath := filepath.Join(dir, "id_rsa")
	if err := os.WriteFile(keyPath+".pub", []byte(line), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := OpenSSH(keyPath)
	if err != nil {
		t.Fatalf("OpenSSH() error = %v", err)
	}
	if info.Type != ssh.KeyAlgoED25519 {
		t.Errorf("Type = %q, want %q", info.Type, ssh.KeyAlgoED25519)
	}
	if info.Comment != "john@box" {
		t.Errorf("Comment = %q, want john@box", info.Comment)
	}
	if want := ssh.FingerprintSHA256(sshPub); info.Fingerprint != want {
		t.Errorf("Fingerprint = %q, want %q", info.Fingerprint, want)
	}
}

func TestOpenSSHMissing(t *testing.T) {
	if _, err := OpenSSH(filepath.Join(t.TempDir(), "id_rsa")); err == nil {
		t.Error("OpenSSH() error = nil for missing key")
	}
}

func TestParseAuthorizedKeyInvalid(t *testing.T) {
	if _, err := ParseAuthorizedKey([]byte("not a key")); err == nil {
		t.Error("ParseAuthorizedKey() error = nil for garbage")
	}
}
