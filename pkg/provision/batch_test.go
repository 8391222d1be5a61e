// SPDX-License-Identifier: Apache-2.0
package provision

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderBatchLegacy(t *testing.T) {
	got, err := RenderBatch(IdentityFields{Name: "John Doe", Email: "john@example.com"}, "", KeyProtection{Ask: true})
	if err != nil {
		t.Fatalf("RenderBatch() error = %v", err)
	}

	want := "Key-Type: DSA\n" +
		"Key-Length: 2048\n" +
		"Key-Usage: sign\n" +
		"Subkey-Type: ELG-E\n" +
		"Subkey-Length: 2048\n" +
		"Subkey-Usage: encrypt\n" +
		"Name-Real: John Doe\n" +
		"Name-Email: john@example.com\n" +
		"Expire-Date: 0\n" +
		"%commit\n"
	if got != want {
		t.Errorf("RenderBatch() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderBatchComment(t *testing.T) {
	got, err := RenderBatch(IdentityFields{Name: "Max Mustermann", Email: "max@example.de", Comment: "Schlüssel für 2014"}, AlgorithmLegacy, KeyProtection{})
	if err != nil {
		t.Fatalf("RenderBatch() error = %v", err)
	}
	if !strings.Contains(got, "Name-Email: max@example.de\nName-Comment: Schlüssel für 2014\nExpire-Date: 0\n") {
		t.Errorf("RenderBatch() missing comment line:\n%s", got)
	}
}

func TestRenderBatchModern(t *testing.T) {
	got, err := RenderBatch(IdentityFields{Name: "John Doe", Email: "john@example.com"}, AlgorithmModern, KeyProtection{})
	if err != nil {
		t.Fatalf("RenderBatch() error = %v", err)
	}
	for _, want := range []string{"Key-Type: EDDSA\n", "Key-Curve: ed25519\n", "Subkey-Curve: cv25519\n", "Name-Real: John Doe\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderBatch() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Key-Type: DSA") {
		t.Errorf("RenderBatch() rendered legacy algorithms in modern mode")
	}
	if strings.Contains(got, "Name-Comment") {
		t.Errorf("RenderBatch() wrote empty comment")
	}
}

func TestRenderBatchRejects(t *testing.T) {
	john := IdentityFields{Name: "John", Email: "john@example.com"}
	tests := []struct {
		name   string
		fields IdentityFields
		prot   KeyProtection
	}{
		{"blank name", IdentityFields{Name: "", Email: "john@example.com"}, KeyProtection{}},
		{"bad email", IdentityFields{Name: "John", Email: "nope"}, KeyProtection{}},
		{"injected directive", IdentityFields{Name: "John\n%no-protection", Email: "john@example.com"}, KeyProtection{}},
		{"carriage return in comment", IdentityFields{Name: "John", Email: "john@example.com", Comment: "a\rb"}, KeyProtection{}},
		{"line break in passphrase", john, KeyProtection{Passphrase: "a\n%no-protection"}},
		{"padded passphrase", john, KeyProtection{Passphrase: " secret "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderBatch(tt.fields, AlgorithmLegacy, tt.prot)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("RenderBatch() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRenderBatchProtection(t *testing.T) {
	fields := IdentityFields{Name: "John Doe", Email: "john@example.com"}
	tests := []struct {
		name string
		prot KeyProtection
		tail string
	}{
		{"passphrase", KeyProtection{Passphrase: "s3cret"}, "Expire-Date: 0\nPassphrase: s3cret\n%commit\n"},
		{"no passphrase", KeyProtection{}, "Expire-Date: 0\n%no-protection\n%commit\n"},
		{"pinentry", KeyProtection{Ask: true}, "Expire-Date: 0\n%commit\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderBatch(fields, AlgorithmModern, tt.prot)
			if err != nil {
				t.Fatalf("RenderBatch() error = %v", err)
			}
			if !strings.HasSuffix(got, tt.tail) {
				t.Errorf("RenderBatch() =\n%s\nwant suffix\n%s", got, tt.tail)
			}
		})
	}
}

func TestChildEnv(t *testing.T) {
	base := []string{"HOME=/home/john", "DISPLAY=:0", "WAYLAND_DISPLAY=wayland-0", "SSH_ASKPASS=/usr/bin/askpass", "BROKEN"}

	env := childEnv(base, false, []string{"SSH_ASKPASS"}, map[string]string{"GNUPGHOME": "/tmp/g"})
	for _, k := range []string{"DISPLAY", "WAYLAND_DISPLAY", "SSH_ASKPASS"} {
		if _, ok := env[k]; ok {
			t.Errorf("childEnv() kept %s", k)
		}
	}
	if env["HOME"] != "/home/john" || env["GNUPGHOME"] != "/tmp/g" {
		t.Errorf("childEnv() = %v", env)
	}

	gui := childEnv(base, true, []string{"SSH_ASKPASS"}, nil)
	if gui["DISPLAY"] != ":0" || gui["SSH_ASKPASS"] == "" {
		t.Errorf("childEnv() in GUI mode stripped display variables: %v", gui)
	}
}
