// SPDX-License-Identifier: Apache-2.0
package toolcheck

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-version"

	"github.com/Work-Fort/crypto-install/pkg/runner/runnertest"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		banner  string
		want    string
		wantErr bool
	}{
		{"gpg (GnuPG) 2.4.4", "2.4.4", false},
		{"gpg (GnuPG) 1.4.23", "1.4.23", false},
		{"OpenSSH_9.6p1 Ubuntu-3ubuntu13, OpenSSL 3.0.13 30 Jan 2024", "9.6", false},
		{"gpg (GnuPG/MacGPG2) 2.2.41", "2.2.41", false},
		{"no version here", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseVersion(tt.banner)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) error = %v, wantErr %v", tt.banner, err, tt.wantErr)
			continue
		}
		if err == nil && !got.Equal(version.Must(version.NewVersion(tt.want))) {
			t.Errorf("ParseVersion(%q) = %s, want %s", tt.banner, got, tt.want)
		}
	}
}

func TestUsesKeybox(t *testing.T) {
	tests := []struct {
		v    string
		want bool
	}{
		{"1.4.23", false},
		{"2.0.30", false},
		{"2.1.0", true},
		{"2.4.4", true},
	}

	for _, tt := range tests {
		if got := UsesKeybox(version.Must(version.NewVersion(tt.v))); got != tt.want {
			t.Errorf("UsesKeybox(%s) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if UsesKeybox(nil) {
		t.Error("UsesKeybox(nil) = true")
	}
}

func TestInspect(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	rec := &runnertest.Recorder{Default: runnertest.Response{Lines: []string{"gpg (GnuPG) 2.2.40", "libgcrypt 1.10.1"}}}
	tool, err := Inspect(context.Background(), rec, "sh", "--version")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if !tool.Found() {
		t.Fatal("Found() = false for sh")
	}
	if tool.Banner != "gpg (GnuPG) 2.2.40" || tool.Version.String() != "2.2.40" {
		t.Errorf("tool = %+v", tool)
	}
	if rec.Calls[0].Env["LC_ALL"] != "C" {
		t.Errorf("env = %v, want LC_ALL=C", rec.Calls[0].Env)
	}
}

func TestInspectMissingProgram(t *testing.T) {
	rec := &runnertest.Recorder{}
	tool, err := Inspect(context.Background(), rec, "crypto-install-no-such-tool", "--version")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if tool.Found() {
		t.Error("Found() = true for a missing program")
	}
	if rec.CallCount() != 0 {
		t.Errorf("runner called %d times for a missing program", rec.CallCount())
	}
}

func TestInspectFailure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	rec := &runnertest.Recorder{Default: runnertest.Response{ExitCode: 1}}
	if _, err := Inspect(context.Background(), rec, "sh", "--version"); err == nil {
		t.Error("Inspect() error = nil for non-zero exit")
	}
}

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenSSH(t *testing.T) {
	banner := runnertest.Response{Lines: []string{"OpenSSH_9.6p1 Ubuntu-3ubuntu13, OpenSSL 3.0.13 30 Jan 2024"}}

	tests := []struct {
		name        string
		siblingSSH  bool
		pathSSH     bool
		wantClient  string
		wantVersion string
		wantErr     bool
	}{
		{name: "sibling client", siblingSSH: true, pathSSH: true, wantClient: "sibling", wantVersion: "9.6.0"},
		{name: "client from PATH", pathSSH: true, wantClient: "path", wantVersion: "9.6.0"},
		{name: "no client", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toolDir := t.TempDir()
			pathDir := t.TempDir()
			keygen := writeExecutable(t, toolDir, "my-keygen")
			clients := map[string]string{}
			if tt.siblingSSH {
				clients["sibling"] = writeExecutable(t, toolDir, "ssh")
			}
			if tt.pathSSH {
				clients["path"] = writeExecutable(t, pathDir, "ssh")
			}
			t.Setenv("PATH", pathDir)

			rec := &runnertest.Recorder{Default: banner}
			tool, err := OpenSSH(context.Background(), rec, keygen)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenSSH() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tool.Found() || tool.Path != keygen || tool.Program != keygen {
				t.Fatalf("tool = %+v, want the configured program", tool)
			}
			if tt.wantErr {
				if rec.CallCount() != 0 || tool.Version != nil {
					t.Errorf("version read without a client: calls=%d tool=%+v", rec.CallCount(), tool)
				}
				return
			}
			if got := rec.Calls[0].Program; got != clients[tt.wantClient] {
				t.Errorf("ran %q, want %q", got, clients[tt.wantClient])
			}
			if tool.Version.String() != tt.wantVersion {
				t.Errorf("version = %s, want %s", tool.Version, tt.wantVersion)
			}
		})
	}
}

func TestOpenSSHMissingProgram(t *testing.T) {
	rec := &runnertest.Recorder{}
	tool, err := OpenSSH(context.Background(), rec, "crypto-install-no-such-keygen")
	if err != nil {
		t.Fatalf("OpenSSH() error = %v", err)
	}
	if tool.Found() {
		t.Error("Found() = true for a missing program")
	}
	if rec.CallCount() != 0 {
		t.Errorf("runner called %d times for a missing program", rec.CallCount())
	}
}
