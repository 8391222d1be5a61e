// SPDX-License-Identifier: Apache-2.0
package runner

import (
	"context"
	"os"
	"os/exec"
	"slices"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func shellEnv() map[string]string {
	return map[string]string{"PATH": os.Getenv("PATH")}
}

func collect(t *testing.T, s Stream) ([]string, int) {
	t.Helper()
	var lines []string
	for line := range s.Lines() {
		lines = append(lines, line)
	}
	code, err := s.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	return lines, code
}

func TestExecStreamsCombinedOutput(t *testing.T) {
	s, err := Exec{}.Start(context.Background(), Command{
		Program: "sh",
		Env:     shellEnv(),
		Args:    []string{"-c", "echo one; echo two >&2; echo three"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	lines, code := collect(t, s)
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	want := []string{"one", "two", "three"}
	if !slices.Equal(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestExecExitCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"success", "0", 0},
		{"failure", "1", 1},
		{"other", "42", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Exec{}.Start(context.Background(), Command{
				Program: "sh",
				Env:     shellEnv(),
				Args:    []string{"-c", "echo failing; exit " + tt.code},
			})
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			_, code := collect(t, s)
			if code != tt.want {
				t.Errorf("exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestExecUsesOnlyGivenEnvironment(t *testing.T) {
	envPath, err := exec.LookPath("env")
	if err != nil {
		t.Skip("env not available")
	}
	t.Setenv("CRYPTO_INSTALL_LEAK_CHECK", "parent")

	s, err := Exec{}.Start(context.Background(), Command{
		Program: envPath,
		Env:     map[string]string{"B": "2", "A": "1"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	lines, _ := collect(t, s)
	want := []string{"A=1", "B=2"}
	if !slices.Equal(lines, want) {
		t.Errorf("env = %q, want %q", lines, want)
	}
}

func TestExecClosesStdin(t *testing.T) {
	s, err := Exec{}.Start(context.Background(), Command{
		Program: "sh",
		Env:     shellEnv(),
		Args:    []string{"-c", "cat; echo done"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	lines, code := collect(t, s)
	if code != 0 || !slices.Equal(lines, []string{"done"}) {
		t.Errorf("got lines %q code %d, want [done] 0", lines, code)
	}
}

func TestExecWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := Exec{}.Start(context.Background(), Command{
		Program: "sh",
		Env:     shellEnv(),
		Args:    []string{"-c", "pwd -P"},
		Dir:     dir,
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lines, _ := collect(t, s)
	if len(lines) != 1 {
		t.Fatalf("lines = %q, want one line", lines)
	}
}

func TestExecWaitWithoutReading(t *testing.T) {
	s, err := Exec{}.Start(context.Background(), Command{
		Program: "sh",
		Env:     shellEnv(),
		Args:    []string{"-c", "i=0; while [ $i -lt 2000 ]; do echo line $i; i=$((i+1)); done; exit 3"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	code, err := s.Wait()
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestExecCancelKillsChild(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := Exec{}.Start(ctx, Command{
		Program: "sh",
		Env:     shellEnv(),
		Args:    []string{"-c", "echo started; sleep 30"},
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for line := range s.Lines() {
		if line == "started" {
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Wait()
		done <- err
	}()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Wait() error = %v, want %v", err, context.Canceled)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("child was not killed after cancellation")
	}
}

func TestExecStartFailure(t *testing.T) {
	_, err := Exec{}.Start(context.Background(), Command{Program: "/nonexistent/crypto-install-engine"})
	if err == nil {
		t.Fatal("Start() error = nil, want error for missing program")
	}
}

func TestRedact(t *testing.T) {
	args := []string{"-q", "-t", "rsa", "-N", "secret", "-f", "id_rsa"}
	got := redact(args)
	if got[4] != "******" {
		t.Errorf("redact() = %v, passphrase not hidden", got)
	}
	if args[4] != "secret" {
		t.Errorf("redact() modified its input")
	}
}
