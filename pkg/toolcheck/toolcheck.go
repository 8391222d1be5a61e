// SPDX-License-Identifier: Apache-2.0

// Package toolcheck inspects the external key generators.
package toolcheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/Work-Fort/crypto-install/pkg/runner"
)

var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// keyboxVersion is the first GnuPG release that keeps secret keys in
// private-keys-v1.d instead of secring.gpg.
var keyboxVersion = version.Must(version.NewVersion("2.1.0"))

// Tool is the result of inspecting one program.
type Tool struct {
	Program string
	// Path is the resolved executable, empty when not found.
	Path    string
	Version *version.Version
	// Banner is the first line the program printed.
	Banner string
}

// Found reports whether the program was located.
func (t *Tool) Found() bool {
	return t.Path != ""
}

// Inspect locates program and runs it with args to read its version banner.
// A missing program is not an error; the returned Tool has an empty Path.
func Inspect(ctx context.Context, r runner.Runner, program string, args ...string) (*Tool, error) {
	tool := &Tool{Program: program}

	path, err := exec.LookPath(program)
	if err != nil {
		return tool, nil
	}
	tool.Path = path

	stream, err := r.Start(ctx, runner.Command{
		Program: path,
		Args:    args,
		Env:     map[string]string{"PATH": os.Getenv("PATH"), "LC_ALL": "C"},
	})
	if err != nil {
		return tool, fmt.Errorf("failed to run %s: %w", program, err)
	}

	var lines []string
	for line := range stream.Lines() {
		lines = append(lines, line)
	}
	code, err := stream.Wait()
	if err != nil {
		return tool, fmt.Errorf("failed to run %s: %w", program, err)
	}
	if code != 0 {
		return tool, fmt.Errorf("%s exited with status %d", program, code)
	}

	if len(lines) > 0 {
		tool.Banner = strings.TrimSpace(lines[0])
	}
	v, err := ParseVersion(tool.Banner)
	if err != nil {
		return tool, err
	}
	tool.Version = v
	return tool, nil
}

// ParseVersion extracts the first dotted version number from a banner such as
// "gpg (GnuPG) 2.4.4" or "OpenSSH_9.6p1 Ubuntu-3ubuntu13, OpenSSL 3.0.13".
func ParseVersion(banner string) (*version.Version, error) {
	m := versionPattern.FindString(banner)
	if m == "" {
		return nil, fmt.Errorf("no version number in %q", banner)
	}
	v, err := version.NewVersion(m)
	if err != nil {
		return nil, fmt.Errorf("failed to parse version %q: %w", m, err)
	}
	return v, nil
}

// GnuPG inspects the gpg program.
func GnuPG(ctx context.Context, r runner.Runner, program string) (*Tool, error) {
	if program == "" {
		program = "gpg"
	}
	return Inspect(ctx, r, program, "--version")
}

// OpenSSH locates the key generator program and reads the OpenSSH version from
// the ssh client next to it, or from the ssh in PATH. ssh-keygen has no
// version flag.
func OpenSSH(ctx context.Context, r runner.Runner, program string) (*Tool, error) {
	if program == "" {
		program = "ssh-keygen"
	}
	tool := &Tool{Program: program}

	path, err := exec.LookPath(program)
	if err != nil {
		return tool, nil
	}
	tool.Path = path

	client := filepath.Join(filepath.Dir(path), "ssh")
	if _, err := exec.LookPath(client); err != nil {
		client = "ssh"
	}
	ssh, err := Inspect(ctx, r, client, "-V")
	if err != nil {
		return tool, err
	}
	if !ssh.Found() {
		return tool, fmt.Errorf("no ssh client to read the version of %s", program)
	}
	tool.Version = ssh.Version
	tool.Banner = ssh.Banner
	return tool, nil
}

// UsesKeybox reports whether a GnuPG version stores secret keys under
// private-keys-v1.d, so secring.gpg is no longer written.
func UsesKeybox(v *version.Version) bool {
	return v != nil && v.GreaterThanOrEqual(keyboxVersion)
}
