// SPDX-License-Identifier: Apache-2.0

// Package runner starts external programs with an explicit environment and
// streams their combined output line by line.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"sort"

	"github.com/charmbracelet/log"
)

// maxLineSize bounds a single output line; longer lines end the stream with an error.
const maxLineSize = 1024 * 1024

// Command describes one program invocation.
type Command struct {
	Program string
	Args    []string
	// Env is the complete environment of the child. Nothing is inherited.
	Env map[string]string
	Dir string
}

// Environ renders Env as sorted KEY=VALUE pairs. The result is never nil so
// that exec does not fall back to the parent environment.
func (c Command) Environ() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+c.Env[k])
	}
	return env
}

// Stream is a started process.
type Stream interface {
	// Lines yields combined stdout/stderr lines as the child produces them.
	// It can be ranged over once.
	Lines() iter.Seq[string]
	// Wait blocks until the child exits. A non-zero exit status is reported
	// through the returned code, not as an error.
	Wait() (int, error)
}

// Runner starts commands.
type Runner interface {
	Start(ctx context.Context, c Command) (Stream, error)
}

// Exec runs commands as real child processes.
type Exec struct{}

// Start launches the command with stdin closed and stdout/stderr sharing one
// pipe. Cancelling ctx kills the child's whole process group.
func (Exec) Start(ctx context.Context, c Command) (Stream, error) {
	if c.Program == "" {
		return nil, errors.New("no program given")
	}

	cmd := exec.Command(c.Program, c.Args...)
	cmd.Env = c.Environ()
	cmd.Dir = c.Dir
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create output pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	log.Debugf("Starting %s %v", c.Program, redact(c.Args))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", c.Program, err)
	}
	stdin.Close()

	p := &process{
		ctx:  ctx,
		cmd:  cmd,
		out:  out,
		done: make(chan struct{}),
	}

	go func() {
		select {
		case <-ctx.Done():
			killProcessGroup(cmd)
		case <-p.done:
		}
	}()

	return p, nil
}

type process struct {
	ctx      context.Context
	cmd      *exec.Cmd
	out      io.ReadCloser
	done     chan struct{}
	consumed bool
	scanErr  error
}

func (p *process) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if p.consumed {
			return
		}
		p.consumed = true

		scanner := bufio.NewScanner(p.out)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
		p.scanErr = scanner.Err()
	}
}

func (p *process) Wait() (int, error) {
	// Drain whatever the caller did not read so the child never blocks on a full pipe.
	io.Copy(io.Discard, p.out)

	err := p.cmd.Wait()
	close(p.done)

	if err != nil && p.ctx.Err() != nil {
		return -1, p.ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	if p.scanErr != nil {
		log.Warnf("Output of %s truncated: %v", p.cmd.Path, p.scanErr)
	}
	return 0, nil
}

// redact hides the value following -N, which carries the ssh-keygen passphrase.
func redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "-N" {
			out[i+1] = "******"
		}
	}
	return out
}
