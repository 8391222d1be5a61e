// SPDX-License-Identifier: Apache-2.0

// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"iter"
	"sync"

	"github.com/Work-Fort/crypto-install/pkg/runner"
)

// Response is what a scripted invocation produces.
type Response struct {
	Lines    []string
	ExitCode int
	StartErr error
	// OnStart runs when the command starts, before any output is produced.
	OnStart func(c runner.Command)
}

// Recorder answers every Start with the next queued Response (or the
// Default response once the queue is empty) and records the commands it saw.
type Recorder struct {
	mu        sync.Mutex
	Responses []Response
	Default   Response
	Calls     []runner.Command
}

// Start implements runner.Runner.
func (r *Recorder) Start(_ context.Context, c runner.Command) (runner.Stream, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, c)
	resp := r.Default
	if len(r.Responses) > 0 {
		resp = r.Responses[0]
		r.Responses = r.Responses[1:]
	}
	r.mu.Unlock()

	if resp.OnStart != nil {
		resp.OnStart(c)
	}
	if resp.StartErr != nil {
		return nil, resp.StartErr
	}
	return &stream{resp: resp}, nil
}

// CallCount reports how many commands were started.
func (r *Recorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Calls)
}

type stream struct {
	resp Response
}

func (s *stream) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range s.resp.Lines {
			if !yield(l) {
				return
			}
		}
	}
}

func (s *stream) Wait() (int, error) {
	return s.resp.ExitCode, nil
}
