// SPDX-License-Identifier: Apache-2.0
package install

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Work-Fort/crypto-install/pkg/provision"
)

// formAdapter forwards provisioner calls to the wizard program.
type formAdapter struct {
	send func(tea.Msg)
}

func newFormAdapter(send func(tea.Msg)) *formAdapter {
	return &formAdapter{send: send}
}

// Collect blocks until the wizard answers or ctx is cancelled.
func (a *formAdapter) Collect(ctx context.Context, fields []provision.Field) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply := make(chan CollectReply, 1)
	a.send(CollectRequestMsg{Fields: fields, Reply: reply})

	select {
	case r := <-reply:
		return r.Values, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *formAdapter) Notice(msg string) {
	a.send(NoticeMsg{Text: msg})
}

func (a *formAdapter) Progress(line string) {
	a.send(ProgressMsg{Line: line})
}

func (a *formAdapter) StageStarted(spec provision.Spec) {
	a.send(StageStartedMsg{Spec: spec})
}

func (a *formAdapter) StageFinished(res provision.Result) {
	a.send(StageFinishedMsg{Result: res})
}
