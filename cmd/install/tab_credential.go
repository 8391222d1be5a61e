// SPDX-License-Identifier: Apache-2.0
package install

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Work-Fort/crypto-install/pkg/config"
	"github.com/Work-Fort/crypto-install/pkg/provision"
	"github.com/Work-Fort/crypto-install/pkg/ui"
)

// maxOutputLines is how much generator output a tab keeps on screen.
const maxOutputLines = 8

// CredentialTab shows one credential: its notices, the input form while
// the provisioner waits for values, and generator output.
type CredentialTab struct {
	kind          provision.Kind
	width, height int

	notices []string
	output  []string

	form  *ui.FieldForm
	reply chan<- CollectReply

	result *provision.Result
}

// NewCredentialTab creates the tab for kind
func NewCredentialTab(kind provision.Kind) *CredentialTab {
	return &CredentialTab{kind: kind}
}

// StartCollect shows a form for the request.
func (t *CredentialTab) StartCollect(req CollectRequestMsg) tea.Cmd {
	t.Cancel(context.Canceled)

	t.form = ui.NewFieldForm(req.Fields)
	t.reply = req.Reply
	if t.width > 0 {
		t.form.Form().WithWidth(t.width)
	}
	log.Debugf("tab.%s: collecting %d fields", t.kind.Slug(), len(req.Fields))
	return t.form.Form().Init()
}

// Collecting reports whether the tab is waiting for input.
func (t *CredentialTab) Collecting() bool {
	return t.form != nil
}

// Cancel answers a pending request with err.
func (t *CredentialTab) Cancel(err error) {
	if t.reply != nil {
		t.reply <- CollectReply{Err: err}
	}
	t.reply = nil
	t.form = nil
}

// AddNotice appends an informational message.
func (t *CredentialTab) AddNotice(text string) {
	t.notices = append(t.notices, text)
}

// AddOutput appends a generator output line, keeping the last few.
func (t *CredentialTab) AddOutput(line string) {
	t.output = append(t.output, line)
	if len(t.output) > maxOutputLines {
		t.output = t.output[len(t.output)-maxOutputLines:]
	}
}

// Finish records the outcome.
func (t *CredentialTab) Finish(res provision.Result) {
	t.Cancel(context.Canceled)
	t.result = &res
}

// Update forwards input to the form and answers the request once the form
// is submitted.
func (t *CredentialTab) Update(msg tea.Msg) (*CredentialTab, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		t.width = size.Width
		t.height = size.Height
		if t.form != nil {
			t.form.Form().WithWidth(size.Width)
		}
	}

	if t.form == nil {
		return t, nil
	}

	model, cmd := t.form.Form().Update(msg)
	t.form.SetForm(model.(*huh.Form))

	switch t.form.Form().State {
	case huh.StateCompleted:
		log.Debugf("tab.%s: form submitted", t.kind.Slug())
		values := t.form.Values()
		t.reply <- CollectReply{Values: values}
		t.reply = nil
		t.form = nil
		return t, nil
	case huh.StateAborted:
		log.Debugf("tab.%s: form aborted", t.kind.Slug())
		t.Cancel(context.Canceled)
		return t, nil
	}

	return t, cmd
}

// View renders notices, then the form or the generator output.
func (t *CredentialTab) View() string {
	theme := config.CurrentTheme

	parts := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.GetPrimaryColor()).Render(t.kind.String()),
		"",
	}
	for _, n := range t.notices {
		parts = append(parts, theme.InfoMessage(n))
	}

	if t.form != nil {
		parts = append(parts, "", t.form.Form().View())
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	if len(t.output) > 0 {
		parts = append(parts, "")
		for _, line := range t.output {
			parts = append(parts, theme.SubtleStyle().Render(line))
		}
	}

	if t.result != nil {
		parts = append(parts, "", ui.OutcomeLine(*t.result))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
