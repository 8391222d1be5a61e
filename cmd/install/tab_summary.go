// SPDX-License-Identifier: Apache-2.0
package install

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Work-Fort/crypto-install/pkg/config"
	"github.com/Work-Fort/crypto-install/pkg/provision"
	"github.com/Work-Fort/crypto-install/pkg/ui"
)

// SummaryTab lists every result once the provisioner is done
type SummaryTab struct {
	results []provision.Result
	details map[provision.Kind]string
	err     error
}

// NewSummaryTab creates the summary for a finished run
func NewSummaryTab(msg RunDoneMsg) *SummaryTab {
	return &SummaryTab{
		results: msg.Results,
		details: msg.Details,
		err:     msg.Err,
	}
}

// Failed reports whether any credential failed
func (t *SummaryTab) Failed() bool {
	return t.err != nil
}

// View renders the results with key details
func (t *SummaryTab) View() string {
	theme := config.CurrentTheme

	title := "Credentials Ready"
	if t.err != nil {
		title = "Provisioning Incomplete"
	}

	parts := []string{
		"",
		lipgloss.NewStyle().Bold(true).Foreground(theme.GetPrimaryColor()).Render(title),
		"",
	}

	for _, res := range t.results {
		parts = append(parts, ui.OutcomeLine(res))
		if d, ok := t.details[res.Kind]; ok {
			parts = append(parts, theme.SubtleStyle().Render("    "+d))
		}
	}

	if len(t.results) == 0 {
		parts = append(parts, theme.SubtleStyle().Render("No credential was attempted."))
	}

	parts = append(parts,
		"",
		ui.SummaryKeyBindings().RenderInline(theme.SubtleStyle()),
		"",
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
