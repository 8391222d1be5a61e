// SPDX-License-Identifier: Apache-2.0
package install

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Work-Fort/crypto-install/pkg/config"
	"github.com/Work-Fort/crypto-install/pkg/provision"
	"github.com/Work-Fort/crypto-install/pkg/ui"
)

// Rows taken by everything but the tab content.
const (
	headerLines = 1
	tabsLines   = 3
	footerLines = 1
	borderLines = 1

	minWidth  = 50
	minHeight = 14
)

// WizardModel shows one tab per credential plus a summary. It does not
// drive the provisioner; it reacts to the messages the form adapter sends.
type WizardModel struct {
	width  int
	height int

	tabs      []ui.Tab
	activeTab int

	credentialTabs []*CredentialTab
	summaryTab     *SummaryTab

	results   []provision.Result
	done      bool
	cancelled bool
	cancel    context.CancelFunc
}

// NewWizardModel creates the wizard for specs. cancel stops the provisioner.
func NewWizardModel(specs []provision.Spec, cancel context.CancelFunc) WizardModel {
	m := WizardModel{cancel: cancel}

	for _, spec := range specs {
		m.tabs = append(m.tabs, ui.Tab{Title: tabTitle(spec.Kind), State: ui.TabPending})
		m.credentialTabs = append(m.credentialTabs, NewCredentialTab(spec.Kind))
	}
	m.tabs = append(m.tabs, ui.Tab{Title: "Summary", State: ui.TabPending})

	for i := range m.tabs {
		s := spinner.New()
		s.Spinner = spinner.Dot
		s.Style = lipgloss.NewStyle().Foreground(config.CurrentTheme.GetSecondaryColor())
		m.tabs[i].Spinner = s
	}

	return m
}

func tabTitle(kind provision.Kind) string {
	switch kind {
	case provision.GnuPGIdentity:
		return "GnuPG"
	case provision.OpenSSHKeyPair:
		return "OpenSSH"
	default:
		return kind.String()
	}
}

// Init implements tea.Model
func (m WizardModel) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.tabs))
	for _, t := range m.tabs {
		cmds = append(cmds, t.Spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	log.Debugf("wizard.Update: msg=%T activeTab=%d", msg, m.activeTab)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		var cmds []tea.Cmd
		inner := tea.WindowSizeMsg{Width: m.contentWidth(), Height: m.contentHeight()}
		for i, t := range m.credentialTabs {
			var cmd tea.Cmd
			m.credentialTabs[i], cmd = t.Update(inner)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quit(true)
			return m, tea.Quit
		}
		if m.done && ui.SummaryKeyBindings().Contains(msg.String()) != nil {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmds []tea.Cmd
		for i := range m.tabs {
			var cmd tea.Cmd
			m.tabs[i].Spinner, cmd = m.tabs[i].Spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case StageStartedMsg:
		if i := m.tabIndex(msg.Spec.Kind); i >= 0 {
			m.activeTab = i
			m.tabs[i].State = ui.TabActive
			m.tabs[i].Busy = true
		}
		return m, nil

	case CollectRequestMsg:
		tab := m.credentialTab(m.activeTab)
		if tab == nil {
			msg.Reply <- CollectReply{Err: context.Canceled}
			return m, nil
		}
		m.tabs[m.activeTab].Busy = false
		return m, tab.StartCollect(msg)

	case NoticeMsg:
		if tab := m.credentialTab(m.activeTab); tab != nil {
			tab.AddNotice(msg.Text)
		}
		return m, nil

	case ProgressMsg:
		if tab := m.credentialTab(m.activeTab); tab != nil {
			tab.AddOutput(msg.Line)
		}
		return m, nil

	case StageFinishedMsg:
		m.results = append(m.results, msg.Result)
		if i := m.tabIndex(msg.Result.Kind); i >= 0 {
			m.credentialTabs[i].Finish(msg.Result)
			m.tabs[i].Busy = false
			if msg.Result.Outcome == provision.OutcomeFailed {
				m.tabs[i].State = ui.TabError
			} else {
				m.tabs[i].State = ui.TabComplete
			}
		}
		return m, nil

	case RunDoneMsg:
		m.done = true
		m.summaryTab = NewSummaryTab(msg)
		m.activeTab = len(m.tabs) - 1
		if m.summaryTab.Failed() {
			m.tabs[m.activeTab].State = ui.TabError
		} else {
			m.tabs[m.activeTab].State = ui.TabComplete
		}
		return m, nil
	}

	// Delegate input to the active credential tab
	if tab := m.credentialTab(m.activeTab); tab != nil {
		wasCollecting := tab.Collecting()
		var cmd tea.Cmd
		m.credentialTabs[m.activeTab], cmd = tab.Update(msg)
		if wasCollecting && !tab.Collecting() {
			m.tabs[m.activeTab].Busy = true
		}
		return m, cmd
	}

	return m, nil
}

// quit cancels the provisioner and releases a pending form request.
func (m *WizardModel) quit(cancelled bool) {
	m.cancelled = cancelled && !m.done
	for _, t := range m.credentialTabs {
		t.Cancel(context.Canceled)
	}
	if m.cancel != nil {
		m.cancel()
	}
}

// View implements tea.Model
func (m WizardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	theme := config.CurrentTheme

	if m.width < minWidth || m.height < minHeight {
		msg := fmt.Sprintf("Terminal too small (%dx%d).\nResize to at least %dx%d.", m.width, m.height, minWidth, minHeight)
		return ui.RenderCenteredModal(msg, m.width, m.height, theme.GetWarningColor(), max(min(m.width-6, 40), 10))
	}

	header := theme.RenderHeader(m.width, "SETUP", m.tabs[m.activeTab].Title)
	tabsView := ui.RenderTabs(m.tabs, ui.TabsConfig{
		ActiveIndex: m.activeTab,
		Width:       m.width,
	})

	var activeContent string
	switch {
	case m.summaryTab != nil && m.activeTab == len(m.tabs)-1:
		activeContent = m.summaryTab.View()
	case m.credentialTab(m.activeTab) != nil:
		activeContent = m.credentialTab(m.activeTab).View()
	}

	content := ui.RenderTabContent(activeContent, m.contentWidth(), m.contentHeight())

	keys := ui.RunningKeyBindings()
	if m.done {
		keys = ui.SummaryKeyBindings()
	} else if tab := m.credentialTab(m.activeTab); tab != nil && tab.Collecting() {
		keys = ui.FormKeyBindings()
	}
	footer := theme.RenderFooter(m.width, keys.Render(lipgloss.NewStyle()))

	return ui.FillTerminal(
		lipgloss.JoinVertical(lipgloss.Left, header, tabsView, content, footer),
		m.width, m.height,
	)
}

func (m WizardModel) contentWidth() int {
	return max(m.width-2, 10)
}

func (m WizardModel) contentHeight() int {
	return max(m.height-headerLines-tabsLines-footerLines-borderLines, 5)
}

// credentialTab returns the tab at i, or nil for the summary.
func (m WizardModel) credentialTab(i int) *CredentialTab {
	if i < 0 || i >= len(m.credentialTabs) {
		return nil
	}
	return m.credentialTabs[i]
}

func (m WizardModel) tabIndex(kind provision.Kind) int {
	for i, t := range m.credentialTabs {
		if t.kind == kind {
			return i
		}
	}
	return -1
}
