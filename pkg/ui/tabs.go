// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/Work-Fort/crypto-install/pkg/config"
)

// TabState represents the state of a tab
type TabState int

const (
	TabPending TabState = iota
	TabActive
	TabComplete
	TabError
)

// Tab is one credential (or the summary) in the wizard header.
type Tab struct {
	Title string
	State TabState
	// Busy shows the spinner while a generator runs. An active tab that is
	// waiting for input shows a solid dot instead.
	Busy    bool
	Spinner spinner.Model
}

// TabsConfig holds configuration for tab rendering
type TabsConfig struct {
	ActiveIndex int
	Width       int // Total width available for all tabs
}

// RenderTabs renders the tab row and extends its bottom line to cfg.Width.
func RenderTabs(tabs []Tab, cfg TabsConfig) string {
	theme := config.CurrentTheme

	// Tab border style with bottom connection
	inactiveTabBorder := tabBorderWithBottom("┴", "─", "┴")

	// Base tab styles
	// Pending tabs (not yet started) - purple/muted color
	pendingTabStyle := lipgloss.NewStyle().
		Border(inactiveTabBorder, true).
		BorderForeground(theme.GetMutedColor()).
		Padding(0, 1)

	// Active tab - cyan/secondary color
	activeTabStyle := lipgloss.NewStyle().
		Border(inactiveTabBorder, true).
		BorderForeground(theme.GetSecondaryColor()).
		Padding(0, 1)

	// Complete tabs - green/success color with checkmark
	completeTabStyle := lipgloss.NewStyle().
		Border(inactiveTabBorder, true).
		BorderForeground(theme.GetSuccessColor()).
		Padding(0, 1)

	// Error tabs - red/error color
	errorTabStyle := lipgloss.NewStyle().
		Border(inactiveTabBorder, true).
		BorderForeground(theme.GetErrorColor()).
		Padding(0, 1)

	var renderedTabs []string

	for i, tab := range tabs {
		isFirst := i == 0
		isLast := i == len(tabs)-1
		isActive := i == cfg.ActiveIndex

		// Choose style based on state
		var style lipgloss.Style
		var titleText string

		switch tab.State {
		case TabActive:
			style = activeTabStyle
			if tab.Busy {
				titleText = tab.Spinner.View() + " " + tab.Title
			} else {
				titleText = theme.ActiveIndicator() + " " + tab.Title
			}
		case TabComplete:
			style = completeTabStyle
			titleText = theme.CompleteIndicator() + " " + tab.Title
		case TabError:
			style = errorTabStyle
			titleText = theme.ErrorIndicator() + " " + tab.Title
		default: // TabPending
			style = pendingTabStyle
			titleText = theme.PendingIndicator() + " " + tab.Title
		}

		// Adjust borders based on viewing state and position
		border, _, _, _, _ := style.GetBorder()

		if isActive {
			// Tab being viewed - remove bottom border
			border.BottomLeft = "┘"
			border.Bottom = " "
			border.BottomRight = "└"

			// Adjust first tab's left border when viewing
			if isFirst {
				border.BottomLeft = "│"
			}
		} else {
			// Tab not being viewed - has bottom border
			if isFirst {
				border.BottomLeft = "├"
			}
		}

		// Last tab connects to the extension line
		if isLast && !isActive {
			border.BottomRight = "┴"
		}

		style = style.Border(border)

		renderedTabs = append(renderedTabs, style.Render(titleText))
	}

	tabsRow := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)

	// Measure tabs width and add horizontal line to fill remaining width
	tabsWidth := lipgloss.Width(tabsRow)

	if cfg.Width > tabsWidth {
		remainingWidth := cfg.Width - tabsWidth

		// Three rows: blank, blank, then a rule ending in ┐ above the
		// content pane's right border.
		topLine := strings.Repeat(" ", remainingWidth)
		middleLine := strings.Repeat(" ", remainingWidth)

		bottomLineContent := strings.Repeat("─", remainingWidth-1) + "┐"
		bottomLine := lipgloss.NewStyle().
			Foreground(theme.GetPrimaryColor()).
			Render(bottomLineContent)

		extension := lipgloss.JoinVertical(lipgloss.Left, topLine, middleLine, bottomLine)

		return lipgloss.JoinHorizontal(lipgloss.Top, tabsRow, extension)
	}

	return tabsRow
}

// RenderTabContent renders the content pane for the active tab
func RenderTabContent(content string, width, height int) string {
	theme := config.CurrentTheme

	windowStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.GetPrimaryColor()).
		BorderTop(false). // No top border - connects to tabs
		Width(width).
		Height(height).
		Padding(1, 2)

	return windowStyle.Render(content)
}

// tabBorderWithBottom creates a custom border with specified bottom characters
func tabBorderWithBottom(left, middle, right string) lipgloss.Border {
	border := lipgloss.RoundedBorder()
	border.BottomLeft = left
	border.Bottom = middle
	border.BottomRight = right
	return border
}
