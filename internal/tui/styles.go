// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for Tortoise.
// This file defines the shared lipgloss styles used across the tabs.
package tui

import "github.com/charmbracelet/lipgloss"

// colorPalette defines the core colors used in the TUI.
const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // Teal/cyan
	colorSpecial   = lipgloss.Color("208") // Orange
	colorError     = lipgloss.Color("196") // Bright red
	colorSuccess   = lipgloss.Color("40")  // Green
	colorPending   = lipgloss.Color("220") // Yellow
	colorSleeping  = lipgloss.Color("245") // Gray
	colorWhite     = lipgloss.Color("231")
)

var (
	docStyle = lipgloss.NewStyle().Margin(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	// Channel state groups
	activeStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	pendingStyle  = lipgloss.NewStyle().Foreground(colorPending)
	sleepingStyle = lipgloss.NewStyle().Foreground(colorSleeping)

	specialStyle = lipgloss.NewStyle().Foreground(colorSpecial)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	// Tab bar
	tabStyle       = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle = tabStyle.
			Foreground(colorHighlight).
			Bold(true).
			Underline(true)
	hotkeyStyle = lipgloss.NewStyle().Foreground(colorSpecial).Bold(true)

	// Bordered panels: stats column, cards, sparklines
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle)

	// Error popup
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(colorError).
			Padding(0, 1)

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(colorSuccess)
)
