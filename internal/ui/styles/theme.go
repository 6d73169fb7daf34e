// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the jobdeck TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application.
// It detects the terminal's color capability and degrades gracefully.
type Theme struct {
	ColorProfile termenv.Profile
	HasTrueColor bool

	// ==========================================================================
	// SIDEBAR (SESSION LIST)
	// ==========================================================================

	Sidebar        lipgloss.Style
	SidebarTitle   lipgloss.Style
	SessionItem    lipgloss.Style
	SessionActive  lipgloss.Style
	SessionEmpty   lipgloss.Style

	// ==========================================================================
	// CONVERSATION PANE
	// ==========================================================================

	Conversation    lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	PartialBubble   lipgloss.Style
	Timestamp       lipgloss.Style
	Placeholder     lipgloss.Style

	// ==========================================================================
	// CHROME
	// ==========================================================================

	ErrorBanner    lipgloss.Style
	InputContainer lipgloss.Style
	StatusBar      lipgloss.Style
	StatusHint     lipgloss.Style
}

// NewTheme builds the theme for the current terminal.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()

	accent := lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	muted := lipgloss.AdaptiveColor{Light: "#8A8A99", Dark: "#6C6C7A"}
	danger := lipgloss.AdaptiveColor{Light: "#C53030", Dark: "#F56565"}
	surface := lipgloss.AdaptiveColor{Light: "#EDEDF2", Dark: "#26262E"}

	return &Theme{
		ColorProfile: profile,
		HasTrueColor: profile == termenv.TrueColor,

		Sidebar: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		SidebarTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),
		SessionItem: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#3B3B45", Dark: "#C9C9D4"}),
		SessionActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}).
			Background(accent),
		SessionEmpty: lipgloss.NewStyle().
			Italic(true).
			Foreground(muted),

		Conversation: lipgloss.NewStyle().
			Padding(0, 1),
		UserBubble: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}).
			Background(accent).
			Padding(0, 1),
		AssistantBubble: lipgloss.NewStyle().
			Background(surface).
			Padding(0, 1),
		PartialBubble: lipgloss.NewStyle().
			Background(surface).
			Faint(true).
			Padding(0, 1),
		Timestamp: lipgloss.NewStyle().
			Faint(true).
			Foreground(muted),
		Placeholder: lipgloss.NewStyle().
			Italic(true).
			Foreground(muted),

		ErrorBanner: lipgloss.NewStyle().
			Foreground(danger).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(danger).
			Padding(0, 1),
		InputContainer: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Faint(true),
		StatusHint: lipgloss.NewStyle().
			Foreground(muted),
	}
}
