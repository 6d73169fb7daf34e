// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jhalloran/jobdeck-tui/internal/model"
	"github.com/jhalloran/jobdeck-tui/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	minSidebarWidth = 18
	chromeHeight    = 4 // input row + status bar + borders
)

// layout recomputes component sizes from the terminal dimensions.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	sidebar := m.uiCfg.SidebarWidth
	if sidebar < minSidebarWidth {
		sidebar = minSidebarWidth
	}
	if sidebar > m.width/3 {
		sidebar = m.width / 3
	}

	paneWidth := m.width - sidebar - 2
	paneHeight := m.height - chromeHeight
	if paneHeight < 1 {
		paneHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(paneWidth, paneHeight)
	} else {
		m.viewport.Width = paneWidth
		m.viewport.Height = paneHeight
	}
	m.input.Width = paneWidth - 4
	m.syncViewport()
}

// syncViewport re-renders the conversation into the viewport and keeps the
// latest text in view.
func (m *Model) syncViewport() {
	if m.viewport.Width == 0 {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the sidebar, conversation pane, input row, and status bar.
func (m Model) View() string {
	if !m.ready {
		return "starting jobdeck..."
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderSidebar(),
		m.viewport.View(),
	)

	rows := []string{main}
	if m.errorText != "" {
		rows = append(rows, m.theme.ErrorBanner.Width(m.width).Render(m.errorText))
	}
	rows = append(rows,
		m.theme.InputContainer.Width(m.width).Render(m.input.View()),
		m.renderStatus(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// ===== SIDEBAR =====

func (m Model) renderSidebar() string {
	width := m.uiCfg.SidebarWidth
	if width < minSidebarWidth {
		width = minSidebarWidth
	}
	if width > m.width/3 {
		width = m.width / 3
	}
	inner := width - 2

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render(util.PadWidth("Chats", inner)))
	b.WriteString("\n")

	if len(m.sessions) == 0 {
		empty := "no chats yet"
		if m.sessionsLoading {
			empty = m.spinner.View() + " loading"
		}
		b.WriteString(m.theme.SessionEmpty.Render(util.PadWidth(empty, inner)))
	}

	for _, s := range m.sessions {
		title := util.TruncateWidth(s.DisplayTitle(), inner)
		line := util.PadWidth(title, inner)
		if s.ID == m.activeID {
			b.WriteString(m.theme.SessionActive.Render(line))
		} else {
			b.WriteString(m.theme.SessionItem.Render(line))
		}
		b.WriteString("\n")
	}

	return m.theme.Sidebar.
		Width(width).
		Height(m.viewport.Height).
		Render(b.String())
}

// ===== CONVERSATION =====

func (m Model) renderConversation() string {
	if m.conv == nil {
		return m.theme.Placeholder.Render("Select a chat or press C-t to start one.")
	}
	if m.messagesLoading {
		return m.theme.Placeholder.Render(m.spinner.View() + " loading history...")
	}

	var b strings.Builder
	for _, msg := range m.conv.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}

	switch m.state {
	case StateSending:
		b.WriteString(m.theme.PartialBubble.Render(m.spinner.View() + " thinking..."))
	case StateStreaming:
		b.WriteString(m.theme.PartialBubble.Width(m.bubbleWidth()).Render(m.conv.Partial))
	}

	if b.Len() == 0 {
		return m.theme.Placeholder.Render("No messages yet. Say hello.")
	}
	return b.String()
}

func (m Model) renderMessage(msg model.Message) string {
	bubble := m.theme.AssistantBubble
	label := msg.Role.DisplayName()
	if msg.Role == model.RoleUser {
		bubble = m.theme.UserBubble
	}
	header := fmt.Sprintf("%s %s", label, msg.CreatedAt.Local().Format("15:04"))
	return m.theme.Timestamp.Render(header) + "\n" +
		bubble.Width(m.bubbleWidth()).Render(msg.Content)
}

func (m Model) bubbleWidth() int {
	w := m.viewport.Width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// ===== STATUS BAR =====

func (m Model) renderStatus() string {
	var hint string
	switch m.state {
	case StateSending, StateStreaming:
		hint = "Esc stop · C-c quit"
	default:
		hint = "Enter send · C-t new chat · C-p/C-n switch · C-c quit"
	}
	return m.theme.StatusBar.Width(m.width).Render(m.theme.StatusHint.Render(hint))
}
