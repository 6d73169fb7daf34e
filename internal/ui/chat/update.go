// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhalloran/jobdeck-tui/internal/api"
	"github.com/jhalloran/jobdeck-tui/internal/model"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update is the single place all chat state changes happen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)

	case SessionCreatedMsg:
		return m.handleSessionCreated(msg)

	case MessagesLoadedMsg:
		return m.handleMessagesLoaded(msg)

	case StreamEventMsg:
		return m.handleStreamEvent(msg)

	case ConfigReloadedMsg:
		m.uiCfg = msg.Config.UI
		m.requestTimeout = msg.Config.RequestTimeout()
		m.layout()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ===== KEY HANDLING =====

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelStream()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.busy() {
			m.cancelStream()
			m.syncViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NewSession):
		m.sessionsLoading = true
		return m, createSessionCmd(m.backend, m.requestTimeout)

	case key.Matches(msg, m.keys.PrevSession):
		return m.moveSelection(-1)

	case key.Matches(msg, m.keys.NextSession):
		return m.moveSelection(1)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the composed message. It is a strict no-op when the input is
// blank, no session is selected, or a reply is already in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.input.Value())
	if content == "" || m.activeID == "" || m.state != StateIdle {
		return m, nil
	}

	m.input.Reset()
	m.errorText = ""
	m.conv.AppendUser(content)
	m.state = StateSending

	m.streamSeq++
	seq := m.streamSeq
	ch := make(chan StreamEventMsg)
	m.streamCh = ch

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	m.syncViewport()
	slog.Debug("sending message", "session", m.activeID, "chars", len(content))
	return m, tea.Batch(
		runStreamCmd(m.backend, ctx, seq, m.activeID, content, ch),
		awaitStreamCmd(ch),
		m.spinner.Tick,
	)
}

// moveSelection changes the active session by sidebar position.
func (m Model) moveSelection(delta int) (tea.Model, tea.Cmd) {
	if len(m.sessions) == 0 {
		return m, nil
	}
	idx := m.activeIndex()
	if idx < 0 {
		idx = 0
	} else {
		idx += delta
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.sessions) {
		idx = len(m.sessions) - 1
	}
	return m.selectSession(m.sessions[idx].ID)
}

func (m Model) activeIndex() int {
	for i, s := range m.sessions {
		if s.ID == m.activeID {
			return i
		}
	}
	return -1
}

// ===== SESSION SELECTION =====

// selectSession switches the active session. Re-selecting the current
// session does nothing: no reload, no reset. Any in-flight stream belongs
// to the previous session and is cancelled and discarded.
func (m Model) selectSession(id string) (tea.Model, tea.Cmd) {
	if id == m.activeID {
		return m, nil
	}

	m.cancelStream()
	m.activeID = id
	m.conv = model.NewConversation(id)
	m.messagesLoading = true
	m.errorText = ""
	m.syncViewport()
	return m, tea.Batch(loadMessagesCmd(m.backend, id, m.requestTimeout), m.spinner.Tick)
}

// cancelStream tears down the in-flight stream, if any. The sequence bump
// makes every event the old stream already queued stale.
func (m *Model) cancelStream() {
	if m.state == StateIdle {
		return
	}
	m.cancelMgr.cancel()
	m.streamSeq++
	m.streamCh = nil
	if m.conv != nil {
		m.conv.DiscardStream()
	}
	m.state = StateIdle
}

// ===== BACKEND RESULTS =====

func (m Model) handleSessionsLoaded(msg SessionsLoadedMsg) (tea.Model, tea.Cmd) {
	m.sessionsLoading = false
	if msg.Err != nil {
		slog.Warn("session list failed", "error", msg.Err)
		m.errorText = errorMessage(msg.Err)
		return m, nil
	}
	// The backend returns sessions most-recent-first; keep its order.
	m.sessions = msg.Sessions

	// First load: open the most recent chat.
	if m.activeID == "" && len(m.sessions) > 0 {
		return m.selectSession(m.sessions[0].ID)
	}
	return m, nil
}

func (m Model) handleSessionCreated(msg SessionCreatedMsg) (tea.Model, tea.Cmd) {
	m.sessionsLoading = false
	if msg.Err != nil {
		slog.Warn("session create failed", "error", msg.Err)
		m.errorText = errorMessage(msg.Err)
		return m, nil
	}

	m.sessions = append([]model.Session{msg.Session}, m.sessions...)

	// A fresh session has no history; select it without a fetch.
	m.cancelStream()
	m.activeID = msg.Session.ID
	m.conv = model.NewConversation(msg.Session.ID)
	m.messagesLoading = false
	m.errorText = ""
	m.syncViewport()
	return m, nil
}

func (m Model) handleMessagesLoaded(msg MessagesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.SessionID != m.activeID {
		// Late response for a session the user already left.
		slog.Debug("dropping stale history", "session", msg.SessionID, "active", m.activeID)
		return m, nil
	}
	m.messagesLoading = false
	if msg.Err != nil {
		slog.Warn("history load failed", "session", msg.SessionID, "error", msg.Err)
		m.errorText = errorMessage(msg.Err)
		return m, nil
	}
	m.conv.Replace(msg.Messages)
	m.syncViewport()
	return m, nil
}

// ===== STREAM EVENTS =====

func (m Model) handleStreamEvent(msg StreamEventMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.streamSeq || m.state == StateIdle {
		return m, nil
	}

	if !msg.Final {
		m.state = StateStreaming
		m.conv.AppendFragment(msg.Fragment)
		m.syncViewport()
		return m, awaitStreamCmd(m.streamCh)
	}

	m.cancelMgr.cancel()
	m.streamCh = nil
	m.state = StateIdle

	switch {
	case msg.Err == nil:
		m.conv.FinalizeStream()
		m.syncViewport()
		// The backend bumps session activity (and may derive a title), so
		// refresh the directory.
		m.sessionsLoading = true
		return m, listSessionsCmd(m.backend, m.requestTimeout)

	case errors.Is(msg.Err, context.Canceled):
		// User-initiated stop; nothing to report.
		m.conv.DiscardStream()
		m.syncViewport()
		return m, nil

	default:
		slog.Warn("stream failed", "session", msg.SessionID, "error", msg.Err)
		m.conv.DiscardStream()
		m.errorText = errorMessage(msg.Err)
		m.syncViewport()
		return m, nil
	}
}

// busy reports whether a send or an initial load is in flight.
func (m Model) busy() bool {
	return m.state != StateIdle || m.messagesLoading || m.sessionsLoading
}

// errorMessage maps an error to banner text. Server-provided detail is shown
// verbatim; everything else gets a generic line.
func errorMessage(err error) string {
	if errors.Is(err, api.ErrNotConfigured) {
		return "server address not configured, set server.base_url in config.toml"
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	var streamErr *api.StreamError
	if errors.As(err, &streamErr) {
		return "reply interrupted, connection lost"
	}
	return "request failed, check your connection"
}
