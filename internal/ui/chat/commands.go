// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ===== BACKEND COMMANDS =====

// listSessionsCmd fetches the session directory.
func listSessionsCmd(b Backend, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sessions, err := b.ListSessions(ctx)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// createSessionCmd creates a new empty session.
func createSessionCmd(b Backend, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		session, err := b.CreateSession(ctx)
		return SessionCreatedMsg{Session: session, Err: err}
	}
}

// loadMessagesCmd fetches the history for one session. The result carries
// the session id so a late response for an abandoned session can be
// recognized and dropped.
func loadMessagesCmd(b Backend, sessionID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		messages, err := b.ListMessages(ctx, sessionID)
		return MessagesLoadedMsg{SessionID: sessionID, Messages: messages, Err: err}
	}
}

// ===== STREAM COMMANDS =====

// runStreamCmd drives one send-and-stream call. Fragments and the terminal
// outcome are pushed onto events; awaitStreamCmd relays them into the Update
// loop one at a time. Sends race ctx.Done so an abandoned stream whose
// consumer has stopped draining can never block the goroutine.
func runStreamCmd(b Backend, ctx context.Context, seq int, sessionID, content string, events chan<- StreamEventMsg) tea.Cmd {
	return func() tea.Msg {
		err := b.SendMessage(ctx, sessionID, content, func(fragment string) {
			select {
			case events <- StreamEventMsg{Seq: seq, SessionID: sessionID, Fragment: fragment}:
			case <-ctx.Done():
			}
		})
		select {
		case events <- StreamEventMsg{Seq: seq, SessionID: sessionID, Final: true, Err: err}:
		case <-ctx.Done():
		}
		close(events)
		return nil
	}
}

// awaitStreamCmd delivers the next stream event to Update. Update re-issues
// it after each fragment and stops after the terminal event.
func awaitStreamCmd(events <-chan StreamEventMsg) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ev
	}
}

