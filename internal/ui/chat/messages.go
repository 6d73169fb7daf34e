// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jhalloran/jobdeck-tui/internal/config"
	"github.com/jhalloran/jobdeck-tui/internal/model"
)

// ===== BACKEND RESULT MESSAGES =====

// SessionsLoadedMsg carries the result of a session list fetch.
type SessionsLoadedMsg struct {
	Sessions []model.Session
	Err      error
}

// SessionCreatedMsg carries the result of creating a new session.
type SessionCreatedMsg struct {
	Session model.Session
	Err     error
}

// MessagesLoadedMsg carries the history for one session. SessionID is the
// session the request was issued for; Update drops the message when the
// active session has moved on in the meantime.
type MessagesLoadedMsg struct {
	SessionID string
	Messages  []model.Message
	Err       error
}

// StreamEventMsg is one event from an in-flight reply stream: either a
// fragment of assistant text, or the terminal event (Final set) carrying
// the stream outcome. Seq identifies the stream generation that produced
// the event; events from superseded generations are ignored.
type StreamEventMsg struct {
	Seq       int
	SessionID string
	Fragment  string
	Final     bool
	Err       error
}

// ===== EXTERNAL MESSAGES =====

// ConfigReloadedMsg is sent by main when the config file changes on disk.
type ConfigReloadedMsg struct {
	Config config.Config
}
