// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is one conversation thread with its own message history.
//
// Sessions are created by the backend on explicit user action. Title starts
// empty (JSON null from the backend decodes to "") and may be set or changed
// server-side as a side effect of conversation activity, which is why the
// session list is refreshed after every completed exchange.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayTitle returns the session title, or a default for untitled sessions.
func (s Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return "New chat"
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the finalized message history for the active session
// plus the partial assistant text of an in-flight response stream.
//
// The invariant maintained by the chat view: what the user sees is always
// finalized history followed by the partial text (if any), and the partial
// element never survives stream completion or cancellation.
type Conversation struct {
	SessionID string
	Messages  []Message

	// Partial is the accumulated text of an in-flight assistant reply.
	// Not part of Messages until finalized.
	Partial string
}

// NewConversation creates an empty conversation bound to a session.
func NewConversation(sessionID string) *Conversation {
	return &Conversation{
		SessionID: sessionID,
		Messages:  make([]Message, 0),
	}
}

// Replace swaps in a freshly loaded history, discarding any partial text.
func (c *Conversation) Replace(messages []Message) {
	c.Messages = messages
	if c.Messages == nil {
		c.Messages = make([]Message, 0)
	}
	c.Partial = ""
}

// AppendUser appends a locally generated user message and returns it.
func (c *Conversation) AppendUser(content string) Message {
	msg := NewUserMessage(content)
	c.Messages = append(c.Messages, msg)
	return msg
}

// AppendFragment appends one stream fragment to the partial text.
// Fragments are applied strictly in arrival order; boundaries carry no
// semantic meaning.
func (c *Conversation) AppendFragment(fragment string) {
	c.Partial += fragment
}

// FinalizeStream converts the partial text into one finalized assistant
// message and clears the partial buffer. Finalizing an empty partial is a
// no-op so a stream that delivered nothing leaves no empty message behind.
func (c *Conversation) FinalizeStream() {
	if c.Partial == "" {
		return
	}
	c.Messages = append(c.Messages, NewAssistantMessage(c.Partial))
	c.Partial = ""
}

// DiscardStream drops the partial text without creating a message.
// Used on cancellation and on mid-stream errors.
func (c *Conversation) DiscardStream() {
	c.Partial = ""
}

// IsStreaming returns true while partial text is present.
func (c *Conversation) IsStreaming() bool {
	return c.Partial != ""
}

// Len returns the number of finalized messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}
