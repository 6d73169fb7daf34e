// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "Hello", msg.Content)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage("Hi there!")

	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "Hi there!", msg.Content)
	assert.NotEmpty(t, msg.ID)
}

func TestMessageIDsAreUnique(t *testing.T) {
	a := NewUserMessage("a")
	b := NewUserMessage("a")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short content unchanged", "hi", 10, "hi"},
		{"long content truncated", "hello world", 8, "hello..."},
		{"exact length unchanged", "hello", 5, "hello"},
		{"multibyte not split", "héllo wörld", 8, "héllo..."},
		{"tiny max", "hello", 2, "he"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewUserMessage(tt.content)
			assert.Equal(t, tt.want, msg.Preview(tt.maxLen))
		})
	}
}

func TestSessionDisplayTitle(t *testing.T) {
	s := Session{ID: "s1", Title: "Interview prep"}
	assert.Equal(t, "Interview prep", s.DisplayTitle())

	s.Title = ""
	assert.Equal(t, "New chat", s.DisplayTitle())
}

func TestSessionDecodesNullTitle(t *testing.T) {
	// The backend returns null until it derives a title from the first
	// exchange; that must decode cleanly to an untitled session.
	var s Session
	err := json.Unmarshal([]byte(`{"id":"s1","title":null}`), &s)
	require.NoError(t, err)
	assert.Equal(t, "", s.Title)
	assert.Equal(t, "New chat", s.DisplayTitle())
}

func TestRoleDisplayName(t *testing.T) {
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
	assert.Equal(t, "system", Role("system").DisplayName())
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversationStreamLifecycle(t *testing.T) {
	conv := NewConversation("s1")
	conv.AppendUser("Hello")

	conv.AppendFragment("Hi")
	conv.AppendFragment(" there!")
	assert.Equal(t, "Hi there!", conv.Partial)
	assert.True(t, conv.IsStreaming())

	conv.FinalizeStream()
	require.Equal(t, 2, conv.Len())
	assert.Equal(t, RoleUser, conv.Messages[0].Role)
	assert.Equal(t, RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "Hi there!", conv.Messages[1].Content)
	assert.Equal(t, "", conv.Partial)
	assert.False(t, conv.IsStreaming())
}

func TestConversationDiscardStream(t *testing.T) {
	conv := NewConversation("s1")
	conv.AppendUser("Hello")
	conv.AppendFragment("Hi")

	conv.DiscardStream()
	assert.Equal(t, "", conv.Partial)
	// The optimistic user message is never retracted.
	require.Equal(t, 1, conv.Len())
	assert.Equal(t, "Hello", conv.Messages[0].Content)
}

func TestConversationFinalizeEmptyPartialIsNoop(t *testing.T) {
	conv := NewConversation("s1")
	conv.FinalizeStream()
	assert.Equal(t, 0, conv.Len())
}

func TestConversationReplaceDiscardsPartial(t *testing.T) {
	conv := NewConversation("s1")
	conv.AppendFragment("stale partial")

	loaded := []Message{NewUserMessage("from backend")}
	conv.Replace(loaded)

	assert.Equal(t, "", conv.Partial)
	require.Equal(t, 1, conv.Len())
	assert.Equal(t, "from backend", conv.Messages[0].Content)
}

func TestConversationReplaceNil(t *testing.T) {
	conv := NewConversation("s1")
	conv.Replace(nil)
	assert.NotNil(t, conv.Messages)
	assert.Equal(t, 0, conv.Len())
}
