// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListSessionsPreservesBackendOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ai/chat/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"s2","title":"Newer","created_at":"2026-02-01T10:00:00Z","updated_at":"2026-02-01T10:00:00Z"},
			{"id":"s1","title":null,"created_at":"2026-01-01T10:00:00Z","updated_at":"2026-01-01T10:00:00Z"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions error: %v", err)
	}

	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	// Most-recent-first order is the backend's; the client must not re-sort.
	if sessions[0].ID != "s2" || sessions[1].ID != "s1" {
		t.Errorf("order not preserved: %s, %s", sessions[0].ID, sessions[1].ID)
	}
	if sessions[1].DisplayTitle() != "New chat" {
		t.Errorf("null title should display as 'New chat', got %q", sessions[1].DisplayTitle())
	}
}

func TestCreateSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"s3","title":null,"created_at":"2026-03-01T10:00:00Z","updated_at":"2026-03-01T10:00:00Z"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session, err := client.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession error: %v", err)
	}
	if session.ID != "s3" {
		t.Errorf("ID = %q, want s3", session.ID)
	}
}

func TestListMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ai/chat/sessions/s1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"m1","role":"user","content":"Hello","created_at":"2026-01-01T10:00:00Z"},
			{"id":"m2","role":"assistant","content":"Hi there!","created_at":"2026-01-01T10:00:05Z"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	messages, err := client.ListMessages(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ListMessages error: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "Hello" || messages[1].Content != "Hi there!" {
		t.Errorf("unexpected contents: %q, %q", messages[0].Content, messages[1].Content)
	}
}

func TestSessionCookieRidesOnRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("sessionid")
		if err != nil || cookie.Value != "abc123" {
			t.Errorf("session cookie missing or wrong: %v", err)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL).WithSessionCookie("sessionid", "abc123")
	if _, err := client.ListSessions(context.Background()); err != nil {
		t.Fatalf("ListSessions error: %v", err)
	}
}

func TestServerErrorSurfacesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Authentication required"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ListSessions(context.Background())

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Detail != "Authentication required" {
		t.Errorf("got status %d detail %q", apiErr.Status, apiErr.Detail)
	}
}

func TestNetworkErrorIsWrapped(t *testing.T) {
	// Point at a server that is not listening.
	client := NewClient("http://127.0.0.1:1")
	_, err := client.ListSessions(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure must not be an *Error: %v", err)
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("")
	if _, err := client.ListSessions(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if err := client.SendMessage(context.Background(), "s1", "x", func(string) {}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
