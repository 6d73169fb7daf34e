// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"
)

// =============================================================================
// UTF-8 BOUNDARY TESTS
// =============================================================================

func TestSplitCompleteRunes(t *testing.T) {
	tests := []struct {
		name         string
		input        []byte
		wantComplete string
		wantRest     string
	}{
		{"ascii only", []byte("hello"), "hello", ""},
		{"empty", []byte{}, "", ""},
		{"complete multibyte", []byte("héllo"), "héllo", ""},
		{"trailing 2-byte split", append([]byte("ab"), 0xC3), "ab", "\xc3"},
		{"trailing 3-byte missing one", append([]byte("ab"), 0xE4, 0xB8), "ab", "\xe4\xb8"},
		{"trailing 4-byte missing three", append([]byte("ab"), 0xF0), "ab", "\xf0"},
		{"only incomplete sequence", []byte{0xE4, 0xB8}, "", "\xe4\xb8"},
		{"lone continuation passes through", []byte{0x80}, "\x80", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, rest := splitCompleteRunes(tt.input)
			if string(complete) != tt.wantComplete {
				t.Errorf("complete = %q, want %q", complete, tt.wantComplete)
			}
			if string(rest) != tt.wantRest {
				t.Errorf("rest = %q, want %q", rest, tt.wantRest)
			}
		})
	}
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

// streamHandler writes each chunk followed by a flush, forcing the fragments
// onto the wire separately.
func streamHandler(t *testing.T, chunks [][]byte) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, chunk := range chunks {
			w.Write(chunk)
			flusher.Flush()
			time.Sleep(time.Millisecond)
		}
	}
}

func TestSendMessageFragmentOrder(t *testing.T) {
	server := httptest.NewServer(streamHandler(t, [][]byte{
		[]byte("Hi"),
		[]byte(" there!"),
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var mu sync.Mutex
	var fragments []string
	err := client.SendMessage(context.Background(), "s1", "Hello", func(fragment string) {
		mu.Lock()
		fragments = append(fragments, fragment)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}

	// Every prefix of the delivered fragments must concatenate to a prefix
	// of the full reply, and the whole thing must arrive intact.
	got := strings.Join(fragments, "")
	if got != "Hi there!" {
		t.Errorf("accumulated = %q, want %q", got, "Hi there!")
	}
	full := "Hi there!"
	acc := ""
	for _, f := range fragments {
		acc += f
		if !strings.HasPrefix(full, acc) {
			t.Errorf("partial %q is not a prefix of %q", acc, full)
		}
	}
}

func TestSendMessageSplitsMultibyteAcrossChunks(t *testing.T) {
	// Split 丸 (E4 B8 B8) across two network writes; the callback must never
	// see a broken rune.
	server := httptest.NewServer(streamHandler(t, [][]byte{
		{0xE4, 0xB8},
		{0xB8, ' ', 'o', 'k'},
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var mu sync.Mutex
	var accumulated strings.Builder
	err := client.SendMessage(context.Background(), "s1", "go", func(fragment string) {
		mu.Lock()
		defer mu.Unlock()
		if !utf8.ValidString(fragment) {
			t.Errorf("received invalid UTF-8 fragment: %q", fragment)
		}
		accumulated.WriteString(fragment)
	})
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}

	if got := accumulated.String(); got != "丸 ok" {
		t.Errorf("accumulated = %q, want %q", got, "丸 ok")
	}
}

func TestSendMessageErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"overloaded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SendMessage(context.Background(), "s1", "Hello", func(string) {
		t.Error("callback must not run on an error response")
	})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", apiErr.Status)
	}
	if apiErr.Detail != "overloaded" {
		t.Errorf("Detail = %q, want %q", apiErr.Detail, "overloaded")
	}
}

func TestSendMessageErrorWithoutDetailUsesStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SendMessage(context.Background(), "s1", "Hello", func(string) {})

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if apiErr.Detail != http.StatusText(http.StatusBadGateway) {
		t.Errorf("Detail = %q, want %q", apiErr.Detail, http.StatusText(http.StatusBadGateway))
	}
}

func TestSendMessageCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		w.Write([]byte("Hi"))
		w.(http.Flusher).Flush()
		// Hold the stream open until the client gives up.
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())

	gotFragment := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.SendMessage(ctx, "s1", "Hello", func(string) {
			select {
			case gotFragment <- struct{}{}:
			default:
			}
		})
	}()

	select {
	case <-gotFragment:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first fragment")
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("SendMessage did not return after cancellation")
	}
}

func TestSendMessageMidStreamDrop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100") // promise more than we send
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial text"))
		w.(http.Flusher).Flush()
		// Abort the connection without completing the body.
		panic(http.ErrAbortHandler)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var accumulated strings.Builder
	err := client.SendMessage(context.Background(), "s1", "Hello", func(fragment string) {
		accumulated.WriteString(fragment)
	})

	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("expected *StreamError, got %T: %v", err, err)
	}
	if streamErr.Partial != accumulated.String() {
		t.Errorf("Partial = %q, callback saw %q", streamErr.Partial, accumulated.String())
	}
	if streamErr.Unwrap() == nil {
		t.Error("StreamError must wrap the underlying error")
	}
}
