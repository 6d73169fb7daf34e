// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// streamReadSize is the read buffer size for response streams. One read is
// one fragment; the backend imposes no framing beyond the TCP chunking.
const streamReadSize = 4096

// FragmentCallback is called for each text fragment received from a
// response stream, strictly in arrival order.
type FragmentCallback func(fragment string)

// StreamError represents an error that interrupted a response stream,
// preserving any partial content received before the drop. The partial text
// is for diagnostics only: an interrupted reply is never committed to
// history.
type StreamError struct {
	Partial string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream interrupted (partial content received: %d chars): %v", len([]rune(e.Partial)), e.Err)
	}
	return fmt.Sprintf("stream interrupted: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// sendPayload is the request body for the send-message endpoint.
type sendPayload struct {
	Content string `json:"content"`
}

// =============================================================================
// SEND MESSAGE + STREAM REPLY
// =============================================================================

// SendMessage posts a user message to a session and consumes the streamed
// assistant reply, invoking callback once per received fragment.
//
// The reply body is chunked text/plain with no per-fragment schema; the
// stream ends when the server closes it. Cancelling ctx aborts the
// underlying connection and returns ctx.Err(). A non-2xx status before
// streaming returns an *Error; a connection drop mid-stream returns a
// *StreamError carrying the partial content received so far.
func (c *Client) SendMessage(ctx context.Context, sessionID, content string, callback FragmentCallback) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendPayload{Content: content})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + "/api/ai/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		// The transport wraps context cancellation; surface it plainly
		// so callers can tell a user abort from a network failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return decodeError(resp.StatusCode, data)
	}

	return c.processStream(ctx, resp.Body, callback)
}

// processStream reads the response body until EOF, handing complete-rune
// fragments to the callback as they arrive.
func (c *Client) processStream(ctx context.Context, body io.Reader, callback FragmentCallback) error {
	var accumulated strings.Builder

	// pending holds the trailing bytes of an incomplete UTF-8 sequence from
	// the previous read. A fragment may split a multi-byte character; those
	// bytes are carried over rather than dropped or corrupted.
	var pending []byte
	buf := make([]byte, streamReadSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			complete, rest := splitCompleteRunes(pending)
			if len(complete) > 0 {
				fragment := string(complete)
				accumulated.WriteString(fragment)
				callback(fragment)
			}
			pending = rest
		}

		if err == io.EOF {
			// A stream should never end inside a rune; if it does, emit
			// the leftover bytes as-is rather than swallowing them.
			if len(pending) > 0 {
				fragment := string(pending)
				accumulated.WriteString(fragment)
				callback(fragment)
			}
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &StreamError{Partial: accumulated.String(), Err: err}
		}
	}
}

// splitCompleteRunes splits b into a prefix of complete UTF-8 sequences and
// a remainder holding a trailing incomplete sequence, if any. Invalid bytes
// that cannot form a rune are passed through in the prefix so garbage input
// cannot wedge the stream.
func splitCompleteRunes(b []byte) (complete, rest []byte) {
	// A multi-byte sequence is at most utf8.UTFMax bytes, so only the last
	// few bytes can belong to an incomplete one. Scan back for its start.
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		c := b[i]
		if c < utf8.RuneSelf {
			// ASCII tail: everything is complete.
			return b, nil
		}
		if utf8.RuneStart(c) {
			if need := runeLen(c); len(b)-i < need {
				return b[:i], b[i:]
			}
			return b, nil
		}
		// Continuation byte: keep scanning for the leading byte.
	}
	return b, nil
}

// runeLen returns the sequence length implied by a UTF-8 leading byte.
func runeLen(c byte) int {
	switch {
	case c&0xE0 == 0xC0:
		return 2
	case c&0xF0 == 0xE0:
		return 3
	case c&0xF8 == 0xF0:
		return 4
	default:
		return 1 // not a valid leading byte, pass through
	}
}
