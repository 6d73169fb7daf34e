// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the JobDeck backend.
//
// The backend exposes a small session-scoped chat API: JSON for listing and
// creating sessions and for fetching message history, and a chunked
// text/plain response stream for assistant replies. Every request carries
// ambient cookie credentials; a 401 is reported like any other server error
// because session gating and redirects are the responsibility of the
// surrounding application, not this client.
//
// Streaming replies are delivered to the caller fragment by fragment through
// a callback. Fragment boundaries carry no semantic meaning: a network read
// may split a multi-byte character, so the stream reader buffers incomplete
// UTF-8 sequences across reads and only ever hands complete runes to the
// callback.
package api
