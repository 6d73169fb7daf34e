// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the chat view: the session sidebar, the
// conversation pane, and the send-and-stream state machine.
//
// The view is a Bubble Tea model, so all state lives in one place and is
// only ever mutated inside Update. Network work runs in commands; results
// come back as messages. Three rules keep the view consistent while the
// user navigates under latency:
//
//   - History loads are tagged with the session id they were issued for and
//     discarded if the active session has changed by the time they resolve.
//   - At most one send/stream operation is in flight; its events carry a
//     generation number and events from a superseded stream are dropped.
//   - The displayed history is always finalized messages followed by the
//     partial text of the in-flight reply; the partial never survives
//     completion, cancellation, or an error.
package chat
