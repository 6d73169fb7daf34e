// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// Sessions and messages are owned by the JobDeck backend; this package holds
// the client-side representation plus constructors for the locally generated
// messages the UI appends optimistically (the user's own input, and the
// finalized assistant reply assembled from a response stream).
package model
