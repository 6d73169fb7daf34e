// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jhalloran/jobdeck-tui/internal/api"
	"github.com/jhalloran/jobdeck-tui/internal/config"
	"github.com/jhalloran/jobdeck-tui/internal/model"
	"github.com/jhalloran/jobdeck-tui/internal/ui/styles"
)

// =============================================================================
// BACKEND
// =============================================================================

// Backend is the slice of the API client the chat view depends on. Tests
// substitute a fake; production wires *api.Client.
type Backend interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
	CreateSession(ctx context.Context) (model.Session, error)
	ListMessages(ctx context.Context, sessionID string) ([]model.Message, error)
	SendMessage(ctx context.Context, sessionID, content string, callback api.FragmentCallback) error
}

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the send/stream state of the chat view.
type State int

const (
	StateIdle      State = iota // Ready for input
	StateSending                // Request sent, no fragment received yet
	StateStreaming              // Receiving reply fragments
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Backend access
	backend        Backend
	requestTimeout time.Duration

	// Session directory
	sessions        []model.Session
	sessionsLoading bool
	activeID        string

	// Conversation for the active session
	conv            *model.Conversation
	messagesLoading bool

	// In-flight stream. streamSeq is bumped for every new stream and for
	// every cancellation, so events carrying an older seq are stale.
	streamSeq int
	streamCh  chan StreamEventMsg
	cancelMgr *cancelManager

	// Error banner, cleared on the next send or session change
	errorText string

	// UI config
	uiCfg config.UIConfig

	// Components
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	keys     KeyMap

	ready bool
}

// New creates a chat model backed by the given client.
func New(backend Backend, cfg config.Config, theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your applications..."
	ti.Prompt = "> "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.StatusHint

	return Model{
		state:           StateIdle,
		sessionsLoading: true, // Init fetches the directory immediately
		theme:           theme,
		backend:         backend,
		requestTimeout:  cfg.RequestTimeout(),
		uiCfg:           cfg.UI,
		cancelMgr:       newCancelManager(),
		input:           ti,
		spinner:         sp,
		keys:            DefaultKeyMap(),
	}
}

// Init loads the session directory and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(listSessionsCmd(m.backend, m.requestTimeout), m.spinner.Tick)
}

// ActiveSessionID returns the id of the currently selected session, or ""
// when none is selected.
func (m Model) ActiveSessionID() string {
	return m.activeID
}

// State returns the current send/stream state.
func (m Model) State() State {
	return m.state
}

// ErrorText returns the current error banner text, or "".
func (m Model) ErrorText() string {
	return m.errorText
}

// Conversation returns the active conversation, or nil before a session is
// selected.
func (m Model) Conversation() *model.Conversation {
	return m.conv
}

// Teardown cancels any in-flight stream. Main calls this after the program
// exits so the streaming goroutine never outlives the UI.
func (m Model) Teardown() {
	m.cancelMgr.cancel()
}
