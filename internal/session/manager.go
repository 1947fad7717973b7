// Package session implements the conversation session manager: active session
// identity, message history, message submission and the session catalogue.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cloudey/internal/api"
)

// State is the lifecycle state of the active session.
type State int

const (
	StateIdle State = iota
	StateLoadingHistory
	StateReady
	StateSending
)

// ErrSendInFlight is returned when a send is attempted while a prior send is
// still pending. The UI disables submission in that state; this is the backstop.
var ErrSendInFlight = fmt.Errorf("a message is already being sent")

// Backend is the subset of the API client the manager depends on.
type Backend interface {
	Query(ctx context.Context, question string, userID int, sessionID, provider string) (string, error)
	ListSessions(ctx context.Context, userID int) ([]api.SessionSummary, error)
	SessionMessages(ctx context.Context, userID int, sessionID string) ([]api.Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Manager owns the active session id, its message history and the session
// catalogue. All shared state is guarded by a mutex because fetches run off
// the render goroutine.
type Manager struct {
	backend  Backend
	userID   int
	provider string
	logger   *slog.Logger
	archive  *sql.DB // optional local transcript mirror, may be nil

	mu       sync.Mutex
	activeID string
	state    State
	messages []Message
}

// NewManager creates a session manager. archive may be nil to disable the
// local transcript mirror.
func NewManager(backend Backend, userID int, provider string, logger *slog.Logger, archive *sql.DB) *Manager {
	return &Manager{
		backend:  backend,
		userID:   userID,
		provider: provider,
		logger:   logger,
		archive:  archive,
		state:    StateIdle,
	}
}

// NewSessionID generates a fresh session identifier. Timestamp plus a random
// suffix keeps ids collision-resistant within a client run.
func NewSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), suffix)
}

// StartNew switches to a freshly generated session with an empty history.
// No network call is made until the first message is sent.
func (m *Manager) StartNew() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeID = NewSessionID()
	m.messages = nil
	m.state = StateReady
	m.logger.Info("started new session", "session_id", m.activeID)
	return m.activeID
}

// Switch makes an existing session active and clears the loaded history.
// Callers follow up with LoadHistory.
func (m *Manager) Switch(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeID = sessionID
	m.messages = nil
	m.state = StateIdle
}

// ActiveID returns the identifier of the active session.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Messages returns a copy of the active session's message list.
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// LoadHistory fetches the message history of the active session. History is
// non-critical: any failure leaves the session Ready with an empty history
// rather than an error state. A result is discarded if the user switched
// sessions while the fetch was in flight.
func (m *Manager) LoadHistory(ctx context.Context) {
	m.mu.Lock()
	if m.activeID == "" {
		m.activeID = NewSessionID()
	}
	sessionID := m.activeID
	m.state = StateLoadingHistory
	m.mu.Unlock()

	msgs, err := m.backend.SessionMessages(ctx, m.userID, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID != sessionID {
		// Stale response: the user moved on to another session.
		m.logger.Debug("discarding stale history response", "session_id", sessionID)
		return
	}

	if err != nil {
		m.logger.Warn("failed to load session history, starting empty", "session_id", sessionID, "error", err)
		m.messages = nil
		m.state = StateReady
		return
	}

	loaded := make([]Message, len(msgs))
	for i, msg := range msgs {
		loaded[i] = Message{Role: msg.Role, Content: msg.Content}
	}
	m.messages = loaded
	m.state = StateReady
	m.logger.Info("loaded session history", "session_id", sessionID, "message_count", len(loaded))
}

// Send appends the user message optimistically, queries the backend, and
// appends either the assistant answer or an in-band error message. The
// message list always grows by exactly two.
func (m *Manager) Send(ctx context.Context, text string) error {
	m.mu.Lock()
	if m.state == StateSending {
		m.mu.Unlock()
		return ErrSendInFlight
	}
	if m.activeID == "" {
		m.activeID = NewSessionID()
	}
	sessionID := m.activeID
	userMsg := Message{Role: RoleUser, Content: text, Timestamp: time.Now()}
	m.messages = append(m.messages, userMsg)
	m.state = StateSending
	m.mu.Unlock()

	answer, err := m.backend.Query(ctx, text, m.userID, sessionID, m.provider)

	var reply Message
	if err != nil {
		reply = Message{Role: RoleError, Content: fmt.Sprintf("Error: %v", err), Timestamp: time.Now()}
		m.logger.Error("failed to send message", "session_id", sessionID, "error", err)
	} else {
		reply = Message{Role: RoleAssistant, Content: answer, Timestamp: time.Now()}
	}

	m.mu.Lock()
	// The user may have switched sessions while the query was in flight.
	// A late reply belongs to the old transcript, not the one on screen,
	// so it is archived but never appended.
	if m.activeID != sessionID {
		m.mu.Unlock()
		m.logger.Info("discarding reply for inactive session", "session_id", sessionID, "active_id", m.ActiveID())
		if err == nil {
			go func() {
				if archiveErr := m.archiveRoundTrip(sessionID, userMsg, reply); archiveErr != nil {
					m.logger.Error("failed to archive messages", "session_id", sessionID, "error", archiveErr)
				}
			}()
		}
		return nil
	}
	m.messages = append(m.messages, reply)
	m.state = StateReady
	m.mu.Unlock()

	if err == nil {
		go func() {
			if archiveErr := m.archiveRoundTrip(sessionID, userMsg, reply); archiveErr != nil {
				m.logger.Error("failed to archive messages", "session_id", sessionID, "error", archiveErr)
			}
		}()
	}

	return nil
}

// Sessions fetches the session catalogue. Loaded lazily when the history
// panel opens, never kept live.
func (m *Manager) Sessions(ctx context.Context) ([]Summary, error) {
	summaries, err := m.backend.ListSessions(ctx, m.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	out := make([]Summary, len(summaries))
	for i, s := range summaries {
		title := s.Title
		if title == "" {
			title = DefaultTitle
		}
		updated, _ := time.Parse(time.RFC3339, s.UpdatedAt)
		out[i] = Summary{ID: s.ID, Title: title, UpdatedAt: updated}
	}
	return out, nil
}

// Delete removes a session on the backend. Deleting the active session
// transitions to a freshly generated identifier so the UI never points at a
// nonexistent session. The local transcript archive is deliberately left
// intact. Returns the refreshed catalogue.
func (m *Manager) Delete(ctx context.Context, sessionID string) ([]Summary, error) {
	if err := m.backend.DeleteSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}

	m.mu.Lock()
	if m.activeID == sessionID {
		m.activeID = NewSessionID()
		m.messages = nil
		m.state = StateReady
		m.logger.Info("deleted active session, replaced", "deleted", sessionID, "session_id", m.activeID)
	}
	m.mu.Unlock()

	return m.Sessions(ctx)
}

// archiveRoundTrip mirrors a completed round-trip into the local sqlite
// archive so transcripts survive backend-side deletion.
func (m *Manager) archiveRoundTrip(sessionID string, msgs ...Message) error {
	if m.archive == nil {
		return nil
	}

	tx, err := m.archive.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	title := DefaultTitle
	for _, msg := range msgs {
		if msg.Role == RoleUser {
			title = truncate(msg.Content, 60)
			break
		}
	}

	_, err = tx.Exec(
		"INSERT INTO sessions (id, title, updated_at) VALUES (?, ?, ?) ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at",
		sessionID, title, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	for _, msg := range msgs {
		_, err = tx.Exec(
			"INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)",
			sessionID, msg.Role, msg.Content, msg.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// truncate shortens a title to n characters without splitting a rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
