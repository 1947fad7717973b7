package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudey/internal/api"
)

// fakeBackend is a scriptable Backend for manager tests.
type fakeBackend struct {
	answer       string
	queryErr     error
	messages     []api.Message
	messagesErr  error
	sessions     []api.SessionSummary
	sessionsErr  error
	deleteErr    error
	deleted      []string
	historyGate  chan struct{} // when set, SessionMessages blocks until closed
	queryGate    chan struct{} // when set, Query blocks until closed
	queryCalls   int
	historyCalls int
}

func (f *fakeBackend) Query(ctx context.Context, question string, userID int, sessionID, provider string) (string, error) {
	f.queryCalls++
	if f.queryGate != nil {
		<-f.queryGate
	}
	return f.answer, f.queryErr
}

func (f *fakeBackend) ListSessions(ctx context.Context, userID int) ([]api.SessionSummary, error) {
	return f.sessions, f.sessionsErr
}

func (f *fakeBackend) SessionMessages(ctx context.Context, userID int, sessionID string) ([]api.Message, error) {
	f.historyCalls++
	if f.historyGate != nil {
		<-f.historyGate
	}
	return f.messages, f.messagesErr
}

func (f *fakeBackend) DeleteSession(ctx context.Context, sessionID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, sessionID)
	return nil
}

func newTestManager(backend Backend) *Manager {
	return NewManager(backend, 1, "openai", slog.Default(), nil)
}

func TestNewSessionID(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()

	assert.True(t, strings.HasPrefix(a, "session-"))
	assert.NotEqual(t, a, b)
}

func TestStartNewNoNetwork(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(backend)

	id := m.StartNew()

	assert.NotEmpty(t, id)
	assert.Equal(t, StateReady, m.State())
	assert.Empty(t, m.Messages())
	assert.Zero(t, backend.historyCalls)
	assert.Zero(t, backend.queryCalls)
}

func TestSendSuccess(t *testing.T) {
	backend := &fakeBackend{answer: "You have 3 compartments"}
	m := newTestManager(backend)
	m.StartNew()

	err := m.Send(context.Background(), "List my compartments")

	require.NoError(t, err)
	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "List my compartments", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "You have 3 compartments", msgs[1].Content)
	assert.Equal(t, StateReady, m.State())
}

func TestSendFailureAppendsErrorMessage(t *testing.T) {
	backend := &fakeBackend{queryErr: fmt.Errorf("backend unavailable")}
	m := newTestManager(backend)
	m.StartNew()

	err := m.Send(context.Background(), "hello")

	// The failure is surfaced in-band, never returned.
	require.NoError(t, err)
	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleError, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "backend unavailable")
	assert.Equal(t, StateReady, m.State())
}

func TestSendGrowsByTwoEachRoundTrip(t *testing.T) {
	backend := &fakeBackend{answer: "ok"}
	m := newTestManager(backend)
	m.StartNew()

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Send(context.Background(), "question"))
		assert.Len(t, m.Messages(), (i+1)*2)
	}
}

func TestLoadHistorySuccess(t *testing.T) {
	backend := &fakeBackend{messages: []api.Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}}
	m := newTestManager(backend)
	m.StartNew()

	m.LoadHistory(context.Background())

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, StateReady, m.State())
}

func TestLoadHistoryFailSoft(t *testing.T) {
	backend := &fakeBackend{messagesErr: fmt.Errorf("boom")}
	m := newTestManager(backend)
	m.StartNew()

	m.LoadHistory(context.Background())

	// Failures degrade to an empty history, never an error state.
	assert.Empty(t, m.Messages())
	assert.Equal(t, StateReady, m.State())
}

func TestLoadHistoryThenSend(t *testing.T) {
	backend := &fakeBackend{
		messages: []api.Message{{Role: "user", Content: "earlier"}},
		answer:   "later answer",
	}
	m := newTestManager(backend)
	m.StartNew()

	m.LoadHistory(context.Background())
	prior := len(m.Messages())
	require.NoError(t, m.Send(context.Background(), "follow up"))

	assert.Len(t, m.Messages(), prior+2)
}

func TestLoadHistoryStaleResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{
		messages:    []api.Message{{Role: "user", Content: "old session"}},
		historyGate: gate,
	}
	m := newTestManager(backend)
	m.Switch("session-1")

	done := make(chan struct{})
	go func() {
		m.LoadHistory(context.Background())
		close(done)
	}()

	// User navigates away before the fetch resolves.
	time.Sleep(10 * time.Millisecond)
	m.Switch("session-2")
	close(gate)
	<-done

	// The stale result must not overwrite the new session's view.
	assert.Empty(t, m.Messages())
	assert.Equal(t, "session-2", m.ActiveID())
}

func TestSendStaleReplyDiscarded(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{
		answer:    "answer for the old session",
		queryGate: gate,
	}
	m := newTestManager(backend)
	m.Switch("session-1")

	done := make(chan struct{})
	go func() {
		require.NoError(t, m.Send(context.Background(), "what changed last month?"))
		close(done)
	}()

	// User opens the catalogue and switches sessions mid-send.
	time.Sleep(10 * time.Millisecond)
	m.Switch("session-2")
	close(gate)
	<-done

	// The late reply belongs to session-1 and must not reach the new transcript.
	assert.Empty(t, m.Messages())
	assert.Equal(t, "session-2", m.ActiveID())
}

func TestSendStaleErrorReplyDiscarded(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{
		queryErr:  fmt.Errorf("agent timed out"),
		queryGate: gate,
	}
	m := newTestManager(backend)
	m.Switch("session-1")

	done := make(chan struct{})
	go func() {
		require.NoError(t, m.Send(context.Background(), "hello"))
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	m.Switch("session-2")
	close(gate)
	<-done

	assert.Empty(t, m.Messages())
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 60))

	// Archive titles come from user text and may be multibyte.
	got := truncate(strings.Repeat("ü", 70), 60)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ü", 60), got)
}

func TestSessionsDefaultTitle(t *testing.T) {
	backend := &fakeBackend{sessions: []api.SessionSummary{
		{ID: "s1", Title: "", UpdatedAt: "2026-08-30T10:00:00Z"},
		{ID: "s2", Title: "Cost question", UpdatedAt: "2026-08-31T10:00:00Z"},
	}}
	m := newTestManager(backend)

	sessions, err := m.Sessions(context.Background())

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, DefaultTitle, sessions[0].Title)
	assert.Equal(t, "Cost question", sessions[1].Title)
	assert.Equal(t, 2026, sessions[1].UpdatedAt.Year())
}

func TestSessionsError(t *testing.T) {
	backend := &fakeBackend{sessionsErr: fmt.Errorf("boom")}
	m := newTestManager(backend)

	_, err := m.Sessions(context.Background())

	assert.Error(t, err)
}

func TestDeleteActiveSessionReplacesID(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(backend)
	active := m.StartNew()

	_, err := m.Delete(context.Background(), active)

	require.NoError(t, err)
	assert.NotEqual(t, active, m.ActiveID())
	assert.NotEmpty(t, m.ActiveID())
	assert.Equal(t, StateReady, m.State())
	assert.Equal(t, []string{active}, backend.deleted)
}

func TestDeleteOtherSessionKeepsActive(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(backend)
	active := m.StartNew()

	_, err := m.Delete(context.Background(), "session-other")

	require.NoError(t, err)
	assert.Equal(t, active, m.ActiveID())
}

func TestDeleteFailureKeepsState(t *testing.T) {
	backend := &fakeBackend{deleteErr: fmt.Errorf("denied")}
	m := newTestManager(backend)
	active := m.StartNew()

	_, err := m.Delete(context.Background(), active)

	assert.Error(t, err)
	assert.Equal(t, active, m.ActiveID())
}
