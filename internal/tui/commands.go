package tui

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cloudey/internal/api"
	"cloudey/internal/cache"
	"cloudey/internal/session"
)

// Message types
type dashboardMsg struct {
	seq  int
	data *api.DashboardData
	err  error
}

type costsMsg struct {
	seq  int
	data *api.DetailedCosts
	err  error
}

type recommendationsMsg struct {
	seq  int
	data *api.RecommendationsData
	err  error
}

type answerMsg struct {
	seq int
	err error
}

type historyMsg struct{}

type catalogueMsg struct {
	sessions []session.Summary
	err      error
}

type syncDoneMsg struct {
	resp *api.SyncResponse
	err  error
}

type exportedMsg struct {
	path string
	err  error
}

type progressTickMsg time.Time

type statusMsg string

type errMsg error

// progressLines cycles under the assistant bubble while a question is in
// flight, to make the long agent latency legible.
var progressLines = []string{
	"Thinking...",
	"Looking at your cost data...",
	"Crunching the numbers...",
	"Checking compartments...",
	"Almost there...",
}

func progressLine(idx int) string {
	return progressLines[idx%len(progressLines)]
}

func progressTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return progressTickMsg(t)
	})
}

const requestTimeout = 90 * time.Second

// loadDashboard fetches the dashboard payload, serving from the local cache
// unless the entry is missing, expired, or a force refresh was requested.
func (m *Model) loadDashboard(force bool) tea.Cmd {
	return m.fetchDashboard(m.dashPanel.start(), force)
}

// fetchDashboard builds the fetch command without touching panel state, so
// Init can reuse the request already started in New.
func (m *Model) fetchDashboard(seq int, force bool) tea.Cmd {
	client, store, userID := m.client, m.store, m.cfg.UserID
	return func() tea.Msg {
		key := cache.Key("dashboard", userID)
		if force {
			store.Invalidate(key)
		} else if cached, ok := store.Get(key); ok {
			return dashboardMsg{seq: seq, data: cached.(*api.DashboardData)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		data, err := client.Dashboard(ctx, userID, force)
		if err != nil {
			return dashboardMsg{seq: seq, err: err}
		}
		store.Put(key, data)
		return dashboardMsg{seq: seq, data: data}
	}
}

func (m *Model) loadCosts(force bool) tea.Cmd {
	seq := m.costsPanel.start()
	client, store, userID := m.client, m.store, m.cfg.UserID
	return func() tea.Msg {
		key := cache.Key("costs", userID)
		if force {
			store.Invalidate(key)
		} else if cached, ok := store.Get(key); ok {
			return costsMsg{seq: seq, data: cached.(*api.DetailedCosts)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		data, err := client.DetailedCosts(ctx, userID, force)
		if err != nil {
			return costsMsg{seq: seq, err: err}
		}
		store.Put(key, data)
		return costsMsg{seq: seq, data: data}
	}
}

func (m *Model) loadRecommendations() tea.Cmd {
	seq := m.recsPanel.start()
	client, store, userID := m.client, m.store, m.cfg.UserID
	return func() tea.Msg {
		key := cache.Key("recommendations", userID)
		if cached, ok := store.Get(key); ok {
			return recommendationsMsg{seq: seq, data: cached.(*api.RecommendationsData)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		data, err := client.Recommendations(ctx, userID)
		if err != nil {
			return recommendationsMsg{seq: seq, err: err}
		}
		store.Put(key, data)
		return recommendationsMsg{seq: seq, data: data}
	}
}

// sendQuestion runs the chat round trip. The manager appends the optimistic
// user message before the network call and an answer or error bubble after,
// so the command only has to signal completion.
func (m *Model) sendQuestion(text string) tea.Cmd {
	seq := m.chatSeq
	mgr := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := mgr.Send(ctx, text)
		return answerMsg{seq: seq, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	mgr := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		mgr.LoadHistory(ctx)
		return historyMsg{}
	}
}

func (m *Model) loadCatalogue() tea.Cmd {
	mgr := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sessions, err := mgr.Sessions(ctx)
		return catalogueMsg{sessions: sessions, err: err}
	}
}

func (m *Model) deleteSession(id string) tea.Cmd {
	mgr := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sessions, err := mgr.Delete(ctx, id)
		return catalogueMsg{sessions: sessions, err: err}
	}
}

func (m *Model) syncMetrics() tea.Cmd {
	client, userID := m.client, m.cfg.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := client.SyncMetrics(ctx, userID)
		return syncDoneMsg{resp: resp, err: err}
	}
}

func (m *Model) exportTable(t interface {
	ExportFile(dir, hint string) (string, error)
}, hint string) tea.Cmd {
	return func() tea.Msg {
		dir, err := os.Getwd()
		if err != nil {
			dir = os.TempDir()
		}
		path, err := t.ExportFile(dir, hint)
		return exportedMsg{path: path, err: err}
	}
}
