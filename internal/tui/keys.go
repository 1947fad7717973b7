package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// handleKey processes a key press. The returned bool reports whether the
// key was consumed; unconsumed keys fall through to the focused component.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	key := msg.String()

	// Typing contexts swallow printable keys.
	typing := (m.view == ViewChat && m.input.Focused()) ||
		(m.view == ViewCosts && m.searching) ||
		m.view == ViewConfig

	switch key {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "q":
		if !typing {
			m.quitting = true
			return m, tea.Quit, true
		}
	case "?":
		if !typing {
			if m.view == ViewHelp {
				m.view = m.lastView
			} else {
				m.lastView = m.view
				m.view = ViewHelp
			}
			return m, nil, true
		}
	case "esc":
		return m.handleEscape()
	}

	if !typing {
		switch key {
		case "1":
			m.view = ViewDashboard
			if m.dashboard == nil && !m.dashPanel.loading {
				return m, m.loadDashboard(false), true
			}
			return m, nil, true
		case "2":
			m.view = ViewCosts
			if m.costs == nil && !m.costsPanel.loading {
				return m, m.loadCosts(false), true
			}
			return m, nil, true
		case "3":
			m.view = ViewRecommendations
			if m.recs == nil && !m.recsPanel.loading {
				return m, m.loadRecommendations(), true
			}
			return m, nil, true
		case "4":
			return m.enterChat()
		case "s":
			m.view = ViewSessions
			m.confirmDelete = ""
			return m, m.loadCatalogue(), true
		case "c":
			m.view = ViewConfig
			m.form = newConfigForm()
			m.formNote = ""
			m.formBusy = false
			return m, m.form.Focus(), true
		}
	}

	switch m.view {
	case ViewDashboard:
		return m.handleDashboardKey(key)
	case ViewCosts:
		return m.handleCostsKey(key)
	case ViewRecommendations:
		return m.handleRecommendationsKey(key)
	case ViewChat:
		return m.handleChatKey(key)
	case ViewSessions:
		return m.handleSessionsKey(key)
	case ViewConfig:
		return m.handleConfigKey(key)
	case ViewDetail:
		if key == "e" && m.detail != nil {
			return m, m.exportTable(m.detail, exportHint(m.detailTitle)), true
		}
	case ViewHelp:
		m.view = m.lastView
		return m, nil, true
	}

	return m, nil, false
}

func (m Model) handleEscape() (Model, tea.Cmd, bool) {
	switch {
	case m.view == ViewCosts && m.searching:
		m.searching = false
		m.search.Blur()
	case m.view == ViewDetail:
		m.view = ViewRecommendations
		m.detail = nil
	case m.view == ViewSessions && m.confirmDelete != "":
		m.confirmDelete = ""
	case m.view == ViewSessions:
		return m.enterChat()
	case m.view == ViewConfig, m.view == ViewHelp:
		m.view = ViewDashboard
	case m.view == ViewChat:
		m.input.Blur()
	}
	return m, nil, true
}

func (m Model) enterChat() (Model, tea.Cmd, bool) {
	m.view = ViewChat
	m.input.Focus()
	m.refreshTranscript()
	if m.sessions.ActiveID() == "" {
		m.sessions.StartNew()
		return m, nil, true
	}
	return m, nil, true
}

func (m Model) handleDashboardKey(key string) (Model, tea.Cmd, bool) {
	switch key {
	case "r":
		return m, m.loadDashboard(false), true
	case "R":
		return m, m.loadDashboard(true), true
	}
	return m, nil, false
}

func (m Model) handleRecommendationsKey(key string) (Model, tea.Cmd, bool) {
	entries := m.recommendationEntries()
	switch key {
	case "j", "down":
		if m.recCursor < len(entries)-1 {
			m.recCursor++
		}
		return m, nil, true
	case "k", "up":
		if m.recCursor > 0 {
			m.recCursor--
		}
		return m, nil, true
	case "enter":
		return m.openDetail()
	case "r":
		if m.recsPanel.err != nil || !m.recsPanel.loading {
			return m, m.loadRecommendations(), true
		}
	case "S":
		m.status = "syncing metrics..."
		return m, m.syncMetrics(), true
	}
	return m, nil, false
}

func (m Model) handleChatKey(key string) (Model, tea.Cmd, bool) {
	if key == "enter" && m.input.Focused() {
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.loadingLine != "" {
			return m, nil, true
		}
		m.input.SetValue("")
		m.input.Blur()
		m.chatSeq++
		m.progressIdx = 0
		m.loadingLine = progressLine(0)
		m.refreshTranscript()
		return m, tea.Batch(m.sendQuestion(text), progressTick()), true
	}
	if key == "tab" {
		if m.input.Focused() {
			m.input.Blur()
		} else if m.loadingLine == "" {
			m.input.Focus()
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) handleSessionsKey(key string) (Model, tea.Cmd, bool) {
	if m.confirmDelete != "" {
		switch key {
		case "y", "enter":
			id := m.confirmDelete
			m.confirmDelete = ""
			return m, m.deleteSession(id), true
		default:
			m.confirmDelete = ""
			return m, nil, true
		}
	}

	switch key {
	case "j", "down":
		if m.sessionCursor < len(m.catalogue)-1 {
			m.sessionCursor++
		}
		return m, nil, true
	case "k", "up":
		if m.sessionCursor > 0 {
			m.sessionCursor--
		}
		return m, nil, true
	case "n":
		m.sessions.StartNew()
		model, cmd, _ := m.enterChat()
		return model, cmd, true
	case "enter":
		if m.sessionCursor < len(m.catalogue) {
			m.sessions.Switch(m.catalogue[m.sessionCursor].ID)
			model, _, _ := m.enterChat()
			return model, model.loadHistory(), true
		}
	case "d", "x":
		if m.sessionCursor < len(m.catalogue) {
			m.confirmDelete = m.catalogue[m.sessionCursor].ID
		}
		return m, nil, true
	}
	return m, nil, false
}
