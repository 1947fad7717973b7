// Package tui provides the interactive terminal interface using Bubble Tea.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cloudey/internal/api"
	"cloudey/internal/cache"
	"cloudey/internal/config"
	"cloudey/internal/session"
	"cloudey/internal/table"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginLeft(2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))
)

// View represents the current view mode
type View int

const (
	ViewDashboard View = iota
	ViewCosts
	ViewRecommendations
	ViewChat
	ViewSessions
	ViewDetail
	ViewConfig
	ViewHelp
)

// panel holds the async state of one full-page dataset: loading, loaded,
// or failed with a retry affordance.
type panel struct {
	loading bool
	err     error
	seq     int
}

func (p *panel) start() int {
	p.loading = true
	p.err = nil
	p.seq++
	return p.seq
}

// stale reports whether a response belongs to a superseded request.
func (p *panel) stale(seq int) bool {
	return seq != p.seq
}

func (p *panel) finish(err error) {
	p.loading = false
	p.err = err
}

// Model is the main TUI model.
type Model struct {
	client   *api.Client
	store    *cache.Store
	sessions *session.Manager
	cfg      *config.Config
	logger   *slog.Logger

	view     View
	lastView View
	width    int
	height   int
	ready    bool
	quitting bool

	spinner  spinner.Model
	input    textinput.Model
	search   textinput.Model
	viewport viewport.Model

	// Dashboard
	dashPanel panel
	dashboard *api.DashboardData

	// Costs
	costsPanel  panel
	costs       *api.DetailedCosts
	costsTables []*table.Model
	costsTab    int
	cursor      int
	searching   bool
	exportNote  string

	// Recommendations
	recsPanel panel
	recs      *api.RecommendationsData
	recCursor int

	// Detail drill-down
	detail      *table.Model
	detailTitle string

	// Chat
	chatSeq     int
	progressIdx int
	loadingLine string

	// Sessions
	catalogue     []session.Summary
	sessionCursor int
	confirmDelete string

	// Config form
	form     configForm
	formNote string
	formBusy bool

	status string
	err    error
}

// Deps carries the wired dependencies for the interface.
type Deps struct {
	Client   *api.Client
	Store    *cache.Store
	Sessions *session.Manager
	Config   *config.Config
	Logger   *slog.Logger
}

// New creates the TUI model starting on the dashboard.
func New(d Deps) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	ti := textinput.New()
	ti.Placeholder = "Ask about your cloud costs..."
	ti.CharLimit = 500
	ti.Width = 60

	search := textinput.New()
	search.Placeholder = "filter by name or compartment"
	search.CharLimit = 80
	search.Width = 40

	m := Model{
		client:   d.Client,
		store:    d.Store,
		sessions: d.Sessions,
		cfg:      d.Config,
		logger:   d.Logger,
		view:     ViewDashboard,
		spinner:  s,
		input:    ti,
		search:   search,
		form:     newConfigForm(),
	}
	// The dashboard request starts here rather than in Init: Init runs on a
	// copy, so panel state set there would be lost.
	m.dashPanel.start()
	return m
}

// Init kicks off the dashboard load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchDashboard(m.dashPanel.seq, false))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}
		m = model

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.viewport = viewport.New(msg.Width-4, msg.Height-10)
		if m.view == ViewChat {
			m.refreshTranscript()
		}

	case dashboardMsg:
		if !m.dashPanel.stale(msg.seq) {
			m.dashPanel.finish(msg.err)
			if msg.err == nil {
				m.dashboard = msg.data
			}
		}

	case costsMsg:
		if !m.costsPanel.stale(msg.seq) {
			m.costsPanel.finish(msg.err)
			if msg.err == nil {
				m.costs = msg.data
				m.rebuildCostTables()
			}
		}

	case recommendationsMsg:
		if !m.recsPanel.stale(msg.seq) {
			m.recsPanel.finish(msg.err)
			if msg.err == nil {
				m.recs = msg.data
			}
		}

	case answerMsg:
		if msg.seq == m.chatSeq {
			m.loadingLine = ""
			m.input.Focus()
			m.refreshTranscript()
		}

	case historyMsg:
		m.refreshTranscript()

	case catalogueMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.catalogue = msg.sessions
			if m.sessionCursor >= len(m.catalogue) {
				m.sessionCursor = max(0, len(m.catalogue)-1)
			}
		}

	case progressTickMsg:
		if m.loadingLine != "" {
			m.progressIdx++
			m.loadingLine = progressLine(m.progressIdx)
			cmds = append(cmds, progressTick())
		}

	case configUploadMsg:
		m.formBusy = false
		if msg.err != nil {
			m.formNote = errorStyle.Render("upload failed: " + msg.err.Error())
		} else {
			m.formNote = ""
			m.view = ViewDashboard
			m.status = "credentials saved, run a sync to load fresh data"
		}

	case syncDoneMsg:
		if msg.err != nil {
			m.status = ""
			m.err = msg.err
		} else {
			m.err = nil
			m.status = fmt.Sprintf("synced %d metrics", msg.resp.Stats.TotalMetricsSaved)
		}

	case exportedMsg:
		if msg.err != nil {
			m.exportNote = errorStyle.Render("export failed: " + msg.err.Error())
		} else {
			m.exportNote = "exported to " + msg.path
		}

	case statusMsg:
		m.status = string(msg)

	case errMsg:
		m.err = msg

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.view == ViewChat && m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.view == ViewCosts && m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
		if t := m.activeCostTable(); t != nil && t.FilterTerm() != m.search.Value() {
			t.Filter(m.search.Value())
			m.cursor = 0
		}
	}
	if m.view == ViewChat || m.view == ViewDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.view == ViewConfig {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return fmt.Sprintf("\n  %s Loading...", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(m.viewTabs() + "\n")

	switch m.view {
	case ViewDashboard:
		b.WriteString(m.viewDashboard())
	case ViewCosts:
		b.WriteString(m.viewCosts())
	case ViewRecommendations:
		b.WriteString(m.viewRecommendations())
	case ViewChat:
		b.WriteString(m.viewChat())
	case ViewSessions:
		b.WriteString(m.viewSessions())
	case ViewDetail:
		b.WriteString(m.viewDetail())
	case ViewConfig:
		b.WriteString(m.form.View())
		if m.formNote != "" {
			b.WriteString("\n  " + m.formNote)
		}
	case ViewHelp:
		b.WriteString(m.viewHelp())
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()))
	}
	if m.status != "" {
		b.WriteString("\n" + infoStyle.Render("  "+m.status))
	}
	return b.String()
}

func (m Model) viewTabs() string {
	names := []string{"Dashboard", "Costs", "Recommendations", "Chat"}
	views := []View{ViewDashboard, ViewCosts, ViewRecommendations, ViewChat}

	var tabs []string
	for i, name := range names {
		style := tabStyle
		if m.view == views[i] {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d %s", i+1, name)))
	}
	return titleStyle.Render("☁ Cloudey") + "  " + strings.Join(tabs, "│")
}

func (m Model) viewHelp() string {
	help := `
  NAVIGATION
    1-4       Switch between dashboard, costs, recommendations, chat
    s         Session catalogue
    c         Credentials form
    ?         Toggle help
    q         Quit

  TABLES
    tab       Next table
    j/k       Move cursor
    </>       Previous/next page
    o         Sort by cost (press again to flip)
    /         Filter rows
    enter     Expand row breakdown
    e         Export full table to CSV
    r         Refresh
    R         Force a backend bypass of the cache

  CHAT
    enter     Send question
    s         Sessions (switch, delete, start new)

  RECOMMENDATIONS
    j/k       Move between entries
    enter     Open resource drill-down table
    S         Trigger a backend metrics sync
`
	return titleStyle.Render("Help") + infoStyle.Render(help) +
		helpStyle.Render("\n  press ? to return")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
