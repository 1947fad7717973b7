package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cloudey/internal/api"
	"cloudey/internal/costs"
	"cloudey/internal/session"
)

func (m Model) viewDashboard() string {
	if m.dashPanel.loading {
		return m.loadingPanel(m.dashPanel.seq)
	}
	if m.dashPanel.err != nil {
		return m.retryPanel("Could not load the dashboard", m.dashPanel.err)
	}
	d := m.dashboard
	if d == nil {
		return infoStyle.Render("\n  No dashboard data yet. Press r to load.\n")
	}

	var b strings.Builder

	if ov := d.CostOverview; ov != nil {
		b.WriteString(boxStyle.Render(fmt.Sprintf(
			"%s\n$%.2f %s\n%s: $%.2f  (%+.1f%% vs same period last month)",
			infoStyle.Render(ov.Period.Label),
			ov.TotalCost, ov.Currency,
			ov.CurrentMonthName, ov.CurrentMTD, ov.MTDChangePct,
		)) + "\n")
	}

	if tr := d.CostTrend; tr != nil {
		var lines []string
		for _, month := range tr.CompleteMonths {
			lines = append(lines, fmt.Sprintf("%-12s $%.2f", month.Name, month.Total))
		}
		lines = append(lines, fmt.Sprintf("%-12s $%.2f (to date)", tr.CurrentMonthName, tr.CurrentMTD))
		b.WriteString(boxStyle.Render("Recent months\n"+strings.Join(lines, "\n")) + "\n")
	}

	if inv := d.ResourceInventory; inv != nil {
		b.WriteString(boxStyle.Render(fmt.Sprintf(
			"Resources\n%d instances (%s running, %s stopped)\n%d block volumes, %d compartments",
			inv.TotalInstances,
			activeStyle.Render(fmt.Sprint(inv.RunningInstances)),
			warnStyle.Render(fmt.Sprint(inv.StoppedInstances)),
			inv.BlockVolumes, inv.Compartments,
		)) + "\n")
	}

	if opt := d.OptimizationSummary; opt != nil {
		var lines []string
		lines = append(lines, fmt.Sprintf("%d recommendations, potential annual savings $%.2f",
			opt.TotalRecommendations, opt.PotentialAnnualSavings))
		for _, rec := range opt.TopRecommendations {
			lines = append(lines, fmt.Sprintf("%s %s (%s)",
				severityBadge(rec.Severity), rec.Title, rec.Savings))
		}
		b.WriteString(boxStyle.Render("Optimization\n"+strings.Join(lines, "\n")) + "\n")
	}

	b.WriteString(helpStyle.Render("  r: refresh │ R: force refresh │ 2: costs │ 4: chat │ ?: help"))
	return b.String()
}

func severityBadge(severity string) string {
	switch severity {
	case "high":
		return errorStyle.Render("[high]")
	case "medium":
		return warnStyle.Render("[med] ")
	default:
		return infoStyle.Render("[low] ")
	}
}

// recommendationEntry flattens the three sections into one navigable list.
type recommendationEntry struct {
	section string
	rec     api.Recommendation
}

func (m Model) recommendationEntries() []recommendationEntry {
	if m.recs == nil {
		return nil
	}
	var entries []recommendationEntry
	for _, r := range m.recs.Insights {
		entries = append(entries, recommendationEntry{"Insights", r})
	}
	for _, r := range m.recs.Recommendations {
		entries = append(entries, recommendationEntry{"Recommendations", r})
	}
	for _, r := range m.recs.QuickWins {
		entries = append(entries, recommendationEntry{"Quick Wins", r})
	}
	return entries
}

func (m Model) openDetail() (Model, tea.Cmd, bool) {
	entries := m.recommendationEntries()
	if m.recCursor >= len(entries) {
		return m, nil, true
	}
	entry := entries[m.recCursor]

	t, ok, err := costs.DetailTable(entry.rec.Details)
	if err != nil {
		m.err = err
		return m, nil, true
	}
	if !ok {
		m.status = "no resource details for this recommendation"
		return m, nil, true
	}
	m.detail = t
	m.detailTitle = entry.rec.Title
	m.view = ViewDetail
	m.exportNote = ""
	return m, nil, true
}

func (m Model) viewRecommendations() string {
	if m.recsPanel.loading {
		return m.loadingPanel(m.recsPanel.seq)
	}
	if m.recsPanel.err != nil {
		return m.retryPanel("Could not load recommendations", m.recsPanel.err)
	}
	d := m.recs
	if d == nil {
		return infoStyle.Render("\n  No recommendations yet. Press r to load.\n")
	}
	if d.Error != "" {
		return m.retryPanel("Recommendations unavailable", fmt.Errorf("%s", d.Error))
	}

	var b strings.Builder
	if s := d.Summary; s != nil {
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"  %d insights │ %d recommendations │ %d quick wins │ potential savings $%.2f/mo\n\n",
			s.TotalInsights, s.TotalRecommendations, s.TotalQuickWins, d.TotalPotentialSavings)))
	}

	entries := m.recommendationEntries()
	lastSection := ""
	for i, entry := range entries {
		if entry.section != lastSection {
			b.WriteString(titleStyle.Render(entry.section) + "\n")
			lastSection = entry.section
		}
		cursor := "  "
		if i == m.recCursor {
			cursor = activeStyle.Render("▶ ")
		}
		fmt.Fprintf(&b, "%s%s %s", cursor, severityBadge(entry.rec.Severity), entry.rec.Title)
		if entry.rec.PotentialSavings > 0 {
			fmt.Fprintf(&b, " %s", activeStyle.Render(fmt.Sprintf("($%.2f/mo)", entry.rec.PotentialSavings)))
		}
		if len(entry.rec.Details) > 0 {
			b.WriteString(infoStyle.Render("  ▸ details"))
		}
		b.WriteString("\n")
		if i == m.recCursor && entry.rec.Description != "" {
			b.WriteString(infoStyle.Render("      "+entry.rec.Description) + "\n")
			if entry.rec.Action != "" {
				b.WriteString(infoStyle.Render("      Action: "+entry.rec.Action) + "\n")
			}
		}
	}

	b.WriteString(helpStyle.Render("\n  j/k: move │ enter: resource details │ S: sync metrics │ r: refresh"))
	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.detailTitle) + "\n\n")
	if m.detail != nil {
		b.WriteString(m.renderCostTable(m.detail))
	}
	if m.exportNote != "" {
		b.WriteString("\n" + infoStyle.Render("  "+m.exportNote))
	}
	b.WriteString(helpStyle.Render("\n  e: export csv │ esc: back"))
	return b.String()
}

// refreshTranscript re-renders the conversation into the viewport and
// scrolls to the latest message.
func (m *Model) refreshTranscript() {
	var b strings.Builder
	messages := m.sessions.Messages()
	if len(messages) == 0 && m.loadingLine == "" {
		b.WriteString(infoStyle.Render("Ask anything about your cloud spend.\n"))
		b.WriteString(infoStyle.Render(`Try "Which compartment grew the most last month?"`))
	}
	for _, msg := range messages {
		switch msg.Role {
		case session.RoleUser:
			b.WriteString(userBubbleStyle.Render("You: ") + msg.Content + "\n\n")
		case session.RoleError:
			b.WriteString(errorStyle.Render(msg.Content) + "\n\n")
		default:
			b.WriteString(assistantBubbleStyle.Render(msg.Content) + "\n\n")
		}
	}
	if m.loadingLine != "" {
		b.WriteString(m.spinner.View() + " " + infoStyle.Render(m.loadingLine) + "\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) viewChat() string {
	var b strings.Builder

	if m.sessions.State() == session.StateLoadingHistory {
		b.WriteString(fmt.Sprintf("  %s Loading conversation...\n", m.spinner.View()))
	}
	b.WriteString(boxStyle.Width(max(20, m.width-4)).Render(m.viewport.View()) + "\n")

	if m.loadingLine == "" {
		b.WriteString("\n  " + m.input.View() + "\n")
		b.WriteString(helpStyle.Render("  enter: send │ s: sessions │ esc: unfocus │ ?: help"))
	} else {
		b.WriteString(helpStyle.Render("  waiting for the agent, input is paused"))
	}
	return b.String()
}

func (m Model) viewSessions() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations") + "\n\n")

	if len(m.catalogue) == 0 {
		b.WriteString(infoStyle.Render("  No saved conversations yet. Press n to start one.\n"))
	}
	for i, s := range m.catalogue {
		cursor := "  "
		style := infoStyle
		if i == m.sessionCursor {
			cursor = "▶ "
			style = activeStyle
		}
		marker := " "
		if s.ID == m.sessions.ActiveID() {
			marker = "●"
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s %-40s %s",
			cursor, marker, truncate(s.Title, 40), relativeTime(s.UpdatedAt))) + "\n")
	}

	if m.confirmDelete != "" {
		b.WriteString("\n" + warnStyle.Render("  Delete this conversation? y to confirm, any other key to cancel"))
	} else {
		b.WriteString(helpStyle.Render("\n  enter: open │ n: new │ d: delete │ esc: back to chat"))
	}
	return b.String()
}

// relativeTime renders a catalogue timestamp the way people read it,
// "just now" through "3d ago", falling back to the date.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 02")
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
