package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"cloudey/internal/costs"
	"cloudey/internal/table"
)

var costsTabNames = []string{"Compartments", "Services", "Top Drivers"}

var costsExportHints = []string{"compartment_costs", "service_costs", "cost_drivers"}

// rebuildCostTables recreates the three cost tables from a fresh payload.
// Sort, filter and expansion state intentionally reset with new data.
func (m *Model) rebuildCostTables() {
	m.costsTables = []*table.Model{
		costs.CompartmentTable(m.costs),
		costs.ServiceTable(m.costs),
		costs.DriverTable(m.costs),
	}
	m.cursor = 0
	m.searching = false
	m.search.SetValue("")
	m.exportNote = ""
}

func (m *Model) activeCostTable() *table.Model {
	if m.costsTab < len(m.costsTables) {
		return m.costsTables[m.costsTab]
	}
	return nil
}

// costSortKey picks the cost column of the active table, the most recent
// month for the breakdown tables and the single cost column for drivers.
func (m *Model) costSortKey() string {
	if m.costsTab == 2 {
		return "cost"
	}
	if m.costs == nil || len(m.costs.Metadata.MonthNames) == 0 {
		return ""
	}
	return fmt.Sprintf("month_%d_cost", len(m.costs.Metadata.MonthNames)-1)
}

func (m Model) handleCostsKey(key string) (Model, tea.Cmd, bool) {
	if m.searching {
		if key == "enter" {
			m.searching = false
			m.search.Blur()
			return m, nil, true
		}
		return m, nil, false
	}

	t := m.activeCostTable()

	switch key {
	case "r":
		return m, m.loadCosts(false), true
	case "R":
		return m, m.loadCosts(true), true
	}
	if t == nil {
		return m, nil, false
	}

	switch key {
	case "tab":
		m.costsTab = (m.costsTab + 1) % len(m.costsTables)
		m.cursor = 0
		return m, nil, true
	case "j", "down":
		if m.cursor < len(t.Visible())-1 {
			m.cursor++
		}
		return m, nil, true
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil, true
	case ">", "l", "right":
		t.NextPage()
		m.cursor = 0
		return m, nil, true
	case "<", "h", "left":
		t.PrevPage()
		m.cursor = 0
		return m, nil, true
	case "o":
		if sortKey := m.costSortKey(); sortKey != "" {
			t.Sort(sortKey)
		}
		return m, nil, true
	case "n":
		t.Sort(m.nameKey())
		return m, nil, true
	case "/":
		m.searching = true
		m.search.SetValue(t.FilterTerm())
		m.search.Focus()
		return m, nil, true
	case "enter":
		rows := t.Visible()
		if m.cursor < len(rows) && len(rows[m.cursor].Children) > 0 {
			t.ToggleExpand(rows[m.cursor].ID)
		}
		return m, nil, true
	case "e":
		return m, m.exportTable(t, costsExportHints[m.costsTab]), true
	}
	return m, nil, false
}

func (m *Model) nameKey() string {
	if m.costsTab == 0 {
		return "compartment"
	}
	return "name"
}

func (m Model) viewCosts() string {
	if m.costsPanel.loading {
		return m.loadingPanel(m.costsPanel.seq)
	}
	if m.costsPanel.err != nil {
		return m.retryPanel("Could not load cost data", m.costsPanel.err)
	}
	t := m.activeCostTable()
	if t == nil {
		return infoStyle.Render("\n  No cost data yet. Press r to load.\n")
	}

	var b strings.Builder

	var tabs []string
	for i, name := range costsTabNames {
		style := tabStyle
		if i == m.costsTab {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(name))
	}
	b.WriteString("  " + strings.Join(tabs, "│") + "\n\n")

	if m.searching || t.FilterTerm() != "" {
		b.WriteString("  filter: " + m.search.View() + "\n\n")
	}

	b.WriteString(m.renderCostTable(t))

	if m.costsTab == 0 && m.costs != nil {
		if row, ok := costs.TotalsRow(m.costs); ok {
			b.WriteString(m.renderTotals(t, row))
		}
	}

	if total := t.PageCount(); total > 1 {
		fmt.Fprintf(&b, "\n%s", infoStyle.Render(
			fmt.Sprintf("  page %d of %d (%d rows)", t.Page(), total, t.FilteredCount())))
	}
	if m.exportNote != "" {
		b.WriteString("\n" + infoStyle.Render("  "+m.exportNote))
	}

	b.WriteString(helpStyle.Render(
		"\n  tab: switch table │ o: sort by cost │ /: filter │ enter: expand │ e: export │ R: force refresh"))
	return b.String()
}

// renderCostTable draws the visible page with aligned columns, nesting
// expanded children under their parent row.
func (m Model) renderCostTable(t *table.Model) string {
	cols := visibleColumns(t)
	rows := t.Visible()

	widths := columnWidths(cols, rows)

	var b strings.Builder
	b.WriteString("  ")
	for i, c := range cols {
		fmt.Fprintf(&b, "%-*s", widths[i]+2, c.Title)
	}
	b.WriteString("\n")

	for ri, row := range rows {
		cursor := "  "
		if ri == m.cursor {
			cursor = activeStyle.Render("▶ ")
		}
		b.WriteString(cursor)
		for ci, c := range cols {
			fmt.Fprintf(&b, "%-*s", widths[ci]+2, c.FormatValue(row.Cells[c.Key]))
		}
		if len(row.Children) > 0 {
			if t.IsExpanded(row.ID) {
				b.WriteString("▾")
			} else {
				b.WriteString("▸")
			}
		}
		b.WriteString("\n")

		if t.IsExpanded(row.ID) {
			for _, child := range row.Children {
				b.WriteString("      ")
				fmt.Fprintf(&b, "%v", child.Cells["name"])
				if cost, ok := child.Cells["total_cost"]; ok {
					fmt.Fprintf(&b, "  $%v", table.RawValue(cost))
				}
				if trend, ok := child.Cells["trend"]; ok {
					fmt.Fprintf(&b, "  %v", trend)
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func (m Model) renderTotals(t *table.Model, row table.Row) string {
	cols := visibleColumns(t)
	widths := columnWidths(cols, t.Visible())

	var b strings.Builder
	b.WriteString("  ")
	for ci, c := range cols {
		v := c.FormatValue(row.Cells[c.Key])
		if row.Cells[c.Key] == nil {
			v = ""
		}
		fmt.Fprintf(&b, "%-*s", widths[ci]+2, v)
	}
	b.WriteString("\n")
	return activeStyle.Render(b.String())
}

func visibleColumns(t *table.Model) []table.Column {
	cols := make([]table.Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}
	return cols
}

func columnWidths(cols []table.Column, rows []table.Row) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c.Title)
		for _, row := range rows {
			if n := len(c.FormatValue(row.Cells[c.Key])); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

// loadingMessages keeps long full-page loads friendly. The pick is keyed on
// the request sequence so it stays put for one load and changes for the next.
var loadingMessages = []string{
	"Counting your pennies",
	"Interrogating the cloud bill",
	"Untangling compartments",
	"Summoning the spreadsheets",
	"Polishing the numbers",
}

func (m Model) loadingPanel(seq int) string {
	return fmt.Sprintf("\n  %s %s...\n", m.spinner.View(), loadingMessages[seq%len(loadingMessages)])
}

func (m Model) retryPanel(title string, err error) string {
	return "\n" + errorStyle.Render("  "+title) + "\n" +
		infoStyle.Render("  "+err.Error()) + "\n" +
		helpStyle.Render("  press r to retry, R to force a refresh")
}

func exportHint(title string) string {
	hint := strings.ToLower(strings.TrimSpace(title))
	hint = strings.Map(func(r rune) rune {
		if r == ' ' {
			return '_'
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1
	}, hint)
	if hint == "" {
		hint = "resources"
	}
	return hint
}
