// Package render formats backend payloads for plain terminal output, used
// by the one-shot subcommands. The interactive interface renders itself.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"cloudey/internal/api"
	"cloudey/internal/costs"
	"cloudey/internal/table"
)

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer. When pretty is false the output is a stable
// machine-friendly plain form.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

func (r *Renderer) heading(sb *strings.Builder, title string) {
	if r.pretty {
		sb.WriteString(color.CyanString(title) + "\n")
		sb.WriteString(strings.Repeat("─", 60) + "\n")
	} else {
		sb.WriteString(title + "\n")
	}
}

func (r *Renderer) severity(s string) string {
	if !r.pretty {
		return s
	}
	switch s {
	case "high":
		return color.RedString(s)
	case "medium":
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

// Table renders the visible page of a table model with aligned columns.
// Hidden columns are skipped.
func (r *Renderer) Table(m *table.Model) string {
	cols := make([]table.Column, 0, len(m.Columns))
	for _, c := range m.Columns {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}

	rows := m.Visible()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c.Title)
	}
	rendered := make([][]string, len(rows))
	for ri, row := range rows {
		rendered[ri] = make([]string, len(cols))
		for ci, c := range cols {
			v := c.FormatValue(row.Cells[c.Key])
			rendered[ri][ci] = v
			if len(v) > widths[ci] {
				widths[ci] = len(v)
			}
		}
	}

	var sb strings.Builder
	for i, c := range cols {
		title := fmt.Sprintf("%-*s", widths[i], c.Title)
		if r.pretty {
			title = color.New(color.Bold).Sprint(title)
		}
		sb.WriteString(title)
		if i < len(cols)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")
	for _, cells := range rendered {
		for i, v := range cells {
			fmt.Fprintf(&sb, "%-*s", widths[i], v)
			if i < len(cells)-1 {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}

	if total := m.PageCount(); total > 1 {
		fmt.Fprintf(&sb, "page %d of %d (%d rows)\n", m.Page(), total, m.FilteredCount())
	}
	return sb.String()
}

// Dashboard formats the dashboard payload. Missing cards are skipped
// rather than treated as an error.
func (r *Renderer) Dashboard(d *api.DashboardData) string {
	var sb strings.Builder
	r.heading(&sb, "Cost Dashboard")

	if ov := d.CostOverview; ov != nil {
		fmt.Fprintf(&sb, "  Total cost:   $%.2f %s (%s)\n", ov.TotalCost, ov.Currency, ov.Period.Label)
		fmt.Fprintf(&sb, "  %s so far:    $%.2f vs $%.2f last month (%+.1f%%)\n",
			ov.CurrentMonthName, ov.CurrentMTD, ov.SamePeriodLastMonth, ov.MTDChangePct)
		for _, c := range ov.TopCompartments {
			fmt.Fprintf(&sb, "    %-24s $%.2f\n", c.Name, c.Cost)
		}
	}

	if tr := d.CostTrend; tr != nil {
		sb.WriteString("\n")
		r.heading(&sb, "Recent Months")
		for _, m := range tr.CompleteMonths {
			fmt.Fprintf(&sb, "  %-12s $%.2f\n", m.Name, m.Total)
		}
		fmt.Fprintf(&sb, "  %-12s $%.2f (month to date)\n", tr.CurrentMonthName, tr.CurrentMTD)
	}

	if inv := d.ResourceInventory; inv != nil {
		sb.WriteString("\n")
		r.heading(&sb, "Resources")
		fmt.Fprintf(&sb, "  Instances: %d (%d running, %d stopped)\n",
			inv.TotalInstances, inv.RunningInstances, inv.StoppedInstances)
		fmt.Fprintf(&sb, "  Block volumes: %d  Compartments: %d\n", inv.BlockVolumes, inv.Compartments)
	}

	if opt := d.OptimizationSummary; opt != nil {
		sb.WriteString("\n")
		r.heading(&sb, "Optimization")
		fmt.Fprintf(&sb, "  %d recommendations (%d high, %d medium, %d low)\n",
			opt.TotalRecommendations, opt.HighSeverity, opt.MediumSeverity, opt.LowSeverity)
		fmt.Fprintf(&sb, "  Potential annual savings: $%.2f\n", opt.PotentialAnnualSavings)
		for _, rec := range opt.TopRecommendations {
			fmt.Fprintf(&sb, "  [%s] %s (%s)\n", r.severity(rec.Severity), rec.Title, rec.Savings)
		}
	}

	return sb.String()
}

// Costs formats the detailed costs payload as three tables.
func (r *Renderer) Costs(d *api.DetailedCosts) string {
	var sb strings.Builder

	r.heading(&sb, "Costs by Compartment")
	compartments := costs.CompartmentTable(d)
	if row, ok := costs.TotalsRow(d); ok {
		compartments.SetRows(append(compartments.Rows(), row))
	}
	sb.WriteString(r.Table(compartments))

	sb.WriteString("\n")
	r.heading(&sb, "Costs by Service")
	sb.WriteString(r.Table(costs.ServiceTable(d)))

	sb.WriteString("\n")
	r.heading(&sb, "Top Cost Drivers")
	sb.WriteString(r.Table(costs.DriverTable(d)))

	if d.Metadata.GeneratedAt != "" {
		fmt.Fprintf(&sb, "\ngenerated at %s\n", d.Metadata.GeneratedAt)
	}
	return sb.String()
}

// Recommendations formats the three recommendation sections.
func (r *Renderer) Recommendations(d *api.RecommendationsData) string {
	var sb strings.Builder

	if d.Error != "" {
		return fmt.Sprintf("recommendations unavailable: %s\n", d.Error)
	}

	if s := d.Summary; s != nil {
		r.heading(&sb, "Summary")
		fmt.Fprintf(&sb, "  %d insights, %d recommendations, %d quick wins\n",
			s.TotalInsights, s.TotalRecommendations, s.TotalQuickWins)
		fmt.Fprintf(&sb, "  Total potential savings: $%.2f\n\n", d.TotalPotentialSavings)
	}

	r.section(&sb, "Insights", d.Insights)
	r.section(&sb, "Recommendations", d.Recommendations)
	r.section(&sb, "Quick Wins", d.QuickWins)
	return sb.String()
}

func (r *Renderer) section(sb *strings.Builder, title string, recs []api.Recommendation) {
	if len(recs) == 0 {
		return
	}
	r.heading(sb, title)
	for _, rec := range recs {
		fmt.Fprintf(sb, "  [%s] %s", r.severity(rec.Severity), rec.Title)
		if rec.PotentialSavings > 0 {
			fmt.Fprintf(sb, " ($%.2f/mo)", rec.PotentialSavings)
		}
		sb.WriteString("\n")
		if rec.Description != "" {
			fmt.Fprintf(sb, "      %s\n", rec.Description)
		}
		if rec.Action != "" {
			fmt.Fprintf(sb, "      Action: %s\n", rec.Action)
		}
	}
	sb.WriteString("\n")
}

// Sync formats a completed refresh job.
func (r *Renderer) Sync(kind string, resp *api.SyncResponse) string {
	var sb strings.Builder
	if r.pretty {
		sb.WriteString(color.GreenString("✓") + " ")
	}
	fmt.Fprintf(&sb, "%s sync %s", kind, resp.Status)
	switch {
	case resp.Stats.TotalMetricsSaved > 0:
		fmt.Fprintf(&sb, ": %d metrics saved", resp.Stats.TotalMetricsSaved)
	case resp.Stats.TotalResourcesSaved > 0:
		fmt.Fprintf(&sb, ": %d resources saved", resp.Stats.TotalResourcesSaved)
	}
	sb.WriteString("\n")
	return sb.String()
}

// Health formats the backend health probe.
func (r *Renderer) Health(h *api.HealthResponse, err error) string {
	if err != nil {
		if r.pretty {
			return color.RedString("✗") + " backend unreachable: " + err.Error() + "\n"
		}
		return "backend unreachable: " + err.Error() + "\n"
	}
	if r.pretty {
		return color.GreenString("✓") + " backend " + h.Status + "\n"
	}
	return "backend " + h.Status + "\n"
}
