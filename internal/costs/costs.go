// Package costs adapts the backend cost payloads into table models. All
// numbers and trends arrive precomputed from the backend; this package only
// reshapes them for display, it never recalculates a cost or a trend.
package costs

import (
	"fmt"
	"strings"

	"cloudey/internal/api"
	"cloudey/internal/table"
)

// monthKey builds a stable cell key for the nth month column.
func monthKey(i int) string {
	return fmt.Sprintf("month_%d_cost", i)
}

// monthColumns derives one currency column per month label.
func monthColumns(meta api.CostMetadata) []table.Column {
	cols := make([]table.Column, len(meta.MonthNames))
	for i, name := range meta.MonthNames {
		cols[i] = table.Column{Key: monthKey(i), Title: name, Format: table.FormatCurrency}
	}
	return cols
}

func monthCells(cells map[string]interface{}, months []float64) {
	for i, v := range months {
		cells[monthKey(i)] = v
	}
}

// TrendLabel renders a backend trend as a compact arrow plus percentage.
// The direction and percentage are taken as-is from the payload.
func TrendLabel(t api.Trend) string {
	switch t.Direction {
	case "up":
		return fmt.Sprintf("▲ %.1f%%", t.ChangePct)
	case "down":
		return fmt.Sprintf("▼ %.1f%%", t.ChangePct)
	default:
		return "—"
	}
}

// CompartmentTable builds the compartment cost table. Each compartment row
// carries its service breakdown as children, and each service its top
// resources, so expansion never needs another network call.
func CompartmentTable(d *api.DetailedCosts) *table.Model {
	cols := []table.Column{
		{Key: "compartment_id", Title: "Compartment Id", Hidden: true},
		{Key: "compartment", Title: "Compartment"},
	}
	cols = append(cols, monthColumns(d.Metadata)...)
	cols = append(cols, table.Column{Key: "trend", Title: "Trend"})

	rows := make([]table.Row, 0, len(d.Compartments))
	for _, c := range d.Compartments {
		name := c.CompartmentName
		if c.IsDeleted {
			name += " (deleted)"
		}
		cells := map[string]interface{}{
			"compartment_id": c.CompartmentID,
			"compartment":    name,
			"trend":          TrendLabel(c.Trend),
		}
		monthCells(cells, c.Months)
		rows = append(rows, table.Row{
			ID:       c.CompartmentID,
			Cells:    cells,
			Children: serviceRows(c.CompartmentID, c.Services, d.Metadata),
		})
	}
	return table.New(cols, rows, table.WithFilterKeys("compartment"))
}

// ServiceTable builds the cross-compartment services summary table.
func ServiceTable(d *api.DetailedCosts) *table.Model {
	cols := []table.Column{
		{Key: "name", Title: "Service"},
	}
	cols = append(cols, monthColumns(d.Metadata)...)
	cols = append(cols,
		table.ColumnFor("percent_of_total"),
		table.Column{Key: "trend", Title: "Trend"},
	)

	rows := serviceRows("summary", d.ServicesSummary, d.Metadata)
	return table.New(cols, rows, table.WithFilterKeys("name"))
}

func serviceRows(parentID string, services []api.ServiceCost, meta api.CostMetadata) []table.Row {
	rows := make([]table.Row, 0, len(services))
	for _, s := range services {
		cells := map[string]interface{}{
			"name":             s.Service,
			"percent_of_total": s.PctOfTotal,
			"trend":            TrendLabel(s.Trend),
		}
		if s.PctOfCompartment != 0 {
			cells["percent_of_compartment"] = s.PctOfCompartment
		}
		monthCells(cells, s.Months)
		rows = append(rows, table.Row{
			ID:       parentID + "/" + s.Service,
			Cells:    cells,
			Children: resourceRows(s.TopResources),
		})
	}
	return rows
}

func resourceRows(resources []api.ResourceCost) []table.Row {
	rows := make([]table.Row, 0, len(resources))
	for _, r := range resources {
		cells := map[string]interface{}{
			"resource_id": r.ResourceID,
			"name":        r.ResourceName,
			"compartment": r.CompartmentName,
			"total_cost":  r.Total,
		}
		monthCells(cells, r.Months)
		rows = append(rows, table.Row{ID: r.ResourceID, Cells: cells})
	}
	return rows
}

// DriverTable builds the top cost drivers table.
func DriverTable(d *api.DetailedCosts) *table.Model {
	cols := []table.Column{
		{Key: "resource_id", Title: "Resource Id", Hidden: true},
		{Key: "name", Title: "Resource"},
		{Key: "service", Title: "Service"},
		{Key: "compartment", Title: "Compartment"},
		table.ColumnFor("cost"),
	}
	rows := make([]table.Row, 0, len(d.TopCostDrivers))
	for _, drv := range d.TopCostDrivers {
		rows = append(rows, table.Row{
			ID: drv.ResourceID,
			Cells: map[string]interface{}{
				"resource_id": drv.ResourceID,
				"name":        drv.ResourceName,
				"service":     drv.Service,
				"compartment": drv.CompartmentName,
				"cost":        drv.Cost,
			},
		})
	}
	return table.New(cols, rows)
}

// TotalsRow renders the aggregate row under the compartment table.
func TotalsRow(d *api.DetailedCosts) (table.Row, bool) {
	if d.Totals == nil {
		return table.Row{}, false
	}
	cells := map[string]interface{}{
		"compartment": "Total",
		"trend":       TrendLabel(d.Totals.Trend),
	}
	monthCells(cells, d.Totals.Months)
	return table.Row{ID: "totals", Cells: cells}, true
}

// hiddenKey reports whether a detail record key holds an identifier that
// should stay off the screen but remain in exports.
func hiddenKey(key string) bool {
	lower := strings.ToLower(key)
	return lower == "id" || strings.Contains(lower, "ocid") || strings.HasSuffix(lower, "_id")
}
