package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudey/internal/api"
	"cloudey/internal/table"
)

func plainTable() *table.Model {
	cols := []table.Column{
		{Key: "id", Title: "Id", Hidden: true},
		{Key: "name", Title: "Name"},
		table.ColumnFor("monthly_cost"),
	}
	rows := []table.Row{
		{ID: "a", Cells: map[string]interface{}{"id": "a", "name": "web-server", "monthly_cost": 12.5}},
		{ID: "b", Cells: map[string]interface{}{"id": "b", "name": "db", "monthly_cost": 99.0}},
	}
	return table.New(cols, rows)
}

func TestTableSkipsHiddenColumns(t *testing.T) {
	out := New(false).Table(plainTable())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.NotContains(t, lines[0], "Id")
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[1], "$12.50")
}

func TestTablePageFooter(t *testing.T) {
	cols := []table.Column{{Key: "name", Title: "Name"}}
	rows := make([]table.Row, 0, 60)
	for i := 0; i < 60; i++ {
		rows = append(rows, table.Row{ID: "r", Cells: map[string]interface{}{"name": "x"}})
	}
	out := New(false).Table(table.New(cols, rows))
	assert.Contains(t, out, "page 1 of 2 (60 rows)")
}

func TestDashboardSkipsMissingCards(t *testing.T) {
	out := New(false).Dashboard(&api.DashboardData{
		ResourceInventory: &api.ResourceInventory{TotalInstances: 5, RunningInstances: 3, StoppedInstances: 2},
	})

	assert.Contains(t, out, "Instances: 5 (3 running, 2 stopped)")
	assert.NotContains(t, out, "Total cost")
	assert.NotContains(t, out, "Optimization")
}

func TestRecommendationsError(t *testing.T) {
	out := New(false).Recommendations(&api.RecommendationsData{Error: "agent timed out"})
	assert.Equal(t, "recommendations unavailable: agent timed out\n", out)
}

func TestRecommendationsSections(t *testing.T) {
	out := New(false).Recommendations(&api.RecommendationsData{
		Summary:               &api.RecommendationsSummary{TotalInsights: 1, TotalRecommendations: 1},
		TotalPotentialSavings: 420.5,
		Insights:              []api.Recommendation{{Title: "Spend is rising", Severity: "low"}},
		Recommendations: []api.Recommendation{{
			Title:            "Stop idle instances",
			Severity:         "high",
			PotentialSavings: 52.5,
			Action:           "Review the attached list",
		}},
	})

	assert.Contains(t, out, "Total potential savings: $420.50")
	assert.Contains(t, out, "[low] Spend is rising")
	assert.Contains(t, out, "[high] Stop idle instances ($52.50/mo)")
	assert.Contains(t, out, "Action: Review the attached list")
	assert.NotContains(t, out, "Quick Wins", "empty sections are skipped")
}

func TestSync(t *testing.T) {
	out := New(false).Sync("metrics", &api.SyncResponse{
		Status: "completed",
		Stats:  api.SyncStats{TotalMetricsSaved: 1200},
	})
	assert.Equal(t, "metrics sync completed: 1200 metrics saved\n", out)
}

func TestHealth(t *testing.T) {
	r := New(false)
	assert.Equal(t, "backend ok\n", r.Health(&api.HealthResponse{Status: "ok"}, nil))
	assert.Contains(t, r.Health(nil, assert.AnError), "backend unreachable")
}
