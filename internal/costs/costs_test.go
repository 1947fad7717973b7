package costs

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudey/internal/api"
	"cloudey/internal/table"
)

func sampleCosts() *api.DetailedCosts {
	return &api.DetailedCosts{
		Metadata: api.CostMetadata{MonthNames: []string{"June", "July", "August"}},
		Compartments: []api.CompartmentCost{
			{
				CompartmentName: "production",
				CompartmentID:   "ocid1.compartment.prod",
				Months:          []float64{100, 110, 120},
				Trend:           api.Trend{Direction: "up", ChangePct: 9.1},
				Services: []api.ServiceCost{
					{
						Service:          "Compute",
						Months:           []float64{80, 85, 90},
						Trend:            api.Trend{Direction: "up", ChangePct: 5.9},
						PctOfCompartment: 75.0,
						TopResources: []api.ResourceCost{
							{
								ResourceName:    "web-server",
								ResourceID:      "ocid1.instance.web",
								CompartmentName: "production",
								Months:          []float64{40, 42, 44},
								Total:           126,
							},
						},
					},
				},
			},
			{
				CompartmentName: "old-team",
				CompartmentID:   "ocid1.compartment.old",
				IsDeleted:       true,
				Months:          []float64{10, 5, 0},
				Trend:           api.Trend{Direction: "down", ChangePct: 100},
			},
		},
		ServicesSummary: []api.ServiceCost{
			{
				Service:    "Compute",
				Months:     []float64{90, 90, 90},
				Trend:      api.Trend{Direction: "flat"},
				PctOfTotal: 60.0,
			},
		},
		TopCostDrivers: []api.CostDriver{
			{
				ResourceName:    "web-server",
				ResourceID:      "ocid1.instance.web",
				Service:         "Compute",
				CompartmentName: "production",
				Cost:            126,
			},
		},
		Totals: &api.CostTotals{
			Months: []float64{110, 115, 120},
			Trend:  api.Trend{Direction: "up", ChangePct: 4.3},
		},
	}
}

func TestCompartmentTable(t *testing.T) {
	m := CompartmentTable(sampleCosts())

	rows := m.Visible()
	require.Len(t, rows, 2)
	assert.Equal(t, "production", rows[0].Cells["compartment"])
	assert.Equal(t, "old-team (deleted)", rows[1].Cells["compartment"])
	assert.Equal(t, 120.0, rows[0].Cells["month_2_cost"])
	assert.Equal(t, "▲ 9.1%", rows[0].Cells["trend"])

	require.Len(t, rows[0].Children, 1, "services ride along as children")
	svc := rows[0].Children[0]
	assert.Equal(t, "Compute", svc.Cells["name"])
	require.Len(t, svc.Children, 1)
	assert.Equal(t, "web-server", svc.Children[0].Cells["name"])
}

func TestCompartmentTableMonthColumns(t *testing.T) {
	m := CompartmentTable(sampleCosts())

	var titles []string
	for _, col := range m.Columns {
		titles = append(titles, col.Title)
	}
	assert.Equal(t, []string{"Compartment Id", "Compartment", "June", "July", "August", "Trend"}, titles)
	assert.True(t, m.Columns[0].Hidden, "compartment id stays off screen")
	assert.Equal(t, table.FormatCurrency, m.Columns[2].Format)
}

func TestCompartmentTableFilter(t *testing.T) {
	m := CompartmentTable(sampleCosts())

	m.Filter("prod")
	rows := m.Visible()
	require.Len(t, rows, 1)
	assert.Equal(t, "ocid1.compartment.prod", rows[0].ID)
}

func TestServiceTable(t *testing.T) {
	m := ServiceTable(sampleCosts())

	rows := m.Visible()
	require.Len(t, rows, 1)
	assert.Equal(t, "Compute", rows[0].Cells["name"])
	assert.Equal(t, 60.0, rows[0].Cells["percent_of_total"])
	assert.Equal(t, "—", rows[0].Cells["trend"], "flat trends render a dash")
}

func TestDriverTable(t *testing.T) {
	m := DriverTable(sampleCosts())

	rows := m.Visible()
	require.Len(t, rows, 1)
	assert.Equal(t, 126.0, rows[0].Cells["cost"])
	assert.True(t, m.Columns[0].Hidden)
}

func TestTotalsRow(t *testing.T) {
	row, ok := TotalsRow(sampleCosts())
	require.True(t, ok)
	assert.Equal(t, "Total", row.Cells["compartment"])
	assert.Equal(t, 120.0, row.Cells["month_2_cost"])

	_, ok = TotalsRow(&api.DetailedCosts{})
	assert.False(t, ok, "missing totals block is tolerated")
}

func TestTrendLabel(t *testing.T) {
	assert.Equal(t, "▲ 12.3%", TrendLabel(api.Trend{Direction: "up", ChangePct: 12.3}))
	assert.Equal(t, "▼ 4.0%", TrendLabel(api.Trend{Direction: "down", ChangePct: 4}))
	assert.Equal(t, "—", TrendLabel(api.Trend{Direction: "flat"}))
	assert.Equal(t, "—", TrendLabel(api.Trend{}))
}

func TestDetailTable(t *testing.T) {
	details := []byte(`[
		{"name": "idle-vm", "ocid": "ocid1.instance.idle", "vcpus": 4, "monthly_cost": 52.5},
		{"name": "old-vm", "ocid": "ocid1.instance.old", "vcpus": 2, "monthly_cost": 21}
	]`)

	m, ok, err := DetailTable(details)
	require.NoError(t, err)
	require.True(t, ok)

	var keys []string
	for _, col := range m.Columns {
		keys = append(keys, col.Key)
	}
	assert.Equal(t, []string{"name", "ocid", "vcpus", "monthly_cost"}, keys, "columns keep payload order")
	assert.True(t, m.Columns[1].Hidden, "ocid column is hidden on screen")
	assert.Equal(t, table.FormatCount, m.Columns[2].Format)
	assert.Equal(t, table.FormatCurrency, m.Columns[3].Format)

	rows := m.Visible()
	require.Len(t, rows, 2)
	assert.Equal(t, "ocid1.instance.idle", rows[0].ID)
}

func TestDetailTableExportKeepsIdentifiers(t *testing.T) {
	details := []byte(`[{"name": "idle-vm", "ocid": "ocid1.instance.idle", "monthly_cost": 52.5}]`)

	m, ok, err := DetailTable(details)
	require.NoError(t, err)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, m.ExportCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Name", "Ocid", "Monthly Cost"}, records[0])
	assert.Equal(t, "ocid1.instance.idle", records[1][1])
}

func TestDetailTableEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(`[]`)} {
		_, ok, err := DetailTable(raw)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestDetailTableMalformed(t *testing.T) {
	_, _, err := DetailTable([]byte(`{"not": "a list"}`))
	assert.Error(t, err)
}
