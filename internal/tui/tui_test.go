package tui

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudey/internal/api"
)

func TestPanelStaleGuard(t *testing.T) {
	var p panel

	first := p.start()
	second := p.start()

	assert.True(t, p.stale(first), "superseded request is discarded")
	assert.False(t, p.stale(second))

	p.finish(nil)
	assert.False(t, p.loading)
}

func TestPanelRetryResetsError(t *testing.T) {
	var p panel

	seq := p.start()
	p.finish(assert.AnError)
	require.Error(t, p.err)

	next := p.start()
	assert.NoError(t, p.err)
	assert.True(t, p.stale(seq))
	assert.False(t, p.stale(next))
}

func TestRecommendationEntriesFlattenInSectionOrder(t *testing.T) {
	m := Model{recs: &api.RecommendationsData{
		Insights:        []api.Recommendation{{Title: "a"}},
		Recommendations: []api.Recommendation{{Title: "b"}, {Title: "c"}},
		QuickWins:       []api.Recommendation{{Title: "d"}},
	}}

	entries := m.recommendationEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, "Insights", entries[0].section)
	assert.Equal(t, "b", entries[1].rec.Title)
	assert.Equal(t, "Quick Wins", entries[3].section)
}

func TestRecommendationEntriesNilData(t *testing.T) {
	m := Model{}
	assert.Empty(t, m.recommendationEntries())
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", relativeTime(now.Add(-30*time.Second)))
	assert.Equal(t, "5m ago", relativeTime(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", relativeTime(now.Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", relativeTime(now.Add(-49*time.Hour)))
	assert.Equal(t, "", relativeTime(time.Time{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a very ...", truncate("a very long conversation title", 10))

	// Multibyte titles must not be cut mid-rune.
	got := truncate("überwachung der ausgaben im märz", 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "überwac...", got)
}

func TestExportHint(t *testing.T) {
	assert.Equal(t, "stop_idle_instances", exportHint("Stop Idle Instances"))
	assert.Equal(t, "resources", exportHint("⚠⚠⚠"))
}

func TestProgressLineCycles(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < len(progressLines)*2; i++ {
		seen[progressLine(i)] = true
	}
	assert.Len(t, seen, len(progressLines))
}

func TestConfigFormCompletion(t *testing.T) {
	f := newConfigForm()
	assert.False(t, f.complete())

	values := []string{
		"dev@example.com",
		"ocid1.tenancy.oc1..abc",
		"ocid1.user.oc1..def",
		"aa:bb:cc",
		"eu-frankfurt-1",
		"/home/dev/.oci/key.pem",
	}
	for i, v := range values {
		f.fields[i].SetValue(v)
	}
	require.True(t, f.complete())

	cfg := f.config()
	assert.Equal(t, "dev@example.com", cfg.Email)
	assert.Equal(t, "eu-frankfurt-1", cfg.Region)
	assert.Equal(t, "/home/dev/.oci/key.pem", cfg.PrivateKeyPath)
}

func TestConfigUploadFailureKeepsForm(t *testing.T) {
	m := Model{view: ViewConfig, form: newConfigForm(), formBusy: true}

	updated, _ := m.Update(configUploadMsg{err: assert.AnError})
	got := updated.(Model)

	assert.Equal(t, ViewConfig, got.view, "failed upload keeps the form on screen")
	assert.False(t, got.formBusy)
	assert.Contains(t, got.formNote, "upload failed")
}

func TestConfigUploadSuccessLeavesForm(t *testing.T) {
	m := Model{view: ViewConfig, form: newConfigForm(), formBusy: true, formNote: "uploading credentials..."}

	updated, _ := m.Update(configUploadMsg{})
	got := updated.(Model)

	assert.Equal(t, ViewDashboard, got.view)
	assert.False(t, got.formBusy)
	assert.Empty(t, got.formNote)
	assert.Contains(t, got.status, "credentials saved")
}

func TestCostSortKey(t *testing.T) {
	m := Model{costs: &api.DetailedCosts{
		Metadata: api.CostMetadata{MonthNames: []string{"June", "July", "August"}},
	}}

	assert.Equal(t, "month_2_cost", m.costSortKey())

	m.costsTab = 2
	assert.Equal(t, "cost", m.costSortKey())

	m.costsTab = 0
	m.costs = nil
	assert.Equal(t, "", m.costSortKey())
}
