// Package table implements the generic tabular data engine shared by the
// cost tables and the resource browser: sorting, text filtering, pagination,
// row expansion and CSV export, independent of the underlying dataset.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPageSize matches the resource browser's page length.
const DefaultPageSize = 50

// Row is a single table row. Cells are keyed by column key. Children holds
// the nested breakdown (services under a compartment, top resources under a
// service); nesting never goes deeper than two levels.
type Row struct {
	ID       string
	Cells    map[string]interface{}
	Children []Row
}

// Model holds the presentation state for one row collection.
type Model struct {
	Columns []Column

	rows       []Row
	filterKeys []string

	sortKey  string
	sortDesc bool
	filter   string
	page     int
	pageSize int
	expanded map[string]bool
}

// Option configures a Model.
type Option func(*Model)

// WithPageSize overrides the default page size.
func WithPageSize(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.pageSize = n
		}
	}
}

// WithFilterKeys sets the cell keys matched by Filter. Defaults to the
// textual name and compartment fields.
func WithFilterKeys(keys ...string) Option {
	return func(m *Model) { m.filterKeys = keys }
}

// New creates a table model over a row collection.
func New(columns []Column, rows []Row, opts ...Option) *Model {
	m := &Model{
		Columns:    columns,
		rows:       rows,
		filterKeys: []string{"name", "compartment"},
		page:       1,
		pageSize:   DefaultPageSize,
		expanded:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rows returns the full, unfiltered, unpaginated collection.
func (m *Model) Rows() []Row {
	return m.rows
}

// SetRows replaces the row collection, keeping sort/filter/expansion state.
func (m *Model) SetRows(rows []Row) {
	m.rows = rows
	m.clampPage()
}

// Sort sorts by a single column. Re-invoking on the same key toggles the
// direction; switching keys resets to ascending.
func (m *Model) Sort(key string) {
	if m.sortKey == key {
		m.sortDesc = !m.sortDesc
	} else {
		m.sortKey = key
		m.sortDesc = false
	}
}

// SortBy sets an explicit sort key and direction.
func (m *Model) SortBy(key string, desc bool) {
	m.sortKey = key
	m.sortDesc = desc
}

// SortKey returns the active sort key and direction.
func (m *Model) SortKey() (string, bool) {
	return m.sortKey, m.sortDesc
}

// Filter sets the search term. Matching is a case-insensitive substring test
// against the configured filter keys; an empty term matches everything.
// Filtering always resets to the first page.
func (m *Model) Filter(term string) {
	m.filter = term
	m.page = 1
}

// FilterTerm returns the active search term.
func (m *Model) FilterTerm() string {
	return m.filter
}

// filtered returns rows passing the active filter, in input order.
func (m *Model) filtered() []Row {
	if m.filter == "" {
		return m.rows
	}
	needle := strings.ToLower(m.filter)
	out := make([]Row, 0, len(m.rows))
	for _, row := range m.rows {
		if m.matches(row, needle) {
			out = append(out, row)
		}
	}
	return out
}

func (m *Model) matches(row Row, needle string) bool {
	for _, key := range m.filterKeys {
		val, ok := row.Cells[key]
		if !ok || val == nil {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprintf("%v", val)), needle) {
			return true
		}
	}
	return false
}

// sorted applies the active sort to a copy of the given rows. The sort is
// stable so equal keys keep their input order.
func (m *Model) sorted(rows []Row) []Row {
	if m.sortKey == "" {
		return rows
	}
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if m.sortDesc {
			return cellLess(out[j].Cells[m.sortKey], out[i].Cells[m.sortKey])
		}
		return cellLess(out[i].Cells[m.sortKey], out[j].Cells[m.sortKey])
	})
	return out
}

// cellLess orders numeric cells numerically and everything else as strings.
func cellLess(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// PageCount returns the number of pages for the filtered collection.
func (m *Model) PageCount() int {
	count := len(m.filtered())
	return (count + m.pageSize - 1) / m.pageSize
}

// Page returns the current page number.
func (m *Model) Page() int {
	return m.page
}

// SetPage moves to page n, clamped into the valid range. Out-of-range
// requests never fail.
func (m *Model) SetPage(n int) {
	m.page = n
	m.clampPage()
}

// NextPage advances one page, clamped.
func (m *Model) NextPage() { m.SetPage(m.page + 1) }

// PrevPage goes back one page, clamped.
func (m *Model) PrevPage() { m.SetPage(m.page - 1) }

func (m *Model) clampPage() {
	total := m.PageCount()
	if total < 1 {
		total = 1
	}
	if m.page < 1 {
		m.page = 1
	}
	if m.page > total {
		m.page = total
	}
}

// Visible returns the rows of the current page after filtering and sorting.
func (m *Model) Visible() []Row {
	rows := m.sorted(m.filtered())

	start := (m.page - 1) * m.pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + m.pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// FilteredCount returns the number of rows passing the active filter.
func (m *Model) FilteredCount() int {
	return len(m.filtered())
}

// ToggleExpand flips the expansion flag of a row. Children stay in memory
// either way; only visibility changes.
func (m *Model) ToggleExpand(rowID string) {
	m.expanded[rowID] = !m.expanded[rowID]
}

// IsExpanded reports whether a row is expanded.
func (m *Model) IsExpanded(rowID string) bool {
	return m.expanded[rowID]
}
