// Package table holds the immutable grid decoded from an uploaded spreadsheet.
package table

import (
	"math"
	"strconv"
	"strings"
)

// Table is a rectangular, read-only grid of raw cell values.
type Table struct {
	cells [][]string
	cols  int
}

// New builds a Table from rows, padding ragged rows with empty cells to the widest row.
// The input slices are copied.
func New(rows [][]string) *Table {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, cols)
		copy(row, r)
		cells[i] = row
	}
	return &Table{cells: cells, cols: cols}
}

// Rows reports the number of rows.
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	return len(t.cells)
}

// Columns reports the number of columns.
func (t *Table) Columns() int {
	if t == nil {
		return 0
	}
	return t.cols
}

// Cell returns the raw value at row, col or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.cells) || col < 0 || col >= t.cols {
		return ""
	}
	return t.cells[row][col]
}

// Int64 coerces a raw cell to an integer. Integers parse directly; finite floats are
// truncated toward zero when they fit int64. Blank and non-numeric cells report false.
func Int64(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	// Go literal forms (digit separators, hex floats) are not spreadsheet numbers.
	if s == "" || strings.ContainsAny(s, "_xX") {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
