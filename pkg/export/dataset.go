package export

import "errors"

// ErrNoHeaders is returned when a dataset has no columns to render.
var ErrNoHeaders = errors.New("dataset has no headers")

// Dataset is a table keyed by header. Fills optionally holds a "#rrggbb" background per row;
// renderers without colour support ignore it.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Fills   []string
}

// Fill returns the background of row i or "" when none is set.
func (d Dataset) Fill(i int) string {
	if i < 0 || i >= len(d.Fills) {
		return ""
	}
	return d.Fills[i]
}

// Record returns row i in header order. Missing cells are empty.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Headers))
	if i < 0 || i >= len(d.Rows) {
		return record
	}
	for col, header := range d.Headers {
		record[col] = d.Rows[i][header]
	}
	return record
}
