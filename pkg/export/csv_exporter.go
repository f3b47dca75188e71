package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders datasets as RFC 4180 text.
type CSVExporter struct {
	crlf bool
}

// NewCSVExporter builds a CSV exporter writing LF line endings.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// WithCRLF switches line endings to CRLF for spreadsheet tools that expect them.
func (e *CSVExporter) WithCRLF() *CSVExporter {
	return &CSVExporter{crlf: true}
}

// Render writes the header line followed by every row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, ErrNoHeaders
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = e.crlf

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for i := range data.Rows {
		records = append(records, data.Record(i))
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
