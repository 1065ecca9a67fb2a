// Package tabular reads the reference-data tables Tidemark consumes. Tables
// arrive as CSV or XLSX files; both are flattened into a Frame of trimmed
// string cells so the typed loaders can share one parsing path.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies the on-disk encoding of a table.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName picks the format from a file name's extension.
// Anything that is not .xlsx is read as CSV.
func FormatFromName(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Frame is a header row plus data rows. Every row has len(Header) cells.
type Frame struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadFile reads a table from disk.
func ReadFile(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return Read(path, data)
}

// Read decodes a table whose format is inferred from name.
func Read(name string, data []byte) (*Frame, error) {
	switch FormatFromName(name) {
	case FormatXLSX:
		return readXLSX(name, data)
	default:
		return readCSV(name, data)
	}
}

func readCSV(name string, data []byte) (*Frame, error) {
	// Spreadsheet exports frequently carry a UTF-8 BOM.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv %s: %w", name, err)
	}
	return newFrame(name, records)
}

func readXLSX(name string, data []byte) (*Frame, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s has no sheets", name)
	}

	// Tables are one per workbook; the first sheet holds it.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], name, err)
	}
	return newFrame(name, rows)
}

func newFrame(name string, records [][]string) (*Frame, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("table %s is empty (no header row)", name)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	frame := &Frame{Name: name, Header: header}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, len(header))
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		frame.Rows = append(frame.Rows, row)
	}
	return frame, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Column returns the index of the named column, or -1.
// Matching ignores case and surrounding whitespace.
func (f *Frame) Column(name string) int {
	for i, h := range f.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// DuplicateColumn returns the first header name that appears more than once,
// or "" if every header is unique.
func (f *Frame) DuplicateColumn() string {
	seen := make(map[string]bool, len(f.Header))
	for _, h := range f.Header {
		key := strings.ToLower(h)
		if h == "" {
			continue
		}
		if seen[key] {
			return h
		}
		seen[key] = true
	}
	return ""
}

// Empty reports whether the table has no data rows.
func (f *Frame) Empty() bool {
	return len(f.Rows) == 0
}
