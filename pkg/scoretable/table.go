// Package scoretable holds the reference tables that drive impact scoring:
// pressure tables (interpolated by impact value), weighting tables (keyed by
// constraint) and receptor tables (keyed by species group). Tables are
// immutable once loaded and safe to share between goroutines.
package scoretable

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidemark/tidemark/pkg/tabular"
)

// Column names of the persisted table format.
const (
	ColumnScore                  = "score"
	ColumnGenericExplanation     = "generic explanation score"
	ColumnGeneralRecommendation  = "general recommendation"
	ColumnDetailedRecommendation = "detailed recommendation"
	ColumnUpperBound             = "upper bound"

	IndexPressure  = "function result"
	IndexWeighting = "weighting parameter"
	IndexReceptor  = "Subclass or group"
)

// Recommendations is the text triple attached to every table row.
type Recommendations struct {
	GenericExplanation     string `json:"generic_explanation"`
	GeneralRecommendation  string `json:"general_recommendation"`
	DetailedRecommendation string `json:"detailed_recommendation"`
}

// Row is one scored entry of a table.
type Row struct {
	Score           float64         `json:"score"`
	Recommendations Recommendations `json:"recommendations"`
}

// Source fetches the raw bytes of a reference table by path.
// Implementations live in internal/refdata.
type Source interface {
	ReadTable(ctx context.Context, path string) ([]byte, error)
}

// Fetch reads and decodes a table from a Source.
func Fetch(ctx context.Context, src Source, path string) (*tabular.Frame, error) {
	data, err := src.ReadTable(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching table %s: %w", path, err)
	}
	return tabular.Read(path, data)
}

// columns resolves the standard columns of a frame. The index column and
// score column are mandatory; recommendation columns are optional.
type columns struct {
	index, score, generic, general, detailed, upper int
}

func resolveColumns(f *tabular.Frame, index string) (columns, error) {
	if dup := f.DuplicateColumn(); dup != "" {
		return columns{}, malformed(f.Name, "duplicated column %q", dup)
	}
	c := columns{
		index:    f.Column(index),
		score:    f.Column(ColumnScore),
		generic:  f.Column(ColumnGenericExplanation),
		general:  f.Column(ColumnGeneralRecommendation),
		detailed: f.Column(ColumnDetailedRecommendation),
		upper:    f.Column(ColumnUpperBound),
	}
	if c.index < 0 {
		return columns{}, malformed(f.Name, "missing index column %q", index)
	}
	// A table with a header only is a valid empty table even without a
	// score column.
	if c.score < 0 && !f.Empty() {
		return columns{}, malformed(f.Name, "missing column %q", ColumnScore)
	}
	return c, nil
}

func (c columns) row(table string, cells []string, line int) (Row, error) {
	score, err := parseFloat(cells[c.score])
	if err != nil {
		return Row{}, malformed(table, "row %d: score %q: %v", line, cells[c.score], err)
	}
	return Row{
		Score: score,
		Recommendations: Recommendations{
			GenericExplanation:     cell(cells, c.generic),
			GeneralRecommendation:  cell(cells, c.general),
			DetailedRecommendation: cell(cells, c.detailed),
		},
	}, nil
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

// MapSource serves tables from memory, keyed by path.
type MapSource map[string][]byte

func (m MapSource) ReadTable(_ context.Context, path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("table %s not found", path)
	}
	return data, nil
}
