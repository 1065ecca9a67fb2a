package scoretable

import (
	"context"

	"github.com/tidemark/tidemark/pkg/tabular"
)

// WeightingTable maps constraint names to score multipliers.
type WeightingTable struct {
	keys []string
	rows map[string]Row
}

// NewWeightingTable builds a weighting table. Keys must be unique.
func NewWeightingTable(name string, keys []string, rows []Row) (*WeightingTable, error) {
	if len(keys) != len(rows) {
		return nil, malformed(name, "%d keys for %d rows", len(keys), len(rows))
	}
	t := &WeightingTable{rows: make(map[string]Row, len(keys))}
	for i, k := range keys {
		if _, dup := t.rows[k]; dup {
			return nil, malformed(name, "duplicated %s %q", IndexWeighting, k)
		}
		t.keys = append(t.keys, k)
		t.rows[k] = rows[i]
	}
	return t, nil
}

// ParseWeighting builds a weighting table from a decoded frame.
func ParseWeighting(f *tabular.Frame) (*WeightingTable, error) {
	c, err := resolveColumns(f, IndexWeighting)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(f.Rows))
	rows := make([]Row, 0, len(f.Rows))
	for i, cells := range f.Rows {
		r, err := c.row(f.Name, cells, i+1)
		if err != nil {
			return nil, err
		}
		keys = append(keys, cells[c.index])
		rows = append(rows, r)
	}
	return NewWeightingTable(f.Name, keys, rows)
}

// LoadWeighting fetches and parses a weighting table.
func LoadWeighting(ctx context.Context, src Source, path string) (*WeightingTable, error) {
	f, err := Fetch(ctx, src, path)
	if err != nil {
		return nil, err
	}
	return ParseWeighting(f)
}

// Lookup returns the row for an exact constraint name.
func (t *WeightingTable) Lookup(constraint string) (Row, bool) {
	r, ok := t.rows[constraint]
	return r, ok
}

// Keys returns the constraint names in table order.
func (t *WeightingTable) Keys() []string {
	return append([]string(nil), t.keys...)
}
