package scoretable

import (
	"context"

	"github.com/tidemark/tidemark/pkg/tabular"
)

// ReceptorScore is the sensitivity of one receptor. It is either a Scalar or
// a Banded score; the variant is fixed when the table is loaded.
type ReceptorScore interface {
	receptorScore()
}

// Scalar is a fixed receptor sensitivity.
type Scalar struct {
	Row
}

func (Scalar) receptorScore() {}

// Band is one impact-value band of a banded receptor score.
type Band struct {
	UpperBound float64 `json:"upper_bound"`
	Row
}

// Banded is a receptor sensitivity that depends on the raw impact value.
// Bands are kept in table order.
type Banded struct {
	Bands []Band
}

func (Banded) receptorScore() {}

// ReceptorTable maps receptor (species group) names to sensitivity scores.
type ReceptorTable struct {
	receptors []string
	scores    map[string]ReceptorScore
}

// ReceptorEntry is one receptor and its score, used to build a table.
type ReceptorEntry struct {
	Name  string
	Score ReceptorScore
}

// NewReceptorTable builds a receptor table from entries in table order.
func NewReceptorTable(name string, entries []ReceptorEntry) (*ReceptorTable, error) {
	t := &ReceptorTable{scores: make(map[string]ReceptorScore, len(entries))}
	for _, e := range entries {
		if _, dup := t.scores[e.Name]; dup {
			return nil, malformed(name, "duplicated receptor %q", e.Name)
		}
		if b, ok := e.Score.(Banded); ok && len(b.Bands) == 0 {
			return nil, malformed(name, "receptor %q has no bands", e.Name)
		}
		t.receptors = append(t.receptors, e.Name)
		t.scores[e.Name] = e.Score
	}
	return t, nil
}

// ParseReceptor builds a receptor table from a decoded frame. A receptor
// listed on a single row is a Scalar; one listed on several rows is Banded
// and every one of its rows needs an upper bound.
func ParseReceptor(f *tabular.Frame) (*ReceptorTable, error) {
	c, err := resolveColumns(f, IndexReceptor)
	if err != nil {
		return nil, err
	}

	type group struct {
		rows  []Row
		lines []int
		cells [][]string
	}
	var order []string
	groups := make(map[string]*group)

	for i, cells := range f.Rows {
		r, err := c.row(f.Name, cells, i+1)
		if err != nil {
			return nil, err
		}
		key := cells[c.index]
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, r)
		g.lines = append(g.lines, i+1)
		g.cells = append(g.cells, cells)
	}

	entries := make([]ReceptorEntry, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if len(g.rows) == 1 {
			entries = append(entries, ReceptorEntry{Name: key, Score: Scalar{Row: g.rows[0]}})
			continue
		}
		if c.upper < 0 {
			return nil, malformed(f.Name, "receptor %q has several rows but no %q column", key, ColumnUpperBound)
		}
		bands := make([]Band, len(g.rows))
		for i, r := range g.rows {
			ub, err := parseFloat(g.cells[i][c.upper])
			if err != nil {
				return nil, malformed(f.Name, "row %d: %s %q: %v", g.lines[i], ColumnUpperBound, g.cells[i][c.upper], err)
			}
			bands[i] = Band{UpperBound: ub, Row: r}
		}
		entries = append(entries, ReceptorEntry{Name: key, Score: Banded{Bands: bands}})
	}
	return NewReceptorTable(f.Name, entries)
}

// LoadReceptor fetches and parses a receptor table.
func LoadReceptor(ctx context.Context, src Source, path string) (*ReceptorTable, error) {
	f, err := Fetch(ctx, src, path)
	if err != nil {
		return nil, err
	}
	return ParseReceptor(f)
}

// IsEmpty reports whether the table lists no receptors. An empty table
// disables receptor-level scoring.
func (t *ReceptorTable) IsEmpty() bool {
	return t == nil || len(t.receptors) == 0
}

// Receptors returns the receptor names in table order.
func (t *ReceptorTable) Receptors() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.receptors...)
}

// Lookup returns the score variant of a receptor.
func (t *ReceptorTable) Lookup(receptor string) (ReceptorScore, bool) {
	if t == nil {
		return nil, false
	}
	s, ok := t.scores[receptor]
	return s, ok
}

// LookupBanded walks the receptor's bands in order and returns the score of
// the first band whose upper bound exceeds impact. A Scalar receptor
// resolves to its fixed score.
func (t *ReceptorTable) LookupBanded(receptor string, impact float64) (float64, error) {
	s, ok := t.Lookup(receptor)
	if !ok {
		return 0, &NoMatchingBandError{Receptor: receptor, Impact: impact}
	}
	switch v := s.(type) {
	case Scalar:
		return v.Score, nil
	case Banded:
		for _, b := range v.Bands {
			if impact < b.UpperBound {
				return b.Score, nil
			}
		}
	}
	return 0, &NoMatchingBandError{Receptor: receptor, Impact: impact}
}
