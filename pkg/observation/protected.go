package observation

import (
	"fmt"

	"github.com/tidemark/tidemark/pkg/tabular"
)

// Species is one row of the protected species table.
type Species struct {
	Name     string `json:"name" yaml:"name"`
	Observed bool   `json:"observed" yaml:"observed"`
}

// ProtectedTable lists protected species and whether each was observed on
// site. A nil table means no protected species are known.
type ProtectedTable struct {
	species []Species
}

// NewProtectedTable builds a protected species table. Names must be unique.
func NewProtectedTable(species ...Species) (*ProtectedTable, error) {
	seen := make(map[string]bool, len(species))
	for _, s := range species {
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicated protected species %q", s.Name)
		}
		seen[s.Name] = true
	}
	return &ProtectedTable{species: append([]Species(nil), species...)}, nil
}

// ParseProtected builds a protected species table from a frame. The first
// column is the species name.
func ParseProtected(f *tabular.Frame) (*ProtectedTable, error) {
	if len(f.Header) == 0 {
		return nil, malformed(f.Name, "no columns")
	}
	observed := f.Column(ColumnObserved)
	if observed < 0 {
		return nil, malformed(f.Name, "missing column %q", ColumnObserved)
	}
	species := make([]Species, 0, len(f.Rows))
	for line, cells := range f.Rows {
		obs, err := parseBool(cells[observed])
		if err != nil {
			return nil, malformed(f.Name, "row %d: %s %q: %v", line+1, ColumnObserved, cells[observed], err)
		}
		species = append(species, Species{Name: cells[0], Observed: obs})
	}
	t, err := NewProtectedTable(species...)
	if err != nil {
		return nil, malformed(f.Name, "%v", err)
	}
	return t, nil
}

// LoadProtected reads a protected species table from disk.
func LoadProtected(path string) (*ProtectedTable, error) {
	f, err := tabular.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProtected(f)
}

// AnyObserved reports whether at least one protected species was observed.
func (t *ProtectedTable) AnyObserved() bool {
	if t == nil {
		return false
	}
	for _, s := range t.species {
		if s.Observed {
			return true
		}
	}
	return false
}

// Species returns the table rows in order.
func (t *ProtectedTable) Species() []Species {
	if t == nil {
		return nil
	}
	return append([]Species(nil), t.species...)
}
