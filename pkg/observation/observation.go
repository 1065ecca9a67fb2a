// Package observation holds the site survey tables that feed receptor-level
// scoring: which receptors were observed (optionally per month) and which
// protected species were seen.
package observation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidemark/tidemark/pkg/scoretable"
	"github.com/tidemark/tidemark/pkg/tabular"
)

// ColumnObserved is the mandatory presence column of both tables.
const ColumnObserved = "observed"

// Months are the calendar months in order. The per-month observation column
// for a month m is "observed " + m.
var Months = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthColumn returns the observation column name for month index i (0-11).
func MonthColumn(i int) string {
	return ColumnObserved + " " + Months[i]
}

// Receptor is one row of the receptor observation table. A nil month means
// the month was not surveyed.
type Receptor struct {
	Name     string
	Observed bool
	Months   [12]*float64
}

// HasSeasonalData reports whether any month is populated.
func (r Receptor) HasSeasonalData() bool {
	for _, m := range r.Months {
		if m != nil {
			return true
		}
	}
	return false
}

// MonthFactor returns the multiplier for month i; unsurveyed months count as 1.
func (r Receptor) MonthFactor(i int) float64 {
	if r.Months[i] == nil {
		return 1
	}
	return *r.Months[i]
}

// ReceptorTable is the receptor observation table, indexed by receptor name.
type ReceptorTable struct {
	order []string
	rows  map[string]Receptor
}

// NewReceptorTable builds a table from receptors in order. Names must be unique.
func NewReceptorTable(receptors ...Receptor) (*ReceptorTable, error) {
	t := &ReceptorTable{rows: make(map[string]Receptor, len(receptors))}
	for _, r := range receptors {
		if _, dup := t.rows[r.Name]; dup {
			return nil, fmt.Errorf("duplicated receptor %q", r.Name)
		}
		t.order = append(t.order, r.Name)
		t.rows[r.Name] = r
	}
	return t, nil
}

// ParseReceptors builds a receptor observation table from a frame. The first
// column is the receptor name.
func ParseReceptors(f *tabular.Frame) (*ReceptorTable, error) {
	if dup := f.DuplicateColumn(); dup != "" {
		return nil, malformed(f.Name, "duplicated column %q", dup)
	}
	if len(f.Header) == 0 {
		return nil, malformed(f.Name, "no columns")
	}
	observed := f.Column(ColumnObserved)
	if observed < 0 {
		return nil, malformed(f.Name, "missing column %q", ColumnObserved)
	}
	var months [12]int
	for i := range Months {
		months[i] = f.Column(MonthColumn(i))
	}

	receptors := make([]Receptor, 0, len(f.Rows))
	for line, cells := range f.Rows {
		r := Receptor{Name: cells[0]}
		obs, err := parseBool(cells[observed])
		if err != nil {
			return nil, malformed(f.Name, "row %d: %s %q: %v", line+1, ColumnObserved, cells[observed], err)
		}
		r.Observed = obs
		for i, col := range months {
			if col < 0 {
				continue
			}
			v, err := parseMonth(cells[col])
			if err != nil {
				return nil, malformed(f.Name, "row %d: %s %q: %v", line+1, MonthColumn(i), cells[col], err)
			}
			r.Months[i] = v
		}
		receptors = append(receptors, r)
	}

	t, err := NewReceptorTable(receptors...)
	if err != nil {
		return nil, malformed(f.Name, "%v", err)
	}
	return t, nil
}

// LoadReceptors reads a receptor observation table from disk.
func LoadReceptors(path string) (*ReceptorTable, error) {
	f, err := tabular.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseReceptors(f)
}

// FetchReceptors reads a receptor observation table from a reference source.
func FetchReceptors(ctx context.Context, src scoretable.Source, path string) (*ReceptorTable, error) {
	f, err := scoretable.Fetch(ctx, src, path)
	if err != nil {
		return nil, err
	}
	return ParseReceptors(f)
}

// Receptors returns receptor names in table order.
func (t *ReceptorTable) Receptors() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// Lookup returns the observation row of a receptor.
func (t *ReceptorTable) Lookup(name string) (Receptor, bool) {
	if t == nil {
		return Receptor{}, false
	}
	r, ok := t.rows[name]
	return r, ok
}

// Len returns the number of receptors.
func (t *ReceptorTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// HasSeasonalData reports whether any receptor has a populated month.
func (t *ReceptorTable) HasSeasonalData() bool {
	if t == nil {
		return false
	}
	for _, name := range t.order {
		if t.rows[name].HasSeasonalData() {
			return true
		}
	}
	return false
}

// Missing returns the names in want that the table does not cover, sorted.
func (t *ReceptorTable) Missing(want []string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := t.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Filter returns a table restricted to names, in the order given. Names the
// table does not cover are ignored.
func (t *ReceptorTable) Filter(names []string) *ReceptorTable {
	out := &ReceptorTable{rows: make(map[string]Receptor, len(names))}
	for _, name := range names {
		r, ok := t.Lookup(name)
		if !ok {
			continue
		}
		if _, dup := out.rows[name]; dup {
			continue
		}
		out.order = append(out.order, name)
		out.rows[name] = r
	}
	return out
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

// parseMonth decodes a month cell: empty is unsurveyed, booleans become 1/0,
// anything else must be a number.
func parseMonth(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	var v float64
	switch strings.ToLower(s) {
	case "true":
		v = 1
	case "false":
		v = 0
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		v = f
	}
	return &v, nil
}

func malformed(table, format string, args ...any) error {
	return &scoretable.MalformedTableError{Table: table, Reason: fmt.Sprintf(format, args...)}
}
