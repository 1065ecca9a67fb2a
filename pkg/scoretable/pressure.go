package scoretable

import (
	"context"
	"math"

	"github.com/tidemark/tidemark/pkg/tabular"
	"gonum.org/v1/gonum/interp"
)

// PressureTable maps impact-value breakpoints to pressure scores.
// Breakpoints are strictly increasing and there are at least two of them.
type PressureTable struct {
	breakpoints []float64
	rows        []Row
	fit         interp.PiecewiseLinear
}

// NewPressureTable builds a pressure table from parallel breakpoint and row
// slices. name is only used in error messages.
func NewPressureTable(name string, breakpoints []float64, rows []Row) (*PressureTable, error) {
	if len(breakpoints) != len(rows) {
		return nil, malformed(name, "%d breakpoints for %d rows", len(breakpoints), len(rows))
	}
	if len(breakpoints) < 2 {
		return nil, malformed(name, "at least two breakpoints are required, got %d", len(breakpoints))
	}
	for i, b := range breakpoints {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, malformed(name, "breakpoint %d is not finite", i)
		}
		if i > 0 && b <= breakpoints[i-1] {
			return nil, malformed(name, "breakpoints must be strictly increasing (%g after %g)", b, breakpoints[i-1])
		}
	}

	t := &PressureTable{
		breakpoints: append([]float64(nil), breakpoints...),
		rows:        append([]Row(nil), rows...),
	}

	scores := make([]float64, len(rows))
	for i, r := range rows {
		scores[i] = r.Score
	}
	// Fit panics on unsorted input; the loop above has ruled that out.
	if err := t.fit.Fit(t.breakpoints, scores); err != nil {
		return nil, malformed(name, "fitting interpolant: %v", err)
	}
	return t, nil
}

// ParsePressure builds a pressure table from a decoded frame.
func ParsePressure(f *tabular.Frame) (*PressureTable, error) {
	c, err := resolveColumns(f, IndexPressure)
	if err != nil {
		return nil, err
	}

	breakpoints := make([]float64, 0, len(f.Rows))
	rows := make([]Row, 0, len(f.Rows))
	for i, cells := range f.Rows {
		b, err := parseFloat(cells[c.index])
		if err != nil {
			return nil, malformed(f.Name, "row %d: %s %q: %v", i+1, IndexPressure, cells[c.index], err)
		}
		r, err := c.row(f.Name, cells, i+1)
		if err != nil {
			return nil, err
		}
		breakpoints = append(breakpoints, b)
		rows = append(rows, r)
	}
	return NewPressureTable(f.Name, breakpoints, rows)
}

// LoadPressure fetches and parses a pressure table.
func LoadPressure(ctx context.Context, src Source, path string) (*PressureTable, error) {
	f, err := Fetch(ctx, src, path)
	if err != nil {
		return nil, err
	}
	return ParsePressure(f)
}

// Domain returns the smallest and largest breakpoint.
func (t *PressureTable) Domain() (lo, hi float64) {
	return t.breakpoints[0], t.breakpoints[len(t.breakpoints)-1]
}

// Breakpoints returns a copy of the breakpoints in table order.
func (t *PressureTable) Breakpoints() []float64 {
	return append([]float64(nil), t.breakpoints...)
}

// Interpolate returns the linearly interpolated score at v. Values outside
// the breakpoint range are rejected rather than extrapolated.
func (t *PressureTable) Interpolate(v float64) (float64, error) {
	lo, hi := t.Domain()
	if math.IsNaN(v) || v < lo || v > hi {
		return 0, &OutOfDomainError{Value: v, Min: lo, Max: hi}
	}
	return t.fit.Predict(v), nil
}

// Nearest returns the row whose breakpoint is closest to x. Ties go to the
// earlier row.
func (t *PressureTable) Nearest(x float64) Row {
	best := 0
	bestDiff := math.Abs(t.breakpoints[0] - x)
	for i := 1; i < len(t.breakpoints); i++ {
		if d := math.Abs(t.breakpoints[i] - x); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return t.rows[best]
}
