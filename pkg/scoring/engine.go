package scoring

import (
	"fmt"

	"github.com/tidemark/tidemark/pkg/impact"
	"github.com/tidemark/tidemark/pkg/observation"
	"github.com/tidemark/tidemark/pkg/scoretable"
)

// Tables are the reference tables of one impact function. Pressure is
// required; a nil Weighting table never matches a constraint and a nil or
// empty Receptor table disables receptor-level scoring.
type Tables struct {
	Pressure  *scoretable.PressureTable
	Weighting *scoretable.WeightingTable
	Receptor  *scoretable.ReceptorTable
}

// Options carry the site data an engine is bound to.
type Options struct {
	Protected  *observation.ProtectedTable
	Receptors  *observation.ReceptorTable // nil when no survey was made
	Constraint string                     // weighting key, "" for none
	// Calibration overrides Defaults() when non-nil.
	Calibration *Calibration
}

// Engine scores impact values of one function. Engines are immutable after
// construction and safe for concurrent use.
type Engine struct {
	def        impact.Definition
	tables     Tables
	protected  *observation.ProtectedTable
	receptors  *observation.ReceptorTable // filtered to the receptor table, nil when unused
	constraint string
	cal        Calibration
}

// NewEngine binds a function definition to its tables and site data.
// Receptor observations must cover every receptor of the receptor table;
// observations for other receptors are dropped.
func NewEngine(def impact.Definition, tables Tables, opts Options) (*Engine, error) {
	if tables.Pressure == nil {
		return nil, fmt.Errorf("%s: pressure table is required", def.Name)
	}

	e := &Engine{
		def:        def,
		tables:     tables,
		protected:  opts.Protected,
		constraint: opts.Constraint,
		cal:        Defaults(),
	}
	if opts.Calibration != nil {
		e.cal = *opts.Calibration
	}

	if opts.Receptors != nil && !tables.Receptor.IsEmpty() {
		needed := tables.Receptor.Receptors()
		if missing := opts.Receptors.Missing(needed); len(missing) > 0 {
			return nil, &MissingReceptorDataError{Function: def.Name, Missing: missing}
		}
		e.receptors = opts.Receptors.Filter(needed)
	}
	return e, nil
}

// Definition returns the function the engine scores.
func (e *Engine) Definition() impact.Definition {
	return e.def
}

// Constraint returns the bound weighting key.
func (e *Engine) Constraint() string {
	return e.constraint
}

// Assess evaluates the function on raw inputs and scores the result.
func (e *Engine) Assess(in impact.Inputs) (*Assessment, error) {
	v, err := e.def.Evaluate(in)
	if err != nil {
		return nil, err
	}
	return e.Score(v)
}

// Score runs the full pipeline on an impact value.
func (e *Engine) Score(value float64) (*Assessment, error) {
	pressure, err := e.PressureScore(value)
	if err != nil {
		return nil, fmt.Errorf("scoring %s: %w", e.def.Name, err)
	}
	adjusted, constraint := e.AdjustedPressureScore(pressure)

	a := &Assessment{
		Function:              e.def.Name,
		Sign:                  e.def.Sign,
		ImpactValue:           value,
		PressureScore:         pressure,
		AdjustedPressureScore: adjusted,
		Constraint:            constraint,
		Recommendations:       e.Recommendations(pressure),
	}

	sensitivities, err := e.ReceptorSensitivityScores(adjusted, value)
	if err != nil {
		return nil, fmt.Errorf("scoring %s: %w", e.def.Name, err)
	}
	if sensitivities == nil {
		a.ConfidenceLevel = ConfidencePressure
		a.EnvironmentalImpactScore = e.ApplyProtectedOverride(e.Normalise(adjusted * e.cal.ReceptorFreeFactor))
		return a, nil
	}

	for i, rs := range sensitivities {
		rs.NormalisedScore = e.Normalise(rs.SensitivityScore)
		rs.EIS = e.ApplyProtectedOverride(rs.NormalisedScore)
		sensitivities[i] = rs

		if i == 0 || e.better(rs.EIS, a.EnvironmentalImpactScore) {
			a.EnvironmentalImpactScore = rs.EIS
		}
	}
	a.Receptors = sensitivities
	a.Seasons = e.SeasonalScores(sensitivities)

	a.ConfidenceLevel = ConfidenceReceptor
	if a.Seasons != nil {
		a.ConfidenceLevel = ConfidenceSeasonal
	}
	return a, nil
}

// better picks the representative receptor score: the largest for
// beneficial functions and the most negative for adverse ones.
func (e *Engine) better(candidate, current float64) bool {
	if e.def.Sign == impact.Beneficial {
		return candidate > current
	}
	return candidate < current
}

// PressureScore interpolates the pressure table at the impact value.
func (e *Engine) PressureScore(value float64) (float64, error) {
	return e.tables.Pressure.Interpolate(value)
}

// Recommendations returns the text of the breakpoint nearest to a fixed
// fraction of the pressure score.
func (e *Engine) Recommendations(pressure float64) scoretable.Recommendations {
	return e.tables.Pressure.Nearest(e.cal.RecommendationFactor * pressure).Recommendations
}

// AdjustedPressureScore applies the bound constraint's weight. When no
// constraint is bound or the weighting table does not list it, the pressure
// score is returned unchanged and the constraint is reported as "".
func (e *Engine) AdjustedPressureScore(pressure float64) (float64, string) {
	if e.constraint == "" || e.tables.Weighting == nil {
		return pressure, ""
	}
	row, ok := e.tables.Weighting.Lookup(e.constraint)
	if !ok {
		return pressure, ""
	}
	return pressure * row.Score, e.constraint
}

// ReceptorSensitivityScores scales the adjusted pressure score by each
// receptor's sensitivity, in receptor table order. Unobserved receptors
// score 0. It returns nil when the engine has no receptor data.
func (e *Engine) ReceptorSensitivityScores(adjusted, value float64) ([]ReceptorScore, error) {
	if e.receptors == nil {
		return nil, nil
	}
	names := e.tables.Receptor.Receptors()
	scores := make([]ReceptorScore, 0, len(names))
	for _, name := range names {
		obs, _ := e.receptors.Lookup(name)
		var sensitivity float64
		if obs.Observed {
			s, err := e.tables.Receptor.LookupBanded(name, value)
			if err != nil {
				return nil, err
			}
			sensitivity = s
		}
		scores = append(scores, ReceptorScore{Species: name, SensitivityScore: adjusted * sensitivity})
	}
	return scores, nil
}

// Normalise maps a score onto the signed EIS scale: adverse functions land
// at or below -10, beneficial ones at or above +10.
func (e *Engine) Normalise(score float64) float64 {
	if e.def.Sign == impact.Beneficial {
		return e.cal.BeneficialSlope*score + e.cal.BeneficialOffset
	}
	return e.cal.AdverseSlope*score + e.cal.AdverseOffset
}

// ApplyProtectedOverride replaces an adverse score by the protected species
// score when any protected species was observed.
func (e *Engine) ApplyProtectedOverride(score float64) float64 {
	if e.def.Sign == impact.Adverse && e.protected.AnyObserved() {
		return e.cal.ProtectedScore
	}
	return score
}

// SeasonalScores multiplies each receptor's normalised score by its monthly
// presence. Unsurveyed months count as 1. It returns nil when no receptor
// has any month populated.
func (e *Engine) SeasonalScores(receptors []ReceptorScore) []SeasonalScore {
	if !e.receptors.HasSeasonalData() {
		return nil
	}
	seasons := make([]SeasonalScore, 0, len(receptors))
	for _, rs := range receptors {
		obs, _ := e.receptors.Lookup(rs.Species)
		s := SeasonalScore{Species: rs.Species}
		for m := range s.Months {
			s.Months[m] = obs.MonthFactor(m) * rs.NormalisedScore
		}
		seasons = append(seasons, s)
	}
	return seasons
}
