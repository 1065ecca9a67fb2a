package stage

import (
	"github.com/montanaflynn/stats"

	"github.com/tidemark/tidemark/pkg/scoretable"
	"github.com/tidemark/tidemark/pkg/scoring"
)

// Result is the output of assessing one stage.
type Result struct {
	ID        string           `json:"id"`
	StageID   string           `json:"stage_id"`
	Stage     string           `json:"stage"`
	Functions []FunctionResult `json:"functions"`
	Seasons   []FunctionSeason `json:"seasons,omitempty"`
	Summary   Summary          `json:"summary"`
}

// Function returns the result of a function by name.
func (r *Result) Function(name string) (FunctionResult, bool) {
	for _, f := range r.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return FunctionResult{}, false
}

// FunctionResult is the outcome of one function. Functions skipped for lack
// of inputs have Assessed == false and no scores.
type FunctionResult struct {
	Name            string                     `json:"name"`
	Assessed        bool                       `json:"assessed"`
	Confidence      scoring.Confidence         `json:"confidence,omitempty"`
	EIS             float64                    `json:"eis"`
	Recommendations scoretable.Recommendations `json:"recommendations"`
	Assessment      *scoring.Assessment        `json:"assessment,omitempty"`
}

func newFunctionResult(a *scoring.Assessment) FunctionResult {
	return FunctionResult{
		Name:            a.Function,
		Assessed:        true,
		Confidence:      a.ConfidenceLevel,
		EIS:             a.EIS(),
		Recommendations: a.Recommendation(),
		Assessment:      a,
	}
}

// FunctionSeason is the month-by-month score of one function across its
// receptors.
type FunctionSeason struct {
	Function string      `json:"function"`
	Months   [12]float64 `json:"months"`
}

// aggregateSeasons collapses per-receptor monthly scores into one row: the
// best month value for beneficial outcomes and the worst for adverse ones.
func aggregateSeasons(a *scoring.Assessment) ([12]float64, bool) {
	var out [12]float64
	if a == nil || len(a.Seasons) == 0 {
		return out, false
	}
	pick := stats.Min
	if a.EIS() >= 0 {
		pick = stats.Max
	}
	for m := range out {
		column := make(stats.Float64Data, len(a.Seasons))
		for i, s := range a.Seasons {
			column[i] = s.Months[m]
		}
		// column is never empty, so pick cannot fail.
		out[m], _ = pick(column)
	}
	return out, true
}

// Summary is the global environmental score over a set of assessed
// functions. Negative and non-negative scores are summarised separately;
// a group with no scores leaves its fields nil.
type Summary struct {
	NegativeImpact    *float64 `json:"negative_impact,omitempty"`
	MaxNegativeImpact *float64 `json:"max_negative_impact,omitempty"`
	MinNegativeImpact *float64 `json:"min_negative_impact,omitempty"`
	PositiveImpact    *float64 `json:"positive_impact,omitempty"`
	MaxPositiveImpact *float64 `json:"max_positive_impact,omitempty"`
	MinPositiveImpact *float64 `json:"min_positive_impact,omitempty"`
}

// Summarize aggregates EIS values. The largest negative impact is the most
// negative score.
func Summarize(eis []float64) Summary {
	var negative, positive stats.Float64Data
	for _, v := range eis {
		if v < 0 {
			negative = append(negative, v)
		} else {
			positive = append(positive, v)
		}
	}

	var s Summary
	if len(negative) > 0 {
		s.NegativeImpact = ptr(negative.Mean())
		s.MaxNegativeImpact = ptr(negative.Min())
		s.MinNegativeImpact = ptr(negative.Max())
	}
	if len(positive) > 0 {
		s.PositiveImpact = ptr(positive.Mean())
		s.MaxPositiveImpact = ptr(positive.Max())
		s.MinPositiveImpact = ptr(positive.Min())
	}
	return s
}

func ptr(v float64, _ error) *float64 {
	return &v
}
