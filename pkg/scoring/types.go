// Package scoring implements the Tidemark environmental impact scoring engine.
// It turns an impact value into an explainable, sign-normalized
// Environmental Impact Score (EIS), refined per receptor and per month when
// survey data is available.
package scoring

import (
	"github.com/tidemark/tidemark/pkg/impact"
	"github.com/tidemark/tidemark/pkg/observation"
	"github.com/tidemark/tidemark/pkg/scoretable"
)

// Assessment is the complete output of scoring one impact value.
// Immutable once computed.
type Assessment struct {
	Function                 string                     `json:"function"`
	Sign                     impact.Sign                `json:"sign"`
	ImpactValue              float64                    `json:"impact_value"`
	PressureScore            float64                    `json:"pressure_score"`
	AdjustedPressureScore    float64                    `json:"adjusted_pressure_score"`
	Constraint               string                     `json:"constraint,omitempty"` // empty when no weighting applied
	EnvironmentalImpactScore float64                    `json:"environmental_impact_score"`
	Recommendations          scoretable.Recommendations `json:"recommendations"`
	ConfidenceLevel          Confidence                 `json:"confidence_level"`
	Receptors                []ReceptorScore            `json:"receptors,omitempty"` // levels 2 and 3
	Seasons                  []SeasonalScore            `json:"seasons,omitempty"`   // level 3
}

// EIS returns the final environmental impact score.
func (a *Assessment) EIS() float64 {
	return a.EnvironmentalImpactScore
}

// Recommendation returns the text attached to the pressure score.
func (a *Assessment) Recommendation() scoretable.Recommendations {
	return a.Recommendations
}

// Season returns the monthly scores of one receptor.
func (a *Assessment) Season(species string) ([12]float64, bool) {
	for _, s := range a.Seasons {
		if s.Species == species {
			return s.Months, true
		}
	}
	return [12]float64{}, false
}

// ReceptorScore is the per-receptor breakdown of an assessment.
type ReceptorScore struct {
	Species          string  `json:"species"`
	SensitivityScore float64 `json:"receptor_sensitivity_score"`
	NormalisedScore  float64 `json:"normalised_score"` // before the protected species override
	EIS              float64 `json:"environmental_impact_score"`
}

// SeasonalScore is a receptor's normalised score scaled by its monthly
// presence, January first.
type SeasonalScore struct {
	Species string      `json:"species"`
	Months  [12]float64 `json:"months"`
}

// MonthNames returns the month labels matching SeasonalScore.Months.
func MonthNames() [12]string {
	return observation.Months
}

// Confidence indicates how much survey data backs an assessment.
type Confidence int

const (
	ConfidencePressure Confidence = 1 // pressure tables only
	ConfidenceReceptor Confidence = 2 // plus receptor observations
	ConfidenceSeasonal Confidence = 3 // plus monthly observations
)

func (c Confidence) String() string {
	switch c {
	case ConfidencePressure:
		return "pressure"
	case ConfidenceReceptor:
		return "receptor"
	case ConfidenceSeasonal:
		return "seasonal"
	default:
		return "unknown"
	}
}
