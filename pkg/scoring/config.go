package scoring

// Calibration holds the constants of the scoring pipeline.
type Calibration struct {
	// Normalisation: adverse scores map to AdverseSlope*s + AdverseOffset,
	// beneficial ones to BeneficialSlope*s + BeneficialOffset.
	AdverseSlope     float64
	AdverseOffset    float64
	BeneficialSlope  float64
	BeneficialOffset float64

	// ProtectedScore replaces any adverse score when a protected species
	// was observed.
	ProtectedScore float64

	// ReceptorFreeFactor scales the adjusted pressure score when no receptor
	// data is available.
	ReceptorFreeFactor float64

	// RecommendationFactor scales the pressure score before the nearest
	// breakpoint is looked up for recommendations.
	RecommendationFactor float64
}

// Defaults returns the standard calibration.
func Defaults() Calibration {
	return Calibration{
		AdverseSlope:     -3.2,
		AdverseOffset:    -10,
		BeneficialSlope:  1.6,
		BeneficialOffset: 10,

		ProtectedScore: -100,

		ReceptorFreeFactor:   5,
		RecommendationFactor: 0.2,
	}
}
