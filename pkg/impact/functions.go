package impact

// temperatureMargin is the rise in degrees tolerated before the temperature
// pressure applies.
const temperatureMargin = 5.0

// EnergyModification passes the fraction of energy removed from the system
// through unchanged.
func EnergyModification(energy float64) float64 {
	return energy
}

// Footprint is the fraction of the lease area covered by the farm, capped
// at 1.
func Footprint(coveredArea, farmArea float64) float64 {
	return min(coveredArea/farmArea, 1)
}

// ReefEffect is the submerged surface offered by all objects relative to
// the farm area.
func ReefEffect(farmArea, submergedArea, objects float64) float64 {
	return submergedArea * objects / farmArea
}

// ReserveEffect is the fishery restriction surface relative to the farm
// area.
func ReserveEffect(restrictionSurface, farmArea float64) float64 {
	return restrictionSurface / farmArea
}

// RestingPlace is the emerged surface offered by all objects relative to
// the farm area.
func RestingPlace(emergedArea, objects, farmArea float64) float64 {
	return emergedArea * objects / farmArea
}

// Turbidity is 1 when the measured turbidity exceeds the baseline.
func Turbidity(initial, measured float64) float64 {
	return exceeds(measured, initial)
}

// UnderwaterNoise is 1 when the measured noise level exceeds the baseline.
func UnderwaterNoise(initial, measured float64) float64 {
	return exceeds(measured, initial)
}

// ElectricField is 1 when the measured electric field exceeds the baseline.
func ElectricField(initial, measured float64) float64 {
	return exceeds(measured, initial)
}

// MagneticField is 1 when the measured magnetic field exceeds the baseline.
func MagneticField(initial, measured float64) float64 {
	return exceeds(measured, initial)
}

// TemperatureModification is 1 when the measured temperature exceeds the
// baseline by more than 5 degrees.
func TemperatureModification(initial, measured float64) float64 {
	return exceeds(measured, initial+temperatureMargin)
}

// ChemicalPollution is 1 when a chemical pollutant is imported.
func ChemicalPollution(imported bool) float64 {
	if imported {
		return 1
	}
	return 0
}

func exceeds(v, threshold float64) float64 {
	if v <= threshold {
		return 0
	}
	return 1
}
