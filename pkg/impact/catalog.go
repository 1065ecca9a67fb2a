package impact

import "fmt"

// Function names.
const (
	NameEnergyModification      = "Energy Modification"
	NameFootprint               = "Footprint"
	NameCollisionRisk           = "Collision Risk"
	NameCollisionRiskVessel     = "Collision Risk Vessel"
	NameChemicalPollution       = "Chemical Pollution"
	NameTurbidity               = "Turbidity"
	NameUnderwaterNoise         = "Underwater Noise"
	NameElectricFields          = "Electric Fields"
	NameMagneticFields          = "Magnetic Fields"
	NameTemperatureModification = "Temperature Modification"
	NameReserveEffect           = "Reserve Effect"
	NameReefEffect              = "Reef Effect"
	NameRestingPlace            = "Resting Place"
)

// Input keys as they appear in project files.
const (
	KeyEnergyModification = "Energy Modification"
	KeySurfaceCovered     = "Surface Area Covered"
	KeyTotalSurface       = "Total Surface Area"
	KeyDeviceCoordinates  = "Coordinates of the Devices"
	KeyDeviceSize         = "Size of the Devices"
	KeyImmersedHeight     = "Immersed Height of the Devices"
	KeyWaterDepth         = "Water Depth"
	KeyCurrentDirection   = "Current Direction"
	KeyVessels            = "Number of Vessels"
	KeyVesselSize         = "Size of Vessels"
	KeyChemicalPollutant  = "Import of Chemical Polutant"
	KeyInitialTurbidity   = "Initial Turbidity"
	KeyMeasuredTurbidity  = "Measured Turbidity"
	KeyInitialNoise       = "Initial Noise dB re 1muPa"
	KeyMeasuredNoise      = "Measured Noise dB re 1muPa"
	KeyInitialElectric    = "Initial Electric Field"
	KeyMeasuredElectric   = "Measured Electric Field"
	KeyInitialMagnetic    = "Initial Magnetic Field"
	KeyMeasuredMagnetic   = "Measured Magnetic Field"
	KeyInitialTemperature = "Initial Temperature"
	KeyMeasuredTemp       = "Measured Temperature"
	KeyFisheryRestriction = "Fishery Restriction Surface"
	KeyUnderwaterSurface  = "Surface Area of Underwater Part"
	KeyObjects            = "Number of Objects"
	KeyEmergedSurface     = "Object Emerged Surface"
)

// threshold builds a definition comparing a measured value to a baseline.
func threshold(name, slug, initialKey, measuredKey string, fn func(initial, measured float64) float64) Definition {
	return Definition{
		Name:   name,
		Slug:   slug,
		Sign:   Adverse,
		Tables: TablesFor(slug),
		Inputs: []string{initialKey, measuredKey},
		Compute: func(in Inputs) (float64, error) {
			initial, err := number(in, initialKey)
			if err != nil {
				return 0, err
			}
			measured, err := number(in, measuredKey)
			if err != nil {
				return 0, err
			}
			return fn(initial, measured), nil
		},
	}
}

// number decodes a single numeric input.
func number(in Inputs, key string) (float64, error) {
	v, err := decode[struct {
		V float64 `input:"v"`
	}](Inputs{"v": in[key]})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v.V, nil
}

var catalog = []Definition{
	{
		Name:   NameEnergyModification,
		Slug:   "energymod",
		Sign:   Adverse,
		Tables: TablesFor("energymod"),
		Inputs: []string{KeyEnergyModification},
		Compute: func(in Inputs) (float64, error) {
			e, err := number(in, KeyEnergyModification)
			if err != nil {
				return 0, err
			}
			return EnergyModification(e), nil
		},
	},
	{
		Name:   NameFootprint,
		Slug:   "footprint",
		Sign:   Adverse,
		Tables: TablesFor("footprint"),
		Inputs: []string{KeySurfaceCovered, KeyTotalSurface},
		Compute: func(in Inputs) (float64, error) {
			v, err := decode[struct {
				Covered float64 `input:"Surface Area Covered"`
				Total   float64 `input:"Total Surface Area"`
			}](in)
			if err != nil {
				return 0, err
			}
			if err := positive(KeyTotalSurface, v.Total); err != nil {
				return 0, err
			}
			return Footprint(v.Covered, v.Total), nil
		},
	},
	{
		Name:   NameCollisionRisk,
		Slug:   "collrisk",
		Sign:   Adverse,
		Tables: TablesFor("collrisk"),
		Inputs: []string{KeyDeviceCoordinates, KeyDeviceSize, KeyImmersedHeight, KeyWaterDepth, KeyCurrentDirection},
		Compute: func(in Inputs) (float64, error) {
			v, err := decode[struct {
				Coordinates [][]float64 `input:"Coordinates of the Devices"`
				Size        float64     `input:"Size of the Devices"`
				Height      float64     `input:"Immersed Height of the Devices"`
				Depth       float64     `input:"Water Depth"`
				Direction   float64     `input:"Current Direction"`
			}](in)
			if err != nil {
				return 0, err
			}
			devices, err := Devices(v.Coordinates)
			if err != nil {
				return 0, err
			}
			return CollisionRisk(devices, v.Size, v.Height, v.Depth, v.Direction)
		},
	},
	{
		Name:   NameCollisionRiskVessel,
		Slug:   "collriskvessel",
		Sign:   Adverse,
		Tables: TablesFor("collriskvessel"),
		Inputs: []string{KeyVessels, KeyVesselSize, KeyTotalSurface},
		Compute: func(in Inputs) (float64, error) {
			v, err := decode[struct {
				Vessels float64 `input:"Number of Vessels"`
				Size    float64 `input:"Size of Vessels"`
				Total   float64 `input:"Total Surface Area"`
			}](in)
			if err != nil {
				return 0, err
			}
			if err := positive(KeyTotalSurface, v.Total); err != nil {
				return 0, err
			}
			return VesselCollisionRisk(v.Vessels, v.Size, v.Total), nil
		},
	},
	{
		Name:   NameChemicalPollution,
		Slug:   "chemicalpollution",
		Sign:   Adverse,
		Tables: TablesFor("chemicalpollution"),
		Inputs: []string{KeyChemicalPollutant},
		Compute: func(in Inputs) (float64, error) {
			v, err := decode[struct {
				Imported bool `input:"Import of Chemical Polutant"`
			}](in)
			if err != nil {
				return 0, err
			}
			return ChemicalPollution(v.Imported), nil
		},
	},
	threshold(NameTurbidity, "turbidity", KeyInitialTurbidity, KeyMeasuredTurbidity, Turbidity),
	threshold(NameUnderwaterNoise, "underwaternoise", KeyInitialNoise, KeyMeasuredNoise, UnderwaterNoise),
	threshold(NameElectricFields, "electricfields", KeyInitialElectric, KeyMeasuredElectric, ElectricField),
	threshold(NameMagneticFields, "magneticfields", KeyInitialMagnetic, KeyMeasuredMagnetic, MagneticField),
	threshold(NameTemperatureModification, "temperaturemodification", KeyInitialTemperature, KeyMeasuredTemp, TemperatureModification),
	{
		Name:   NameReserveEffect,
		Slug:   "reserveeffect",
		Sign:   Beneficial,
		Tables: TablesFor("reserveeffect"),
		Inputs: []string{KeyFisheryRestriction, KeyTotalSurface},
		Compute: func(in Inputs) (float64, error) {
			v, err := decode[struct {
				Restriction float64 `input:"Fishery Restriction Surface"`
				Total       float64 `input:"Total Surface Area"`
			}](in)
			if err != nil {
				return 0, err
			}
			if err := positive(KeyTotalSurface, v.Total); err != nil {
				return 0, err
			}
			return ReserveEffect(v.Restriction, v.Total), nil
		},
	},
	{
		Name:   NameReefEffect,
		Slug:   "reefeffect",
		Sign:   Beneficial,
		Tables: TablesFor("reefeffect"),
		Inputs: []string{KeyTotalSurface, KeyUnderwaterSurface, KeyObjects},
		Compute: func(in Inputs) (float64, error) {
			v, err := decode[struct {
				Total      float64 `input:"Total Surface Area"`
				Underwater float64 `input:"Surface Area of Underwater Part"`
				Objects    float64 `input:"Number of Objects"`
			}](in)
			if err != nil {
				return 0, err
			}
			if err := positive(KeyTotalSurface, v.Total); err != nil {
				return 0, err
			}
			return ReefEffect(v.Total, v.Underwater, v.Objects), nil
		},
	},
	{
		Name:   NameRestingPlace,
		Slug:   "restingplace",
		Sign:   Beneficial,
		Tables: TablesFor("restingplace"),
		Inputs: []string{KeyEmergedSurface, KeyObjects, KeyTotalSurface},
		Compute: func(in Inputs) (float64, error) {
			v, err := decode[struct {
				Emerged float64 `input:"Object Emerged Surface"`
				Objects float64 `input:"Number of Objects"`
				Total   float64 `input:"Total Surface Area"`
			}](in)
			if err != nil {
				return 0, err
			}
			if err := positive(KeyTotalSurface, v.Total); err != nil {
				return 0, err
			}
			return RestingPlace(v.Emerged, v.Objects, v.Total), nil
		},
	},
}

// Catalog returns every known impact function, in a stable order.
func Catalog() []Definition {
	return append([]Definition(nil), catalog...)
}

// Lookup returns the definition of a function by name.
func Lookup(name string) (Definition, bool) {
	for _, d := range catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) Definition {
	d, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("impact: unknown function %q", name))
	}
	return d
}
