// Package stage assesses every impact function of one project phase and
// aggregates the results per phase and per project.
package stage

import (
	"sort"

	"github.com/tidemark/tidemark/pkg/impact"
)

// Stage identifiers. They double as the table directory of each stage.
const (
	IDHydrodynamics = "hydrodynamics"
	IDElectrical    = "electrical subsystems"
	IDMoorings      = "moorings and foundations"
	IDInstallation  = "installation"
	IDMaintenance   = "maintenance"
)

// Definition describes a project phase: its table directory and the impact
// functions it assesses, in report order.
type Definition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Functions []string `json:"functions"`
}

var definitions = []Definition{
	{
		ID:   IDHydrodynamics,
		Name: "Hydrodynamics",
		Functions: []string{
			impact.NameEnergyModification,
			impact.NameCollisionRisk,
			impact.NameTurbidity,
			impact.NameUnderwaterNoise,
			impact.NameReserveEffect,
			impact.NameReefEffect,
			impact.NameRestingPlace,
		},
	},
	{
		ID:   IDElectrical,
		Name: "Electrical Subsystems",
		Functions: []string{
			impact.NameFootprint,
			impact.NameCollisionRisk,
			impact.NameUnderwaterNoise,
			impact.NameElectricFields,
			impact.NameMagneticFields,
			impact.NameTemperatureModification,
			impact.NameReserveEffect,
			impact.NameReefEffect,
			impact.NameRestingPlace,
		},
	},
	{
		ID:   IDMoorings,
		Name: "Moorings and Foundations",
		Functions: []string{
			impact.NameFootprint,
			impact.NameCollisionRisk,
			impact.NameUnderwaterNoise,
			impact.NameReefEffect,
		},
	},
	{
		ID:   IDInstallation,
		Name: "Installation",
		Functions: []string{
			impact.NameFootprint,
			impact.NameCollisionRiskVessel,
			impact.NameChemicalPollution,
			impact.NameTurbidity,
			impact.NameUnderwaterNoise,
		},
	},
	{
		ID:   IDMaintenance,
		Name: "Operation and Maintenance",
		Functions: []string{
			impact.NameFootprint,
			impact.NameCollisionRiskVessel,
			impact.NameChemicalPollution,
			impact.NameTurbidity,
			impact.NameUnderwaterNoise,
		},
	},
}

// Definitions returns every known stage in lifecycle order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	for i, d := range definitions {
		d.Functions = append([]string(nil), d.Functions...)
		out[i] = d
	}
	return out
}

// Lookup returns a stage definition by ID.
func Lookup(id string) (Definition, bool) {
	for _, d := range Definitions() {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// IDs returns the known stage IDs in lifecycle order.
func IDs() []string {
	ids := make([]string, len(definitions))
	for i, d := range definitions {
		ids[i] = d.ID
	}
	return ids
}

// Impacts resolves the stage's function names against the catalog and
// returns any name the catalog does not know.
func (d Definition) Impacts() (defs []impact.Definition, unknown []string) {
	for _, name := range d.Functions {
		def, ok := impact.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		defs = append(defs, def)
	}
	return defs, unknown
}

// Inputs returns the union of the input keys of every function, sorted.
func (d Definition) Inputs() []string {
	defs, _ := d.Impacts()
	return unionInputs(defs)
}

func unionInputs(defs []impact.Definition) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, def := range defs {
		for _, k := range def.Inputs {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
