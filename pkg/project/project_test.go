package project_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tidemark/tidemark/pkg/impact"
	"github.com/tidemark/tidemark/pkg/project"
	"github.com/tidemark/tidemark/pkg/stage"
)

const demoYAML = `name: Demo farm
protected:
  mysticete: false
  grey seal: true
receptors: receptors.csv
constraints:
  Footprint: Loose sand
stages:
  installation:
    Surface Area Covered: 40
    Total Surface Area: 100
    Number of Vessels: ~
    Size of Vessels: 20
    Import of Chemical Polutant: "True"
    Initial Turbidity: 10
    Measured Turbidity: 5
    Initial Noise dB re 1muPa: 100
    Measured Noise dB re 1muPa: 120
  hydrodynamics:
    Coordinates of the Devices: [[100, 200, 300], [300, 50, 100]]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "project.yaml", demoYAML)
	writeFile(t, dir, "receptors.csv", "receptor,observed\nFish,True\n")

	p, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if p.Name != "Demo farm" {
		t.Errorf("Name = %q", p.Name)
	}
	if got, want := p.StageIDs(), []string{stage.IDHydrodynamics, stage.IDInstallation}; !reflect.DeepEqual(got, want) {
		t.Errorf("StageIDs() = %v, want lifecycle order %v", got, want)
	}

	in := p.Inputs(stage.IDInstallation)
	if v, ok := in[impact.KeyVessels]; !ok || v != nil {
		t.Errorf("expected %q to be present and nil, got %v (present=%v)", impact.KeyVessels, v, ok)
	}
	if in[impact.KeySurfaceCovered] != 40.0 {
		t.Errorf("expected Surface Area Covered 40, got %#v", in[impact.KeySurfaceCovered])
	}

	obs, err := p.Observations()
	if err != nil {
		t.Fatalf("Observations() error: %v", err)
	}
	if !obs.Protected.AnyObserved() {
		t.Error("expected grey seal to be observed")
	}
	if obs.Receptors.Len() != 1 {
		t.Errorf("expected 1 receptor, got %d", obs.Receptors.Len())
	}
	if obs.Constraints[impact.NameFootprint] != "Loose sand" {
		t.Errorf("unexpected constraints %v", obs.Constraints)
	}
}

func TestInputsDecodeThroughCatalog(t *testing.T) {
	p, err := project.Parse("project.yaml", []byte(demoYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	v, err := impact.MustLookup(impact.NameChemicalPollution).Evaluate(p.Inputs(stage.IDInstallation))
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if v != 1 {
		t.Errorf("expected chemical pollution 1, got %g", v)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "project.json", `{
  "stages": {"maintenance": {"Import of Chemical Polutant": false, "Number of Vessels": null}}
}`)
	p, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := p.StageIDs(); !reflect.DeepEqual(got, []string{stage.IDMaintenance}) {
		t.Errorf("StageIDs() = %v", got)
	}

	obs, err := p.Observations()
	if err != nil {
		t.Fatalf("Observations() error: %v", err)
	}
	if obs.Receptors != nil {
		t.Error("expected no receptor table when none is configured")
	}
	if obs.Protected.AnyObserved() {
		t.Error("expected no protected species")
	}
}

func TestSchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		location string
	}{
		{"unknown stage", "stages:\n  decommissioning: {}\n", "/stages"},
		{"no stages", "name: x\n", "/"},
		{"protected not boolean", "protected:\n  seal: often\nstages:\n  installation: {}\n", "/protected/seal"},
		{"unknown field", "stage:\n  installation: {}\nstages:\n  installation: {}\n", "/"},
		{"object input", "stages:\n  installation:\n    Water Depth: {value: 3}\n", "/stages/installation/Water Depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := project.Parse("project.yaml", []byte(tt.doc))
			if !errors.Is(err, project.ErrInvalidProject) {
				t.Fatalf("expected ErrInvalidProject, got %v", err)
			}
			var ve *project.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			found := false
			for _, p := range ve.Problems {
				if strings.HasPrefix(p, tt.location) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a problem at %s, got %v", tt.location, ve.Problems)
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := project.Parse("project.json", []byte("{")); err == nil {
		t.Error("expected syntax error")
	}
}
