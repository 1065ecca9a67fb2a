package stage_test

import (
	"context"
	"errors"
	"math"
	"path"
	"reflect"
	"testing"

	"github.com/tidemark/tidemark/pkg/impact"
	"github.com/tidemark/tidemark/pkg/observation"
	"github.com/tidemark/tidemark/pkg/scoretable"
	"github.com/tidemark/tidemark/pkg/scoring"
	"github.com/tidemark/tidemark/pkg/stage"
)

const (
	pressureCSV = "function result,score,generic explanation score,general recommendation,detailed recommendation\n" +
		"0,0,None,No action,\n" +
		"1,5,Severe,Avoid,\n"
	weightingCSV     = "weighting parameter,score\nLoose sand,2\n"
	emptyReceptorCSV = "Subclass or group,score,upper bound\n"
	receptorCSV      = "Subclass or group,score,upper bound\nFish,1,\nSeabirds,2,\n"
)

// source serves the same tables for every function of every given stage.
func source(receptors string, defs ...stage.Definition) scoretable.MapSource {
	src := scoretable.MapSource{}
	for _, def := range defs {
		fns, _ := def.Impacts()
		for _, fn := range fns {
			src[path.Join(def.ID, fn.Tables.Pressure)] = []byte(pressureCSV)
			src[path.Join(def.ID, fn.Tables.Weighting)] = []byte(weightingCSV)
			src[path.Join(def.ID, fn.Tables.Receptor)] = []byte(receptors)
		}
	}
	return src
}

func mustDefinition(t *testing.T, id string) stage.Definition {
	t.Helper()
	def, ok := stage.Lookup(id)
	if !ok {
		t.Fatalf("unknown stage %q", id)
	}
	return def
}

func mooringInputs() impact.Inputs {
	return impact.Inputs{
		impact.KeySurfaceCovered:    40,
		impact.KeyTotalSurface:      100,
		impact.KeyDeviceCoordinates: nil,
		impact.KeyDeviceSize:        30,
		impact.KeyImmersedHeight:    50,
		impact.KeyWaterDepth:        100,
		impact.KeyCurrentDirection:  50,
		impact.KeyInitialNoise:      10,
		impact.KeyMeasuredNoise:     40,
		impact.KeyUnderwaterSurface: 1,
		impact.KeyObjects:           50,
	}
}

func assertClose(t *testing.T, what string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s = nil, want %g", what, want)
		return
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Errorf("%s = %g, want %g", what, *got, want)
	}
}

func TestDefinitions(t *testing.T) {
	want := map[string]int{
		stage.IDHydrodynamics: 7,
		stage.IDElectrical:    9,
		stage.IDMoorings:      4,
		stage.IDInstallation:  5,
		stage.IDMaintenance:   5,
	}
	defs := stage.Definitions()
	if len(defs) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(defs))
	}
	for _, d := range defs {
		if len(d.Functions) != want[d.ID] {
			t.Errorf("%s: expected %d functions, got %d", d.ID, want[d.ID], len(d.Functions))
		}
		if _, unknown := d.Impacts(); len(unknown) > 0 {
			t.Errorf("%s: unknown functions %v", d.ID, unknown)
		}
	}
}

func TestStageInputs(t *testing.T) {
	def := mustDefinition(t, stage.IDMoorings)
	s, err := stage.New(context.Background(), source(emptyReceptorCSV, def), def, stage.Observations{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	got := s.Inputs()
	want := []string{
		impact.KeyDeviceCoordinates,
		impact.KeyCurrentDirection,
		impact.KeyImmersedHeight,
		impact.KeyInitialNoise,
		impact.KeyMeasuredNoise,
		impact.KeyObjects,
		impact.KeyDeviceSize,
		impact.KeySurfaceCovered,
		impact.KeyUnderwaterSurface,
		impact.KeyTotalSurface,
		impact.KeyWaterDepth,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Inputs() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(def.Inputs(), got) {
		t.Error("expected definition and stage inputs to agree")
	}
}

func TestAssessMoorings(t *testing.T) {
	def := mustDefinition(t, stage.IDMoorings)
	s, err := stage.New(context.Background(), source(emptyReceptorCSV, def), def, stage.Observations{}, stage.WithWorkers(2))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	r, err := s.Assess(context.Background(), mooringInputs())
	if err != nil {
		t.Fatalf("Assess() error: %v", err)
	}
	if r.ID == "" || r.StageID != stage.IDMoorings || r.Stage != "Moorings and Foundations" {
		t.Errorf("unexpected result header %+v", r)
	}

	names := make([]string, len(r.Functions))
	for i, f := range r.Functions {
		names[i] = f.Name
	}
	if !reflect.DeepEqual(names, def.Functions) {
		t.Errorf("functions = %v, want stage order %v", names, def.Functions)
	}

	collision, _ := r.Function(impact.NameCollisionRisk)
	if collision.Assessed || collision.Assessment != nil {
		t.Error("expected Collision Risk to be skipped with nil coordinates")
	}

	tests := []struct {
		name string
		eis  float64
	}{
		{impact.NameFootprint, -42},       // 0.4 -> pressure 2
		{impact.NameUnderwaterNoise, -90}, // 1 -> pressure 5
		{impact.NameReefEffect, 30},       // 0.5 -> pressure 2.5
	}
	for _, tt := range tests {
		f, ok := r.Function(tt.name)
		if !ok || !f.Assessed {
			t.Fatalf("expected %s to be assessed", tt.name)
		}
		if math.Abs(f.EIS-tt.eis) > 1e-9 {
			t.Errorf("%s: EIS = %g, want %g", tt.name, f.EIS, tt.eis)
		}
		if f.Confidence != scoring.ConfidencePressure {
			t.Errorf("%s: confidence = %d, want 1", tt.name, f.Confidence)
		}
	}

	assertClose(t, "negative impact", r.Summary.NegativeImpact, -66)
	assertClose(t, "max negative impact", r.Summary.MaxNegativeImpact, -90)
	assertClose(t, "min negative impact", r.Summary.MinNegativeImpact, -42)
	assertClose(t, "positive impact", r.Summary.PositiveImpact, 30)
	assertClose(t, "max positive impact", r.Summary.MaxPositiveImpact, 30)
	assertClose(t, "min positive impact", r.Summary.MinPositiveImpact, 30)
	if r.Seasons != nil {
		t.Error("expected no seasonal table without receptor data")
	}
}

func TestAssessKeySetMustMatch(t *testing.T) {
	def := mustDefinition(t, stage.IDMoorings)
	s, err := stage.New(context.Background(), source(emptyReceptorCSV, def), def, stage.Observations{})
	if err != nil {
		t.Fatal(err)
	}

	missing := mooringInputs()
	delete(missing, impact.KeyWaterDepth)
	_, err = s.Assess(context.Background(), missing)
	var mie *impact.MissingInputError
	if !errors.As(err, &mie) || !reflect.DeepEqual(mie.Missing, []string{impact.KeyWaterDepth}) {
		t.Errorf("expected MissingInputError naming %q, got %v", impact.KeyWaterDepth, err)
	}

	extra := mooringInputs()
	extra["Light Intensity"] = 3
	_, err = s.Assess(context.Background(), extra)
	var uie *stage.UnexpectedInputError
	if !errors.As(err, &uie) || !reflect.DeepEqual(uie.Unexpected, []string{"Light Intensity"}) {
		t.Errorf("expected UnexpectedInputError naming Light Intensity, got %v", err)
	}
	if !errors.Is(err, stage.ErrUnexpectedInput) {
		t.Error("expected error to match ErrUnexpectedInput")
	}
}

func TestAssessWithConstraint(t *testing.T) {
	def := mustDefinition(t, stage.IDMoorings)
	obs := stage.Observations{Constraints: map[string]string{impact.NameFootprint: "Loose sand"}}
	s, err := stage.New(context.Background(), source(emptyReceptorCSV, def), def, obs)
	if err != nil {
		t.Fatal(err)
	}
	r, err := s.Assess(context.Background(), mooringInputs())
	if err != nil {
		t.Fatal(err)
	}
	f, _ := r.Function(impact.NameFootprint)
	if math.Abs(f.EIS-(-74)) > 1e-9 {
		t.Errorf("Footprint EIS = %g, want -74", f.EIS)
	}
	if f.Assessment.Constraint != "Loose sand" {
		t.Errorf("expected constraint to be recorded, got %q", f.Assessment.Constraint)
	}
}

func TestAssessSeasonalAggregation(t *testing.T) {
	def := mustDefinition(t, stage.IDMoorings)

	fish := observation.Receptor{Name: "Fish", Observed: true}
	jan := 0.5
	fish.Months[0] = &jan
	birds := observation.Receptor{Name: "Seabirds", Observed: true}
	zero := 0.0
	birds.Months[0] = &zero
	receptors, err := observation.NewReceptorTable(fish, birds)
	if err != nil {
		t.Fatal(err)
	}

	s, err := stage.New(context.Background(), source(receptorCSV, def), def, stage.Observations{Receptors: receptors})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	r, err := s.Assess(context.Background(), mooringInputs())
	if err != nil {
		t.Fatalf("Assess() error: %v", err)
	}

	seasons := make(map[string][12]float64)
	for _, fs := range r.Seasons {
		seasons[fs.Function] = fs.Months
	}
	if len(seasons) != 3 {
		t.Fatalf("expected seasonal rows for the 3 assessed functions, got %d", len(seasons))
	}

	// Footprint (adverse, pressure 2): fish -16.4, seabirds -22.8; worst per month.
	footprint := seasons[impact.NameFootprint]
	if math.Abs(footprint[0]-(-8.2)) > 1e-9 || math.Abs(footprint[5]-(-22.8)) > 1e-9 {
		t.Errorf("Footprint seasons = %v", footprint)
	}
	// Reef effect (beneficial, pressure 2.5): fish 14, seabirds 18; best per month.
	reef := seasons[impact.NameReefEffect]
	if math.Abs(reef[0]-7) > 1e-9 || math.Abs(reef[11]-18) > 1e-9 {
		t.Errorf("Reef Effect seasons = %v", reef)
	}

	f, _ := r.Function(impact.NameFootprint)
	if f.Confidence != scoring.ConfidenceSeasonal {
		t.Errorf("expected confidence 3, got %d", f.Confidence)
	}
}

func TestNewMissingReceptorObservations(t *testing.T) {
	def := mustDefinition(t, stage.IDMoorings)
	receptors, err := observation.NewReceptorTable(observation.Receptor{Name: "Fish", Observed: true})
	if err != nil {
		t.Fatal(err)
	}
	_, err = stage.New(context.Background(), source(receptorCSV, def), def, stage.Observations{Receptors: receptors})
	if !errors.Is(err, scoring.ErrMissingReceptorData) {
		t.Errorf("expected ErrMissingReceptorData, got %v", err)
	}
}

func TestNewMissingTable(t *testing.T) {
	def := mustDefinition(t, stage.IDMoorings)
	src := source(emptyReceptorCSV, def)
	delete(src, path.Join(def.ID, "reefeffect_weighting.csv"))

	if _, err := stage.New(context.Background(), src, def, stage.Observations{}); err == nil {
		t.Error("expected error when a table is missing")
	}
}

func TestNewUnknownFunction(t *testing.T) {
	def := stage.Definition{ID: "custom", Name: "Custom", Functions: []string{"Light Pollution"}}
	if _, err := stage.New(context.Background(), scoretable.MapSource{}, def, stage.Observations{}); err == nil {
		t.Error("expected error for an unknown function")
	}
}

func TestSummarize(t *testing.T) {
	empty := stage.Summarize(nil)
	if !reflect.DeepEqual(empty, stage.Summary{}) {
		t.Errorf("expected empty summary, got %+v", empty)
	}

	s := stage.Summarize([]float64{-10, -30, 0, 20})
	assertClose(t, "negative impact", s.NegativeImpact, -20)
	assertClose(t, "max negative impact", s.MaxNegativeImpact, -30)
	assertClose(t, "min negative impact", s.MinNegativeImpact, -10)
	assertClose(t, "positive impact", s.PositiveImpact, 10)
	assertClose(t, "max positive impact", s.MaxPositiveImpact, 20)
	assertClose(t, "min positive impact", s.MinPositiveImpact, 0)

	onlyNegative := stage.Summarize([]float64{-10})
	if onlyNegative.PositiveImpact != nil || onlyNegative.MaxPositiveImpact != nil {
		t.Error("expected positive fields to be nil without positive scores")
	}
}

func TestAssessProject(t *testing.T) {
	install := mustDefinition(t, stage.IDInstallation)
	maint := mustDefinition(t, stage.IDMaintenance)
	src := source(emptyReceptorCSV, install, maint)

	ctx := context.Background()
	var stages []*stage.Stage
	for _, def := range []stage.Definition{install, maint} {
		s, err := stage.New(ctx, src, def, stage.Observations{})
		if err != nil {
			t.Fatalf("New(%s) error: %v", def.ID, err)
		}
		stages = append(stages, s)
	}

	base := func() impact.Inputs {
		in := impact.Inputs{}
		for _, k := range install.Inputs() {
			in[k] = nil
		}
		return in
	}
	installInputs := base()
	installInputs[impact.KeySurfaceCovered] = 40
	installInputs[impact.KeyTotalSurface] = 100
	installInputs[impact.KeyChemicalPollutant] = true
	maintInputs := base()
	maintInputs[impact.KeyChemicalPollutant] = "False"

	pr, err := stage.AssessProject(ctx, stages, map[string]impact.Inputs{
		stage.IDInstallation: installInputs,
		stage.IDMaintenance:  maintInputs,
	})
	if err != nil {
		t.Fatalf("AssessProject() error: %v", err)
	}
	if len(pr.Stages) != 2 || pr.Stages[0].StageID != stage.IDInstallation {
		t.Fatalf("unexpected stages %+v", pr.Stages)
	}

	// installation: footprint -42, chemical pollution -90; maintenance: -10
	assertClose(t, "negative impact", pr.Summary.NegativeImpact, -142.0/3)
	assertClose(t, "max negative impact", pr.Summary.MaxNegativeImpact, -90)
	assertClose(t, "min negative impact", pr.Summary.MinNegativeImpact, -10)
	if pr.Summary.PositiveImpact != nil {
		t.Error("expected no positive impact")
	}

	_, err = stage.AssessProject(ctx, stages, map[string]impact.Inputs{stage.IDInstallation: installInputs})
	if err == nil {
		t.Error("expected error when a stage has no inputs")
	}
}
