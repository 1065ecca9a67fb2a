package stage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tidemark/tidemark/pkg/impact"
	"github.com/tidemark/tidemark/pkg/observation"
	"github.com/tidemark/tidemark/pkg/scoretable"
	"github.com/tidemark/tidemark/pkg/scoring"
)

// DefaultWorkers bounds how many functions are scored at once.
const DefaultWorkers = 4

// ErrUnexpectedInput is returned when a stage receives input keys none of
// its functions read.
var ErrUnexpectedInput = errors.New("unexpected input")

// UnexpectedInputError lists the input keys a stage does not know.
type UnexpectedInputError struct {
	Stage      string
	Unexpected []string
}

func (e *UnexpectedInputError) Error() string {
	return fmt.Sprintf("%v for %s: %s", ErrUnexpectedInput, e.Stage, strings.Join(e.Unexpected, ", "))
}

func (e *UnexpectedInputError) Unwrap() error { return ErrUnexpectedInput }

// Observations is the site data shared by every function of a stage.
type Observations struct {
	Protected *observation.ProtectedTable
	Receptors *observation.ReceptorTable
	// Constraints maps function names to weighting keys. Functions absent
	// from the map are scored without a constraint.
	Constraints map[string]string
}

// Option configures a Stage.
type Option func(*Stage)

// WithWorkers bounds concurrent scoring. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(s *Stage) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithCalibration overrides the scoring constants of every engine.
func WithCalibration(c scoring.Calibration) Option {
	return func(s *Stage) {
		s.calibration = &c
	}
}

// Stage scores the functions of one project phase.
type Stage struct {
	def         Definition
	engines     []*scoring.Engine
	workers     int
	calibration *scoring.Calibration
}

// New loads the tables of every function of def from src, under the stage
// directory, and binds them to the site observations.
func New(ctx context.Context, src scoretable.Source, def Definition, obs Observations, opts ...Option) (*Stage, error) {
	s := &Stage{def: def, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(s)
	}

	defs, unknown := def.Impacts()
	if len(unknown) > 0 {
		return nil, fmt.Errorf("stage %s: unknown functions: %s", def.Name, strings.Join(unknown, ", "))
	}

	s.engines = make([]*scoring.Engine, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, fn := range defs {
		g.Go(func() error {
			tables, err := LoadTables(gctx, src, def.ID, fn)
			if err != nil {
				return err
			}
			e, err := scoring.NewEngine(fn, tables, scoring.Options{
				Protected:   obs.Protected,
				Receptors:   obs.Receptors,
				Constraint:  obs.Constraints[fn.Name],
				Calibration: s.calibration,
			})
			if err != nil {
				return err
			}
			s.engines[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stage %s: %w", def.Name, err)
	}
	return s, nil
}

// LoadTables reads the three reference tables of a function from the stage
// directory dir.
func LoadTables(ctx context.Context, src scoretable.Source, dir string, fn impact.Definition) (scoring.Tables, error) {
	var t scoring.Tables
	var err error
	if t.Pressure, err = scoretable.LoadPressure(ctx, src, path.Join(dir, fn.Tables.Pressure)); err != nil {
		return t, err
	}
	if t.Weighting, err = scoretable.LoadWeighting(ctx, src, path.Join(dir, fn.Tables.Weighting)); err != nil {
		return t, err
	}
	if t.Receptor, err = scoretable.LoadReceptor(ctx, src, path.Join(dir, fn.Tables.Receptor)); err != nil {
		return t, err
	}
	return t, nil
}

// Definition returns the stage definition.
func (s *Stage) Definition() Definition {
	return s.def
}

// Inputs returns every input key the stage reads, sorted.
func (s *Stage) Inputs() []string {
	defs := make([]impact.Definition, len(s.engines))
	for i, e := range s.engines {
		defs[i] = e.Definition()
	}
	return unionInputs(defs)
}

// Assess scores every function of the stage. The input keys must match
// Inputs() exactly; a function whose inputs include a nil value is skipped.
func (s *Stage) Assess(ctx context.Context, in impact.Inputs) (*Result, error) {
	if err := s.checkKeys(in); err != nil {
		return nil, err
	}

	functions := make([]FunctionResult, len(s.engines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, e := range s.engines {
		def := e.Definition()
		functions[i] = FunctionResult{Name: def.Name}
		if len(def.Missing(in)) > 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := e.Assess(in)
			if err != nil {
				return err
			}
			functions[i] = newFunctionResult(a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stage %s: %w", s.def.Name, err)
	}

	r := &Result{
		ID:        uuid.NewString(),
		StageID:   s.def.ID,
		Stage:     s.def.Name,
		Functions: functions,
	}
	var eis []float64
	for _, f := range functions {
		if !f.Assessed {
			continue
		}
		eis = append(eis, f.EIS)
		if season, ok := aggregateSeasons(f.Assessment); ok {
			r.Seasons = append(r.Seasons, FunctionSeason{Function: f.Name, Months: season})
		}
	}
	r.Summary = Summarize(eis)
	return r, nil
}

func (s *Stage) checkKeys(in impact.Inputs) error {
	needed := s.Inputs()
	want := make(map[string]bool, len(needed))
	var missing []string
	for _, k := range needed {
		want[k] = true
		if _, ok := in[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &impact.MissingInputError{Function: s.def.Name, Missing: missing}
	}

	var extra []string
	for k := range in {
		if !want[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return &UnexpectedInputError{Stage: s.def.Name, Unexpected: extra}
	}
	return nil
}
