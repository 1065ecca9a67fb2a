package stage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tidemark/tidemark/pkg/impact"
)

// ProjectResult gathers the stage results of a project.
type ProjectResult struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"`
	Stages  []*Result `json:"stages"`
	Summary Summary   `json:"summary"`
}

// AssessProject assesses several stages. inputs is keyed by stage ID and
// must hold an entry for every stage. Results keep the order of stages and
// the project summary spans every assessed function of every stage.
func AssessProject(ctx context.Context, stages []*Stage, inputs map[string]impact.Inputs) (*ProjectResult, error) {
	for _, s := range stages {
		if _, ok := inputs[s.def.ID]; !ok {
			return nil, fmt.Errorf("no inputs for stage %s", s.def.ID)
		}
	}

	results := make([]*Result, len(stages))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range stages {
		g.Go(func() error {
			r, err := s.Assess(gctx, inputs[s.def.ID])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var eis []float64
	for _, r := range results {
		for _, f := range r.Functions {
			if f.Assessed {
				eis = append(eis, f.EIS)
			}
		}
	}
	return &ProjectResult{
		ID:      uuid.NewString(),
		Stages:  results,
		Summary: Summarize(eis),
	}, nil
}
