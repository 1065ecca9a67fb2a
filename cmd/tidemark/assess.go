package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidemark/tidemark/internal/refdata"
	"github.com/tidemark/tidemark/pkg/config"
	"github.com/tidemark/tidemark/pkg/impact"
	"github.com/tidemark/tidemark/pkg/project"
	"github.com/tidemark/tidemark/pkg/stage"
	"github.com/tidemark/tidemark/pkg/surface"
)

func newAssessCmd() *cobra.Command {
	var (
		data      dataFlags
		outputFmt string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "assess <project-file>",
		Short: "Score every stage of a project file",
		Long: `Loads the reference tables of every stage listed in the project file,
scores each impact function and prints per-stage and project summaries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data.apply(cfg)
			cfg.Output.Format = firstNonEmpty(outputFmt, cfg.Output.Format)
			if workers > 0 {
				cfg.Assessment.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runAssess(cmd.Context(), cmd.OutOrStdout(), args[0], cfg)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVar(&outputFmt, "output", "", "Output format: text, json or markdown (default from config, text)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Functions scored concurrently per stage (default from config, 4)")
	return cmd
}

func runAssess(ctx context.Context, w io.Writer, projectPath string, cfg *config.Config) error {
	renderer, err := surface.ForFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	p, err := project.Load(projectPath)
	if err != nil {
		return err
	}
	obs, err := p.Observations()
	if err != nil {
		return err
	}

	store, err := refdata.Open(ctx, cfg.Data)
	if err != nil {
		return fmt.Errorf("opening reference tables: %w", err)
	}
	src := refdata.NewCache(store, cfg.Data.CacheSize)
	defer src.Close()

	ids := p.StageIDs()
	stages := make([]*stage.Stage, 0, len(ids))
	inputs := make(map[string]impact.Inputs, len(ids))
	for i, id := range ids {
		def, _ := stage.Lookup(id)
		fmt.Fprintf(os.Stderr, "Loading stage %d/%d: %s...\n", i+1, len(ids), def.Name)
		s, err := stage.New(ctx, src, def, obs, stage.WithWorkers(cfg.Assessment.Workers))
		if err != nil {
			return err
		}
		stages = append(stages, s)
		inputs[id] = p.Inputs(id)
	}

	fmt.Fprintf(os.Stderr, "Scoring %d stage(s)...\n", len(stages))
	result, err := stage.AssessProject(ctx, stages, inputs)
	if err != nil {
		return err
	}
	result.Name = p.Name

	for _, sr := range result.Stages {
		for _, f := range sr.Functions {
			if !f.Assessed {
				fmt.Fprintf(os.Stderr, "  Skipped %s / %s: inputs missing\n", sr.Stage, f.Name)
			}
		}
	}

	return renderer.Render(w, result)
}
