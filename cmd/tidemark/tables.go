package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tidemark/tidemark/internal/refdata"
	"github.com/tidemark/tidemark/pkg/config"
	"github.com/tidemark/tidemark/pkg/stage"
)

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect reference score tables",
	}
	cmd.AddCommand(newTablesCheckCmd())
	return cmd
}

func newTablesCheckCmd() *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "check <stage>",
		Short: "Load every table of a stage and report problems",
		Long: `Loads the pressure, weighting and receptor tables of every function of a
stage. Stage IDs: ` + strings.Join(stage.IDs(), ", ") + `.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data.apply(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runTablesCheck(cmd.Context(), cmd.OutOrStdout(), args[0], cfg)
		},
	}

	data.register(cmd)
	return cmd
}

func runTablesCheck(ctx context.Context, w io.Writer, stageID string, cfg *config.Config) error {
	def, ok := stage.Lookup(stageID)
	if !ok {
		return fmt.Errorf("unknown stage %q (want one of: %s)", stageID, strings.Join(stage.IDs(), ", "))
	}
	defs, unknown := def.Impacts()
	if len(unknown) > 0 {
		return fmt.Errorf("stage %s lists unknown functions: %s", def.Name, strings.Join(unknown, ", "))
	}

	src, err := refdata.Open(ctx, cfg.Data)
	if err != nil {
		return fmt.Errorf("opening reference tables: %w", err)
	}
	defer refdata.Close(src)

	failed := 0
	for _, fn := range defs {
		if _, err := stage.LoadTables(ctx, src, def.ID, fn); err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", fn.Name, err)
			continue
		}
		fmt.Fprintf(w, "ok    %s\n", fn.Name)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d functions of %s have unusable tables", failed, len(defs), def.Name)
	}
	return nil
}
