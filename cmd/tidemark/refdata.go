package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidemark/tidemark/internal/platform"
	"github.com/tidemark/tidemark/internal/refdata"
	"github.com/tidemark/tidemark/pkg/config"
)

func newRefdataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refdata",
		Short: "Manage the reference table store",
	}
	cmd.AddCommand(newRefdataMigrateCmd(), newRefdataPushCmd())
	return cmd
}

func newRefdataMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres migrations of the reference table store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			url := firstNonEmpty(databaseURL, cfg.Data.Postgres.URL)
			if url == "" {
				return fmt.Errorf("no database: pass --database-url or set TIDEMARK_DATABASE_URL")
			}
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), url)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL (default from config)")
	return cmd
}

func runMigrate(ctx context.Context, w io.Writer, url string) error {
	pg, err := refdata.OpenPostgres(ctx, url)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := platform.AutoMigrate(pg.DB()); err != nil {
		return err
	}
	version, dirty, err := platform.Version(pg.DB())
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	fmt.Fprintf(w, "reference table schema at version %d", version)
	if dirty {
		fmt.Fprint(w, " (dirty)")
	}
	fmt.Fprintln(w)
	return nil
}

func newRefdataPushCmd() *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "push <dir>",
		Short: "Upload a local table directory to the configured store",
		Long: `Copies every .csv and .xlsx file under dir to the configured table
store, keeping paths relative to dir.`,
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
			return runPush(cmd.Context(), args[0], cfg)
		},
	}

	data.register(cmd)
	return cmd
}

func runPush(ctx context.Context, dir string, cfg *config.Config) error {
	store, err := refdata.Open(ctx, cfg.Data)
	if err != nil {
		return fmt.Errorf("opening reference tables: %w", err)
	}
	defer refdata.Close(store)

	local := refdata.NewLocalSource(dir)
	count := 0
	err = local.Walk(func(name string) error {
		data, err := local.ReadTable(ctx, name)
		if err != nil {
			return err
		}
		if err := store.PutTable(ctx, name, data); err != nil {
			return err
		}
		count++
		fmt.Fprintf(os.Stderr, "  pushed %s\n", name)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Pushed %d tables to %s store\n", count, cfg.Data.Source)
	return nil
}
