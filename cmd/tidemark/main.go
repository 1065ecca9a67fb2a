// Package main provides the tidemark CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tidemark/tidemark/pkg/config"
)

var version = "dev"

func main() {
	// Credentials for remote table stores may live in a .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tidemark",
		Short: "Environmental impact scoring for offshore energy projects",
		Long: `Tidemark scores the environmental impact of offshore renewable energy
farms, stage by stage, from reference pressure, weighting and receptor tables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAssessCmd(),
		newCollisionCmd(),
		newFunctionsCmd(),
		newTablesCmd(),
		newRefdataCmd(),
	)
	return rootCmd
}

// dataFlags are the table source overrides shared by several commands.
type dataFlags struct {
	source  string
	dataDir string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Reference table source: local, s3, gcs, azure or postgres")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Reference table directory for the local source")
}

func (f *dataFlags) apply(cfg *config.Config) {
	cfg.Data.Source = firstNonEmpty(f.source, cfg.Data.Source)
	cfg.Data.Dir = firstNonEmpty(f.dataDir, cfg.Data.Dir)
}

// loadConfig finds the nearest .tidemark/config.yaml from the working
// directory. Environment overrides apply even without a file.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return config.Load(config.FindConfigFile(wd))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
