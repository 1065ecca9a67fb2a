package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tidemark/tidemark/pkg/impact"
)

func newCollisionCmd() *cobra.Command {
	var (
		size      float64
		height    float64
		depth     float64
		direction float64
	)

	cmd := &cobra.Command{
		Use:   "collision <positions-file>",
		Short: "Estimate the collision risk of a device layout",
		Long: `Reads device positions (two whitespace-separated columns, x and y in
metres, one device per line) and prints the fraction of the water column a
fish swimming with the current would encounter.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening positions: %w", err)
			}
			defer f.Close()

			devices, err := readPositions(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintf(os.Stderr, "Read %d device positions\n", len(devices))

			risk, err := impact.CollisionRisk(devices, size, height, depth, direction)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", risk)
			return nil
		},
	}

	cmd.Flags().Float64Var(&size, "size", 0, "Device footprint size in metres (required)")
	cmd.Flags().Float64Var(&height, "height", 0, "Immersed height of the devices in metres")
	cmd.Flags().Float64Var(&depth, "depth", 0, "Water depth in metres (required)")
	cmd.Flags().Float64Var(&direction, "direction", 0, "Current direction in degrees, 0 along +x")
	_ = cmd.MarkFlagRequired("size")
	_ = cmd.MarkFlagRequired("depth")
	return cmd
}

// readPositions parses x y pairs. Blank lines and lines starting with # are
// ignored.
func readPositions(r io.Reader) ([]impact.Point, error) {
	var devices []impact.Point
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: x: %w", line, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: y: %w", line, err)
		}
		devices = append(devices, impact.Point{X: x, Y: y})
	}
	return devices, sc.Err()
}
