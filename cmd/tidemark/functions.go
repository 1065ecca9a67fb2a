package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tidemark/tidemark/pkg/impact"
	"github.com/tidemark/tidemark/pkg/stage"
)

type functionInfo struct {
	Name   string        `json:"name"`
	Sign   string        `json:"sign"`
	Inputs []string      `json:"inputs"`
	Tables impact.Tables `json:"tables"`
	Stages []string      `json:"stages"`
}

func newFunctionsCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the impact functions, their inputs and tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := describeFunctions()
			if outputFmt == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			return renderFunctions(cmd.OutOrStdout(), infos)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}

func describeFunctions() []functionInfo {
	usedBy := map[string][]string{}
	for _, def := range stage.Definitions() {
		for _, fn := range def.Functions {
			usedBy[fn] = append(usedBy[fn], def.ID)
		}
	}

	var infos []functionInfo
	for _, def := range impact.Catalog() {
		infos = append(infos, functionInfo{
			Name:   def.Name,
			Sign:   def.Sign.String(),
			Inputs: def.Inputs,
			Tables: def.Tables,
			Stages: usedBy[def.Name],
		})
	}
	return infos
}

func renderFunctions(w io.Writer, infos []functionInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNCTION\tSIGN\tINPUTS\tPRESSURE TABLE\tSTAGES")
	for _, fi := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			fi.Name, fi.Sign, strings.Join(fi.Inputs, ", "), fi.Tables.Pressure, strings.Join(fi.Stages, ", "))
	}
	return tw.Flush()
}
