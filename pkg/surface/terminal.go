package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidemark/tidemark/pkg/scoring"
	"github.com/tidemark/tidemark/pkg/stage"
)

// TerminalRenderer renders ProjectResult as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func scoreColor(eis float64) string {
	if noColor() {
		return ""
	}
	switch {
	case eis < 0:
		return colorRed
	case eis > 0:
		return colorGreen
	default:
		return colorYellow
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, result *stage.ProjectResult) error {
	title := "Tidemark assessment"
	if result.Name != "" {
		title += ": " + result.Name
	}
	fmt.Fprintf(w, "%s\n", bold(title))
	fmt.Fprintf(w, "%s\n\n", dim("run "+result.ID))

	for _, sr := range result.Stages {
		renderStage(w, sr)
	}

	fmt.Fprintln(w, bold("Project summary"))
	renderSummary(w, result.Summary)
	return nil
}

func renderStage(w io.Writer, sr *stage.Result) {
	fmt.Fprintf(w, "%s\n", bold("Stage: "+sr.Stage))

	assessed := 0
	for _, f := range sr.Functions {
		if !f.Assessed {
			fmt.Fprintf(w, "  %-32s %s\n", f.Name, dim("skipped, inputs missing"))
			continue
		}
		assessed++
		score := colored(fmt.Sprintf("%8.2f", f.EIS), scoreColor(f.EIS))
		fmt.Fprintf(w, "  %-32s %s  %s\n", f.Name, score, dim(confidenceLabel(f.Confidence)))

		if f.Assessment != nil && f.Assessment.Constraint != "" {
			fmt.Fprintf(w, "    weighted for %s\n", f.Assessment.Constraint)
		}
		if rec := f.Recommendations.GeneralRecommendation; rec != "" {
			for _, line := range wrapText(rec, 70) {
				fmt.Fprintf(w, "    %s\n", dim(line))
			}
		}
	}
	if assessed == 0 {
		fmt.Fprintln(w, "  No function could be assessed.")
	}
	fmt.Fprintln(w)

	if len(sr.Seasons) > 0 {
		renderSeasons(w, sr.Seasons)
	}

	renderSummary(w, sr.Summary)
}

func renderSeasons(w io.Writer, seasons []stage.FunctionSeason) {
	fmt.Fprintln(w, "  Seasonal scores:")
	fmt.Fprintf(w, "  %-32s", "")
	for _, m := range scoring.MonthNames() {
		fmt.Fprintf(w, " %7.7s", m)
	}
	fmt.Fprintln(w)
	for _, fs := range seasons {
		fmt.Fprintf(w, "  %-32s", fs.Function)
		for _, v := range fs.Months {
			fmt.Fprintf(w, " %s", colored(fmt.Sprintf("%7.1f", v), scoreColor(v)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func renderSummary(w io.Writer, s stage.Summary) {
	if s.NegativeImpact == nil && s.PositiveImpact == nil {
		fmt.Fprintln(w, "  No scores.")
		fmt.Fprintln(w)
		return
	}
	if s.NegativeImpact != nil {
		fmt.Fprintf(w, "  Negative impact  mean %s  worst %.2f  least %.2f\n",
			colored(fmt.Sprintf("%.2f", *s.NegativeImpact), colorRed),
			*s.MaxNegativeImpact, *s.MinNegativeImpact)
	}
	if s.PositiveImpact != nil {
		fmt.Fprintf(w, "  Positive impact  mean %s  best %.2f  least %.2f\n",
			colored(fmt.Sprintf("%.2f", *s.PositiveImpact), colorGreen),
			*s.MaxPositiveImpact, *s.MinPositiveImpact)
	}
	fmt.Fprintln(w)
}

func confidenceLabel(c scoring.Confidence) string {
	return fmt.Sprintf("confidence %d (%s)", int(c), c)
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
