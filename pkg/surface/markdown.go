package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidemark/tidemark/pkg/stage"
)

// MarkdownRenderer produces a Markdown report suitable for attaching to an
// environmental impact study.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, result *stage.ProjectResult) error {
	_, err := io.WriteString(w, buildMarkdownReport(result))
	return err
}

func buildMarkdownReport(result *stage.ProjectResult) string {
	var sb strings.Builder

	title := "Tidemark assessment"
	if result.Name != "" {
		title += ": " + result.Name
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, sr := range result.Stages {
		sb.WriteString(fmt.Sprintf("## %s\n\n", sr.Stage))
		sb.WriteString("| Function | EIS | Confidence | Recommendation |\n|----------|-----|------------|----------------|\n")
		for _, f := range sr.Functions {
			if !f.Assessed {
				sb.WriteString(fmt.Sprintf("| %s | _skipped_ | | |\n", f.Name))
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %d | %s |\n",
				f.Name, f.EIS, int(f.Confidence), escapeCell(f.Recommendations.GeneralRecommendation)))
		}
		sb.WriteString("\n")
		writeSummary(&sb, sr.Summary)
	}

	sb.WriteString("## Project summary\n\n")
	writeSummary(&sb, result.Summary)
	return sb.String()
}

func writeSummary(sb *strings.Builder, s stage.Summary) {
	if s.NegativeImpact == nil && s.PositiveImpact == nil {
		sb.WriteString("_No scores._\n\n")
		return
	}
	sb.WriteString("| Impact | Mean | Max | Min |\n|--------|------|-----|-----|\n")
	if s.NegativeImpact != nil {
		sb.WriteString(fmt.Sprintf("| Negative | %.2f | %.2f | %.2f |\n",
			*s.NegativeImpact, *s.MaxNegativeImpact, *s.MinNegativeImpact))
	}
	if s.PositiveImpact != nil {
		sb.WriteString(fmt.Sprintf("| Positive | %.2f | %.2f | %.2f |\n",
			*s.PositiveImpact, *s.MaxPositiveImpact, *s.MinPositiveImpact))
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
