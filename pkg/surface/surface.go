// Package surface defines output rendering for Tidemark results.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"

	"github.com/tidemark/tidemark/pkg/stage"
)

// Renderer produces formatted output from a ProjectResult.
type Renderer interface {
	// Render writes the formatted project result to the writer.
	Render(w io.Writer, result *stage.ProjectResult) error
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "text", "":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
