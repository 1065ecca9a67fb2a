package surface

import (
	"encoding/json"
	"io"

	"github.com/tidemark/tidemark/pkg/stage"
)

// JSONRenderer marshals ProjectResult to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, result *stage.ProjectResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
