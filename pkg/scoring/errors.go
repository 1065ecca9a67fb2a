package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingReceptorData is returned when the receptor observations do not
// cover every receptor of a function's receptor table.
var ErrMissingReceptorData = errors.New("missing receptor observation data")

// MissingReceptorDataError names the receptors without observations.
type MissingReceptorDataError struct {
	Function string
	Missing  []string
}

func (e *MissingReceptorDataError) Error() string {
	return fmt.Sprintf("%v: observation data for all receptors of %s must be given, missing: %s",
		ErrMissingReceptorData, e.Function, strings.Join(e.Missing, ", "))
}

func (e *MissingReceptorDataError) Unwrap() error { return ErrMissingReceptorData }
