// Package impact turns raw project inputs into impact values. Each pressure
// is described by a Definition: its name, whether it is adverse or
// beneficial, the reference tables that score it and the inputs it reads.
package impact

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var (
	// ErrMissingInput is returned when a required input key is absent or nil.
	ErrMissingInput = errors.New("missing input")
	// ErrInvalidInput is returned when an input cannot be used, for example a
	// non-positive area or mismatched coordinate rows.
	ErrInvalidInput = errors.New("invalid input")
)

// MissingInputError lists every required key that was not provided.
type MissingInputError struct {
	Function string
	Missing  []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%v for %s: %s", ErrMissingInput, e.Function, strings.Join(e.Missing, ", "))
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// Sign is the direction of an impact on the environment.
type Sign int

const (
	Adverse    Sign = -1
	Beneficial Sign = 1
)

func (s Sign) String() string {
	if s == Beneficial {
		return "beneficial"
	}
	return "adverse"
}

// Inputs are raw named values, as decoded from a project file.
type Inputs map[string]any

// Tables names the reference tables of a function, relative to the stage
// data directory.
type Tables struct {
	Pressure  string `json:"pressure"`
	Weighting string `json:"weighting"`
	Receptor  string `json:"receptor"`
}

// TablesFor returns the conventional table file names for a slug.
func TablesFor(slug string) Tables {
	return Tables{
		Pressure:  slug + "_pressure.csv",
		Weighting: slug + "_weighting.csv",
		Receptor:  slug + "_receptor.csv",
	}
}

// Definition describes one impact function.
type Definition struct {
	Name   string
	Slug   string
	Sign   Sign
	Tables Tables
	// Inputs are the required input keys, in documentation order.
	Inputs []string
	// Compute maps validated inputs to an impact value.
	Compute func(Inputs) (float64, error)
}

// Missing returns the required keys that are absent or nil, sorted.
func (d Definition) Missing(in Inputs) []string {
	var missing []string
	for _, key := range d.Inputs {
		if v, ok := in[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// Evaluate checks that every required input is present and computes the
// impact value.
func (d Definition) Evaluate(in Inputs) (float64, error) {
	if missing := d.Missing(in); len(missing) > 0 {
		return 0, &MissingInputError{Function: d.Name, Missing: missing}
	}
	v, err := d.Compute(in)
	if err != nil {
		return 0, fmt.Errorf("evaluating %s: %w", d.Name, err)
	}
	return v, nil
}

// decode converts loosely typed inputs into a struct tagged with input keys.
// Numeric strings, integers and boolean words are accepted.
func decode[T any](in Inputs) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		TagName:          "input",
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(map[string]any(in)); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return out, nil
}

func positive(name string, v float64) error {
	if !(v > 0) {
		return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidInput, name, v)
	}
	return nil
}
