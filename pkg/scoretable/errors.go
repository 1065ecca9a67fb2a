package scoretable

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTable is returned when reference data cannot be turned into
	// a score table.
	ErrMalformedTable = errors.New("malformed score table")
	// ErrOutOfDomain is returned when an impact value falls outside the
	// breakpoints of a pressure table.
	ErrOutOfDomain = errors.New("impact value outside table domain")
	// ErrNoMatchingBand is returned when no band of a banded receptor score
	// has an upper bound above the impact value.
	ErrNoMatchingBand = errors.New("no matching receptor band")
)

// MalformedTableError describes why a table was rejected.
type MalformedTableError struct {
	Table  string
	Reason string
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("%v %s: %s", ErrMalformedTable, e.Table, e.Reason)
}

func (e *MalformedTableError) Unwrap() error { return ErrMalformedTable }

func malformed(table, format string, args ...any) error {
	return &MalformedTableError{Table: table, Reason: fmt.Sprintf(format, args...)}
}

// OutOfDomainError carries the rejected value and the table range.
type OutOfDomainError struct {
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("%v: %g not in [%g, %g]", ErrOutOfDomain, e.Value, e.Min, e.Max)
}

func (e *OutOfDomainError) Unwrap() error { return ErrOutOfDomain }

// NoMatchingBandError names the receptor whose bands were exhausted.
type NoMatchingBandError struct {
	Receptor string
	Impact   float64
}

func (e *NoMatchingBandError) Error() string {
	return fmt.Sprintf("%v: no score was found for receptor %s corresponding to function result %g",
		ErrNoMatchingBand, e.Receptor, e.Impact)
}

func (e *NoMatchingBandError) Unwrap() error { return ErrNoMatchingBand }
