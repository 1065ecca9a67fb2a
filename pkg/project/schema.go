package project

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema.json
var schemaJSON []byte

const schemaName = "project.schema.json"

// ErrInvalidProject is returned when a project file does not match the
// project schema.
var ErrInvalidProject = errors.New("invalid project file")

// ValidationError lists every schema violation of a project file, each
// prefixed by its location in the document.
type ValidationError struct {
	File     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v %s:\n  %s", ErrInvalidProject, e.File, strings.Join(e.Problems, "\n  "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidProject }

var (
	printer       = message.NewPrinter(language.English)
	projectSchema = mustCompileSchema()
)

func mustCompileSchema() *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		panic(fmt.Sprintf("parsing embedded %s: %v", schemaName, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaName, doc); err != nil {
		panic(fmt.Sprintf("adding %s: %v", schemaName, err))
	}
	s, err := c.Compile(schemaName)
	if err != nil {
		panic(fmt.Sprintf("compiling %s: %v", schemaName, err))
	}
	return s
}

// validate checks a decoded document against the project schema and returns
// the leaf violations.
func validate(doc any) []string {
	err := projectSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var problems []string
	collect(ve, &problems)
	return problems
}

func collect(ve *jsonschema.ValidationError, problems *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*problems = append(*problems, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, c := range ve.Causes {
		collect(c, problems)
	}
}
