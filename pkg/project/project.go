// Package project loads project files: the site observations and the
// per-stage inputs of one offshore farm assessment.
package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/tidemark/tidemark/pkg/impact"
	"github.com/tidemark/tidemark/pkg/observation"
	"github.com/tidemark/tidemark/pkg/stage"
)

// Project is a decoded project file.
type Project struct {
	Name string `yaml:"name" json:"name"`
	// Protected maps protected species to whether they were observed.
	Protected map[string]bool `yaml:"protected" json:"protected"`
	// Receptors is the receptor observation table, relative to the project
	// file. Empty when no survey was made.
	Receptors string `yaml:"receptors" json:"receptors"`
	// Constraints maps impact function names to a weighting parameter.
	Constraints map[string]string `yaml:"constraints" json:"constraints"`
	// Stages maps stage IDs to the raw inputs of that stage.
	Stages map[string]map[string]any `yaml:"stages" json:"stages"`

	dir string
}

// Load reads, validates and decodes a project file. Files ending in .json
// are read as JSON, anything else as YAML.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	p, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Parse validates and decodes project data. name selects the format and
// labels errors.
func Parse(name string, data []byte) (*Project, error) {
	var doc any
	if strings.EqualFold(filepath.Ext(name), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing project %s: %w", name, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing project %s: %w", name, err)
		}
	}

	// Round-trip through JSON so the validator sees JSON numbers and
	// string-keyed objects only.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &ValidationError{File: name, Problems: []string{err.Error()}}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing project %s: %w", name, err)
	}
	if problems := validate(inst); len(problems) > 0 {
		return nil, &ValidationError{File: name, Problems: problems}
	}

	var p Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding project %s: %w", name, err)
	}
	return &p, nil
}

// StageIDs returns the stages present in the project, in lifecycle order.
func (p *Project) StageIDs() []string {
	var ids []string
	for _, id := range stage.IDs() {
		if _, ok := p.Stages[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Inputs returns the raw inputs of a stage.
func (p *Project) Inputs(stageID string) impact.Inputs {
	in := make(impact.Inputs, len(p.Stages[stageID]))
	for k, v := range p.Stages[stageID] {
		in[k] = v
	}
	return in
}

// ProtectedTable builds the protected species table, species sorted by name.
func (p *Project) ProtectedTable() (*observation.ProtectedTable, error) {
	names := make([]string, 0, len(p.Protected))
	for name := range p.Protected {
		names = append(names, name)
	}
	sort.Strings(names)

	species := make([]observation.Species, len(names))
	for i, name := range names {
		species[i] = observation.Species{Name: name, Observed: p.Protected[name]}
	}
	return observation.NewProtectedTable(species...)
}

// ReceptorTable loads the receptor observation table, or returns nil when
// the project has none.
func (p *Project) ReceptorTable() (*observation.ReceptorTable, error) {
	if p.Receptors == "" {
		return nil, nil
	}
	path := p.Receptors
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, path)
	}
	return observation.LoadReceptors(path)
}

// Observations assembles the site data shared by every stage.
func (p *Project) Observations() (stage.Observations, error) {
	protected, err := p.ProtectedTable()
	if err != nil {
		return stage.Observations{}, err
	}
	receptors, err := p.ReceptorTable()
	if err != nil {
		return stage.Observations{}, fmt.Errorf("loading receptor observations: %w", err)
	}
	return stage.Observations{
		Protected:   protected,
		Receptors:   receptors,
		Constraints: p.Constraints,
	}, nil
}
