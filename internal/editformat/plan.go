// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editformat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/go-splice/pkg/types"
)

// Plan is a batch of edits read from YAML:
//
//	document: chapters/one.md
//	edits:
//	  - replace: "teh dog"
//	    with: "the dog"
//	  - after: "The storm passed."
//	    insert: " Nobody spoke."
//	  - document: chapters/two.md
//	    replace: "colour"
//	    with: "color"
type Plan struct {
	Document string     `yaml:"document"`
	Edits    []PlanEdit `yaml:"edits"`
}

// PlanEdit is one entry of a Plan. Exactly one of Replace or After is set.
type PlanEdit struct {
	Document string `yaml:"document,omitempty"`
	Replace  string `yaml:"replace,omitempty"`
	With     string `yaml:"with,omitempty"`
	After    string `yaml:"after,omitempty"`
	Insert   string `yaml:"insert,omitempty"`
}

// LoadPlan reads and validates a YAML plan. Relative document paths are
// resolved against the plan file's directory.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	plan.resolve(filepath.Dir(path))
	return plan, nil
}

// ParsePlan decodes and validates plan YAML without touching the filesystem.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if len(plan.Edits) == 0 {
		return nil, errors.New("plan has no edits")
	}
	for i, e := range plan.Edits {
		if err := e.validate(plan.Document); err != nil {
			return nil, fmt.Errorf("edit %d: %w", i+1, err)
		}
	}
	return &plan, nil
}

func (e PlanEdit) validate(defaultDoc string) error {
	switch {
	case e.Document == "" && defaultDoc == "":
		return errors.New("no document given")
	case e.Replace != "" && e.After != "":
		return errors.New("replace and after are mutually exclusive")
	case e.Replace == "" && e.After == "":
		return errors.New("one of replace or after is required")
	case e.After != "" && e.Insert == "":
		return errors.New("after requires insert text")
	case e.Replace != "" && e.Insert != "":
		return errors.New("insert is only valid with after")
	}
	return nil
}

func (p *Plan) resolve(dir string) {
	abs := func(doc string) string {
		if doc == "" || filepath.IsAbs(doc) {
			return doc
		}
		return filepath.Join(dir, doc)
	}
	p.Document = abs(p.Document)
	for i := range p.Edits {
		p.Edits[i].Document = abs(p.Edits[i].Document)
	}
}

// ToEdits converts the plan into edits, in order.
func (p *Plan) ToEdits() []types.Edit {
	edits := make([]types.Edit, 0, len(p.Edits))
	for _, e := range p.Edits {
		doc := e.Document
		if doc == "" {
			doc = p.Document
		}
		if e.After != "" {
			edits = append(edits, types.Edit{
				Kind:       types.EditInsert,
				FilePath:   doc,
				Anchor:     e.After,
				NewContent: e.Insert,
			})
			continue
		}
		edits = append(edits, types.Edit{
			Kind:       types.EditReplace,
			FilePath:   doc,
			OldContent: e.Replace,
			NewContent: e.With,
		})
	}
	return edits
}
