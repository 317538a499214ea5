// Package templates loads report template definitions. Built-in templates
// are always available; user-authored ones live as YAML files in a
// directory and are read-only inputs to the pipeline.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scribelab/chronicler/internal/model"
)

// Store holds the available template definitions.
type Store struct {
	byID  map[string]model.TemplateDefinition
	order []string
}

// Load builds a store from the builtins plus any YAML files found in dir.
// A user template with a builtin's ID overrides the builtin. An empty dir
// is not an error; a corrupt file is skipped with its error reported.
func Load(dir string) (*Store, []error) {
	s := &Store{byID: make(map[string]model.TemplateDefinition)}
	for _, t := range Builtin() {
		s.add(t)
	}

	var warnings []error
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				warnings = append(warnings, fmt.Errorf("read templates dir: %w", err))
			}
			return s, warnings
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
				continue
			}
			t, err := readFile(filepath.Join(dir, name))
			if err != nil {
				warnings = append(warnings, fmt.Errorf("skipping template %s: %w", name, err))
				continue
			}
			s.add(t)
		}
	}
	return s, warnings
}

func readFile(path string) (model.TemplateDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TemplateDefinition{}, err
	}
	var t model.TemplateDefinition
	if err := yaml.Unmarshal(data, &t); err != nil {
		return model.TemplateDefinition{}, err
	}
	if t.ID == "" {
		return model.TemplateDefinition{}, fmt.Errorf("template has no id")
	}
	return t, nil
}

func (s *Store) add(t model.TemplateDefinition) {
	if _, exists := s.byID[t.ID]; !exists {
		s.order = append(s.order, t.ID)
	}
	s.byID[t.ID] = t
}

// Get returns the template with the given ID.
func (s *Store) Get(id string) (model.TemplateDefinition, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// All returns every template, builtins first, then user templates sorted by
// load order.
func (s *Store) All() []model.TemplateDefinition {
	out := make([]model.TemplateDefinition, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// WriteFile saves a template definition as YAML, for `templates init`.
func WriteFile(dir string, t model.TemplateDefinition) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create templates dir: %w", err)
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal template: %w", err)
	}
	path := filepath.Join(dir, t.ID+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write template: %w", err)
	}
	return path, nil
}

// IDs returns the sorted template identifiers, for error messages.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
