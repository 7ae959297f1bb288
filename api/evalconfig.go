// Package api defines the external schemas eval-gate consumes: the YAML
// evaluation config and the JSON output file the evaluation CLI writes.
package api

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FileScheme marks a string value as a file reference, resolved relative to
// the config file's own directory.
const FileScheme = "file://"

// EvalConfig is the subset of the evaluation config schema that can declare
// external file references. Unknown fields are ignored.
type EvalConfig struct {
	Description string     `yaml:"description"`
	Providers   []Ref      `yaml:"providers"`
	Prompts     []Ref      `yaml:"prompts"`
	Tests       []TestCase `yaml:"tests"`
	DefaultTest *TestCase  `yaml:"defaultTest"`
}

// Ref is a config entry that may be a bare string or an object. The object
// form carries an id (providers) or an explicit file field (prompts).
type Ref struct {
	Value string // bare string form, possibly file://-prefixed
	ID    string // object form: provider id
	File  string // object form: explicit file path, no scheme required
}

// UnmarshalYAML accepts both the scalar and the mapping form of a Ref.
func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&r.Value)
	case yaml.MappingNode:
		var obj struct {
			ID   string `yaml:"id"`
			File string `yaml:"file"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		r.ID = obj.ID
		r.File = obj.File
		return nil
	default:
		return fmt.Errorf("unsupported YAML node kind %d for reference", node.Kind)
	}
}

// TestCase is one entry of the tests list, or the defaultTest block.
type TestCase struct {
	Description string         `yaml:"description"`
	Vars        map[string]any `yaml:"vars"`
	Assert      []Assertion    `yaml:"assert"`
}

// Assertion is a single assert entry; Value may be a file:// string.
type Assertion struct {
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}
