package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines an editing scenario: a sequence of session operations
// followed by assertions on the resulting canvas.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Library is an optional directory of CUE component files loaded into
	// the registry before the first step. Relative paths are resolved
	// against the scenario file's directory.
	Library string `yaml:"library,omitempty"`

	// HistoryDepth bounds the undo stack. Zero uses the session default.
	HistoryDepth int `yaml:"history_depth,omitempty"`

	// Steps are executed in order against one session.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one session operation.
type Step struct {
	// Op names the operation, e.g. "add_element" or "set_override".
	Op string `yaml:"op"`

	// As binds the id produced by the step to an alias. Later steps and
	// assertions refer to it as "$alias".
	As string `yaml:"as,omitempty"`

	// Args are the operation arguments. String values of the form
	// "$alias" are replaced by the bound id before the step runs.
	Args map[string]any `yaml:"args,omitempty"`

	// Error, if set, is the error code the step must fail with
	// (e.g. "STRUCTURAL"). A step without it must succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type; see the Assert constants.
	Type string `yaml:"type"`

	// Element is an element id or "$alias".
	Element string `yaml:"element,omitempty"`

	// Key is the style or props key (resolved_style, resolved_prop).
	Key string `yaml:"key,omitempty"`

	// Value is the expected resolved value. Null asserts the key is absent.
	Value any `yaml:"value,omitempty"`

	// Count is the expected number (element_count, root_count,
	// override_count).
	Count *int `yaml:"count,omitempty"`

	// Expect is the expected truth value (can_undo, can_redo,
	// has_instance). has_instance defaults to true.
	Expect *bool `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertResolvedStyle = "resolved_style"
	AssertResolvedProp  = "resolved_prop"
	AssertElementCount  = "element_count"
	AssertRootCount     = "root_count"
	AssertTreeValid     = "tree_valid"
	AssertCanUndo       = "can_undo"
	AssertCanRedo       = "can_redo"
	AssertHasInstance   = "has_instance"
	AssertOverrideCount = "override_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Library != "" && !filepath.IsAbs(scenario.Library) {
		scenario.Library = filepath.Join(filepath.Dir(path), scenario.Library)
	}
	if scenario.Library != "" {
		if _, err := os.Stat(scenario.Library); err != nil {
			return nil, fmt.Errorf("invalid scenario: library not found: %s", scenario.Library)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Library paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// Aliases must be bound before they are used.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.HistoryDepth < 0 {
		return fmt.Errorf("history_depth must be non-negative")
	}

	bound := make(map[string]bool)
	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if _, ok := ops[step.Op]; !ok {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		for _, alias := range aliasRefs(step.Args) {
			if !bound[alias] {
				return fmt.Errorf("steps[%d]: alias $%s is used before it is bound", i, alias)
			}
		}
		if step.As != "" {
			if strings.HasPrefix(step.As, "$") {
				return fmt.Errorf("steps[%d]: as names an alias without the $ prefix", i)
			}
			if step.Error != "" {
				return fmt.Errorf("steps[%d]: a failing step cannot bind an alias", i)
			}
			bound[step.As] = true
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, bound); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, bound map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if alias, ok := strings.CutPrefix(a.Element, "$"); ok && !bound[alias] {
		return fmt.Errorf("assertions[%d]: alias $%s is never bound", index, alias)
	}

	switch a.Type {
	case AssertResolvedStyle, AssertResolvedProp:
		if a.Element == "" || a.Key == "" {
			return fmt.Errorf("assertions[%d]: element and key are required for %s", index, a.Type)
		}
	case AssertElementCount, AssertRootCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: a non-negative count is required for %s", index, a.Type)
		}
	case AssertOverrideCount:
		if a.Element == "" {
			return fmt.Errorf("assertions[%d]: element is required for %s", index, a.Type)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: a non-negative count is required for %s", index, a.Type)
		}
	case AssertCanUndo, AssertCanRedo:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertHasInstance:
		if a.Element == "" {
			return fmt.Errorf("assertions[%d]: element is required for %s", index, a.Type)
		}
	case AssertTreeValid:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// aliasRefs returns the alias names referenced anywhere in args.
func aliasRefs(v any) []string {
	var out []string
	switch val := v.(type) {
	case string:
		if alias, ok := strings.CutPrefix(val, "$"); ok && alias != "" {
			out = append(out, alias)
		}
	case []any:
		for _, elem := range val {
			out = append(out, aliasRefs(elem)...)
		}
	case map[string]any:
		for _, elem := range val {
			out = append(out, aliasRefs(elem)...)
		}
	}
	return out
}

// substitute returns a copy of v with every "$alias" string replaced by its
// bound id.
func substitute(v any, aliases map[string]string) (any, error) {
	switch val := v.(type) {
	case string:
		alias, ok := strings.CutPrefix(val, "$")
		if !ok || alias == "" {
			return val, nil
		}
		id, ok := aliases[alias]
		if !ok {
			return nil, fmt.Errorf("alias $%s is not bound", alias)
		}
		return id, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			s, err := substitute(elem, aliases)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			s, err := substitute(elem, aliases)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	default:
		return v, nil
	}
}
