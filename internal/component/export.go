package component

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/canvas/internal/model"
)

// FormatVersion is the version written into exported envelopes.
const FormatVersion = "1.0.0"

// formatConstraint is the range of envelope versions Import understands.
const formatConstraint = "^1.0"

// Envelope is the standalone JSON form of an exported component.
type Envelope struct {
	FormatVersion string           `json:"formatVersion"`
	Checksum      string           `json:"checksum"`
	Component     *model.Component `json:"component"`
}

// Export returns the component wrapped in a versioned, checksummed envelope.
func (r *Registry) Export(id string) ([]byte, error) {
	c, ok := r.Get(id)
	if !ok {
		return nil, model.NewNotFound("exportComponent", "component", id)
	}
	sum, err := model.ComponentHash(c)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", id, err)
	}
	env := Envelope{FormatVersion: FormatVersion, Checksum: sum, Component: c}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", id, err)
	}
	return data, nil
}

// ParseEnvelope decodes and verifies an exported component: the format
// version must satisfy ^1.0 and a non-empty checksum must match the content.
func ParseEnvelope(data []byte) (*model.Component, error) {
	const op = "importComponent"
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, model.NewInvalid(op, "", fmt.Sprintf("decode envelope: %v", err))
	}
	if env.Component == nil {
		return nil, model.NewInvalid(op, "", "envelope has no component")
	}

	v, err := semver.NewVersion(env.FormatVersion)
	if err != nil {
		return nil, model.NewInvalid(op, env.Component.ID, fmt.Sprintf("format version %q: %v", env.FormatVersion, err))
	}
	constraint, err := semver.NewConstraint(formatConstraint)
	if err != nil {
		return nil, fmt.Errorf("%s: constraint: %w", op, err)
	}
	if !constraint.Check(v) {
		return nil, model.NewInvalid(op, env.Component.ID, fmt.Sprintf("unsupported format version %s (want %s)", v, formatConstraint))
	}

	sum, err := model.ComponentHash(env.Component)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if env.Checksum != "" && sum != env.Checksum {
		return nil, model.NewCorrupt(op, fmt.Sprintf("checksum mismatch for component %q", env.Component.ID))
	}
	return env.Component, nil
}

// Import verifies an exported envelope and adds the component under fresh
// component and template ids, so re-importing never collides with the
// registry's existing templates.
func (r *Registry) Import(data []byte) (string, error) {
	c, err := ParseEnvelope(data)
	if err != nil {
		return "", err
	}
	return r.Add(c)
}
