package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lib"), 0o755))
	scenarioPath := filepath.Join(dir, "test.yaml")

	content := `
name: test_scenario
description: "Test scenario for validation"
library: lib
steps:
  - op: add_element
    as: box
    args:
      type: container
      style: {width: 100}
  - op: delete_element
    args: {id: $box}
assertions:
  - type: element_count
    count: 0
`
	require.NoError(t, os.WriteFile(scenarioPath, []byte(content), 0o644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, filepath.Join(dir, "lib"), scenario.Library)
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, "add_element", scenario.Steps[0].Op)
	assert.Equal(t, "box", scenario.Steps[0].As)
	assert.Equal(t, "container", scenario.Steps[0].Args["type"])
	assert.Equal(t, "$box", scenario.Steps[1].Args["id"])
	require.Len(t, scenario.Assertions, 1)
	require.NotNil(t, scenario.Assertions[0].Count)
	assert.Equal(t, 0, *scenario.Assertions[0].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	content := `
name: s
description: d
library: nowhere
steps:
  - op: undo
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library not found")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: s\ndescription: d\nstep:\n  - op: undo\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: d\nsteps:\n  - op: undo\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: s\nsteps:\n  - op: undo\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: s\ndescription: d\n",
			want: "steps list is required",
		},
		{
			name: "missing op",
			yaml: "name: s\ndescription: d\nsteps:\n  - as: x\n",
			want: "op is required",
		},
		{
			name: "unknown op",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: explode\n",
			want: `unknown op "explode"`,
		},
		{
			name: "alias used before bound",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: delete_element\n    args: {id: $box}\n  - op: add_element\n    as: box\n    args: {type: text}\n",
			want: "alias $box is used before it is bound",
		},
		{
			name: "alias with dollar",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: add_element\n    as: $box\n    args: {type: text}\n",
			want: "without the $ prefix",
		},
		{
			name: "failing step binds alias",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: add_element\n    as: box\n    error: INVALID\n    args: {type: table}\n",
			want: "cannot bind an alias",
		},
		{
			name: "negative history depth",
			yaml: "name: s\ndescription: d\nhistory_depth: -1\nsteps:\n  - op: undo\n",
			want: "history_depth",
		},
		{
			name: "unknown assertion type",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: undo\nassertions:\n  - type: looks_nice\n",
			want: `unknown assertion type "looks_nice"`,
		},
		{
			name: "assertion alias never bound",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: undo\nassertions:\n  - type: has_instance\n    element: $card\n",
			want: "alias $card is never bound",
		},
		{
			name: "resolved_style without key",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: add_element\n    as: a\n    args: {type: text}\nassertions:\n  - type: resolved_style\n    element: $a\n",
			want: "element and key are required",
		},
		{
			name: "element_count without count",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: undo\nassertions:\n  - type: element_count\n",
			want: "non-negative count is required",
		},
		{
			name: "override_count without element",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: undo\nassertions:\n  - type: override_count\n    count: 1\n",
			want: "element is required",
		},
		{
			name: "can_undo without expect",
			yaml: "name: s\ndescription: d\nsteps:\n  - op: undo\nassertions:\n  - type: can_undo\n",
			want: "expect is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSubstitute(t *testing.T) {
	aliases := map[string]string{"box": "el-1", "label": "el-2"}

	got, err := substitute(map[string]any{
		"id":    "$box",
		"ids":   []any{"$box", "$label", "plain"},
		"style": map[string]any{"color": "red", "width": 10},
		"price": "$",
	}, aliases)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":    "el-1",
		"ids":   []any{"el-1", "el-2", "plain"},
		"style": map[string]any{"color": "red", "width": 10},
		"price": "$",
	}, got)

	_, err = substitute(map[string]any{"id": "$ghost"}, aliases)
	assert.EqualError(t, err, "alias $ghost is not bound")
}

func TestAliasRefs(t *testing.T) {
	refs := aliasRefs(map[string]any{
		"id":  "$a",
		"ids": []any{"$b", "c"},
	})
	assert.ElementsMatch(t, []string{"a", "b"}, refs)
}
