package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvas/internal/model"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_AddAndStyle(t *testing.T) {
	s := mustParse(t, `
name: add_and_style
description: add two elements and style one
steps:
  - op: add_element
    as: box
    args: {type: container, style: {width: 320}}
  - op: add_element
    as: text
    args: {type: text, parent: $box, props: {content: Hello, tag: h1}}
  - op: update_style
    args: {id: $text, style: {color: "#333"}}
assertions:
  - type: element_count
    count: 2
  - type: root_count
    count: 1
  - type: resolved_style
    element: $box
    key: width
    value: 320
  - type: resolved_style
    element: $text
    key: color
    value: "#333"
  - type: resolved_prop
    element: $text
    key: tag
    value: h1
  - type: tree_valid
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	assert.Equal(t, map[string]string{"box": "el-1", "text": "el-2"}, result.Aliases)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, TraceEvent{Step: 0, Op: "add_element", As: "box", ID: "el-1"}, result.Trace[0])
	assert.Equal(t, TraceEvent{Step: 2, Op: "update_style"}, result.Trace[2])

	assert.Equal(t, []string{"el-1"}, result.Document.RootElementIDs)
	assert.Len(t, result.Document.Elements, 2)
}

func TestRun_UnexpectedErrorIsRecorded(t *testing.T) {
	s := mustParse(t, `
name: unexpected
description: a rejected step fails the scenario but execution continues
steps:
  - op: delete_element
    args: {id: ghost}
  - op: add_element
    args: {type: text}
assertions:
  - type: element_count
    count: 1
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[0] delete_element: unexpected error")
	assert.Equal(t, "REFERENCE", result.Trace[0].Error)
	assert.Equal(t, "el-1", result.Trace[1].ID)
}

func TestRun_ExpectedError(t *testing.T) {
	s := mustParse(t, `
name: expected
description: declared failures pass only with the declared code
steps:
  - op: add_element
    args: {type: table}
    error: INVALID
  - op: delete_element
    args: {id: ghost}
    error: STRUCTURAL
  - op: add_element
    args: {type: text}
    error: INVALID
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[1] delete_element: expected error STRUCTURAL, got REFERENCE")
	assert.Contains(t, result.Errors[1], "steps[2] add_element: expected error INVALID, got success")
	assert.Equal(t, "INVALID", result.Trace[0].Error)
}

func TestRun_UnknownArgIsRejected(t *testing.T) {
	s := mustParse(t, `
name: typo
description: argument typos are rejected
steps:
  - op: add_element
    args: {type: text, parnet: x}
    error: INVALID
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_AliasOfFailedStep(t *testing.T) {
	s := mustParse(t, `
name: failed_alias
description: steps using an alias whose step failed are reported and skipped
steps:
  - op: add_element
    as: box
    args: {type: table}
  - op: delete_element
    args: {id: $box}
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[1], "alias $box is not bound")
	assert.Len(t, result.Trace, 2)
}

func TestRun_UndoRedo(t *testing.T) {
	s := mustParse(t, `
name: undo_redo
description: undo and redo step through history
history_depth: 1
steps:
  - op: add_element
    as: a
    args: {type: container}
  - op: set_z_index
    args: {id: $a, z: 5}
  - op: undo
  - op: undo
    error: INVALID
  - op: redo
assertions:
  - type: resolved_style
    element: $a
    key: zIndex
    value: 5
  - type: can_undo
    expect: true
  - type: can_redo
    expect: false
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_SelectionIsNotRecorded(t *testing.T) {
	s := mustParse(t, `
name: selection
description: selection and hover changes are not history entries
steps:
  - op: add_element
    as: a
    args: {type: container}
  - op: add_to_selection
    args: {id: $a}
  - op: hover
    args: {id: $a}
  - op: add_to_selection
    args: {id: ghost}
  - op: undo
assertions:
  - type: element_count
    count: 0
  - type: can_undo
    expect: false
  - type: can_redo
    expect: true
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_SelectionAndComponents(t *testing.T) {
	s := mustParse(t, `
name: from_selection
description: a component made from the selection can be placed and edited
steps:
  - op: add_element
    as: box
    args: {type: container, style: {backgroundColor: "#fff"}}
  - op: add_element
    args: {type: button, parent: $box}
  - op: select
    args: {ids: [$box]}
  - op: create_component_from_selection
    as: comp
    args: {name: Box, category: layout}
  - op: add_variant
    as: red
    args: {component: $comp, name: Red, style: {backgroundColor: red}}
  - op: create_instance
    as: inst
    args: {component: $comp}
  - op: set_variant
    args: {id: $inst, variant: $red}
  - op: update_style
    args: {id: $inst, style: {width: 50}}
  - op: reset_property
    args: {id: $inst, scope: style, key: width}
  - op: set_override
    args: {id: $inst, style: {opacity: 0.5}}
  - op: push_to_master
    args: {id: $inst, scope: style, key: opacity}
  - op: create_instance
    as: second
    args: {component: $comp}
assertions:
  - type: resolved_style
    element: $inst
    key: backgroundColor
    value: red
  - type: resolved_style
    element: $inst
    key: width
    value: null
  - type: resolved_style
    element: $second
    key: opacity
    value: 0.5
  - type: resolved_style
    element: $second
    key: backgroundColor
    value: "#fff"
  - type: override_count
    element: $inst
    count: 1
  - type: has_instance
    element: $second
  - type: element_count
    count: 6
  - type: root_count
    count: 3
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.NotEmpty(t, result.Aliases["comp"])
	assert.NotEmpty(t, result.Aliases["red"])
}

func TestRun_PropValues(t *testing.T) {
	s := mustParse(t, `
name: prop_values
description: bound props route values onto template elements
library: testdata/library
steps:
  - op: create_instance
    as: card
    args: {component: Card}
  - op: set_prop_value
    args: {id: $card, prop: heading, value: 42}
    error: INVALID
  - op: set_prop_value
    args: {id: $card, prop: heading, value: Hello}
  - op: reset_prop_value
    args: {id: $card, prop: heading}
  - op: reconcile_prop_values
    args: {component: Card}
assertions:
  - type: resolved_prop
    element: el-2
    key: content
    value: Welcome
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_LibraryErrors(t *testing.T) {
	s := mustParse(t, `
name: bad_library
description: a missing library fails setup
library: testdata/nowhere
steps:
  - op: undo
`)
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load library")
}

func TestRun_ScenarioFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.NoError(t, model.ValidateTree(result.Document.Elements, result.Document.RootElementIDs))
		})
	}
}
