package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewElementAppliesDefaults(t *testing.T) {
	el := NewElement("b1", TypeButton)

	assert.Equal(t, ButtonProps{Label: "Button"}, el.Props)
	assert.Equal(t, String("pointer"), el.Style["cursor"])
	assert.True(t, el.IsRoot())
	assert.NotNil(t, el.Children)
}

func TestElementMarshalRootParentNull(t *testing.T) {
	el := NewElement("t1", TypeText)
	el.Props = TextProps{Content: "Hi", Tag: "h1"}

	data, err := json.Marshal(el)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "t1",
		"type": "text",
		"parentId": null,
		"children": [],
		"style": {"fontSize": 16},
		"props": {"content": "Hi", "tag": "h1"}
	}`, string(data))
}

func TestElementUnmarshal(t *testing.T) {
	var el Element
	err := json.Unmarshal([]byte(`{
		"id": "b1",
		"type": "button",
		"parentId": "c1",
		"children": [],
		"style": {"color": "red", "margin": null},
		"props": {"label": "Buy"}
	}`), &el)
	require.NoError(t, err)

	assert.Equal(t, "c1", el.ParentID)
	assert.Equal(t, ButtonProps{Label: "Buy"}, el.Props)
	assert.Equal(t, Record{"color": String("red")}, el.Style, "null style entries are dropped")
}

func TestElementUnmarshalRejectsUnknownType(t *testing.T) {
	var el Element
	err := json.Unmarshal([]byte(`{"id":"x","type":"video","parentId":null,"children":[],"style":{},"props":{}}`), &el)
	assert.Error(t, err)
}

func TestElementUnmarshalRejectsForeignProps(t *testing.T) {
	var el Element
	err := json.Unmarshal([]byte(`{"id":"x","type":"text","parentId":null,"children":[],"style":{},"props":{"label":"x"}}`), &el)
	assert.Error(t, err)
}

func TestElementUnmarshalMissingPropsUsesDefaults(t *testing.T) {
	var el Element
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","type":"image","parentId":null,"children":[],"style":{}}`), &el))
	assert.Equal(t, DefaultProps(TypeImage), el.Props)
}

func TestElementCloneIsDeep(t *testing.T) {
	el := NewElement("c1", TypeContainer)
	el.Children = []string{"a"}

	clone := el.Clone()
	clone.Children[0] = "b"
	clone.Style["display"] = String("flex")

	assert.Equal(t, "a", el.Children[0])
	assert.Equal(t, String("block"), el.Style["display"])
}

func TestDescendantsPreOrder(t *testing.T) {
	elements := tree(t,
		"root", "",
		"a", "root",
		"a1", "a",
		"b", "root",
	)

	assert.Equal(t, []string{"root", "a", "a1", "b"}, Descendants(elements, "root"))
	assert.Equal(t, []string{"a", "a1"}, Descendants(elements, "a"))
	assert.Empty(t, Descendants(elements, "missing"))
}

// tree builds containers from (id, parent) pairs, appending each child to
// its parent in argument order.
func tree(t *testing.T, pairs ...string) map[string]*Element {
	t.Helper()
	require.True(t, len(pairs)%2 == 0)

	out := make(map[string]*Element)
	for i := 0; i < len(pairs); i += 2 {
		id, parent := pairs[i], pairs[i+1]
		el := NewElement(id, TypeContainer)
		el.ParentID = parent
		out[id] = el
		if parent != "" {
			p, ok := out[parent]
			require.True(t, ok, "parent %s must precede %s", parent, id)
			p.Children = append(p.Children, id)
		}
	}
	return out
}
