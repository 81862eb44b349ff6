package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLastWriteWins(t *testing.T) {
	master := Record{"color": String("blue"), "padding": Number(8)}
	variant := Record{"color": String("red")}
	override := Record{"color": String("green"), "margin": Number(4)}

	got := Merge(master, variant, override)

	assert.Equal(t, Record{
		"color":   String("green"),
		"padding": Number(8),
		"margin":  Number(4),
	}, got)
}

func TestMergeNilDeletes(t *testing.T) {
	got := Merge(Record{"color": String("blue"), "width": Number(10)}, Record{"color": nil})

	_, ok := got["color"]
	assert.False(t, ok, "nil value must unset the key")
	assert.Equal(t, Number(10), got["width"])
}

func TestMergeReplacesCompositesWholesale(t *testing.T) {
	base := Record{"shadow": Object{"x": Number(1), "y": Number(2)}}
	layer := Record{"shadow": Object{"x": Number(5)}}

	got := Merge(base, layer)

	assert.Equal(t, Object{"x": Number(5)}, got["shadow"], "objects are atomic, never deep merged")
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	list := List{String("a")}
	base := Record{"slides": list}

	got := Merge(base)
	got["slides"].(List)[0] = String("b")

	assert.Equal(t, String("a"), list[0])
}

func TestMergeNoLayers(t *testing.T) {
	got := Merge()
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecordUnmarshalKeepsNull(t *testing.T) {
	var r Record
	require.NoError(t, r.UnmarshalJSON([]byte(`{"color":null,"width":12}`)))

	v, present := r["color"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, Number(12), r["width"])

	assert.Equal(t, Record{"width": Number(12)}, r.Compact())
}

func TestEqualRecords(t *testing.T) {
	assert.True(t, EqualRecords(nil, Record{}))
	assert.True(t, EqualRecords(Record{"a": List{Number(1)}}, Record{"a": List{Number(1)}}))
	assert.False(t, EqualRecords(Record{"a": Number(1)}, Record{"a": String("1")}))
	assert.False(t, EqualRecords(Record{"a": Number(1)}, Record{"b": Number(1)}))
}

func TestRecordFromMap(t *testing.T) {
	r, err := RecordFromMap(map[string]any{
		"fontSize": 16,
		"color":    "red",
		"hidden":   true,
		"unset":    nil,
	})
	require.NoError(t, err)

	assert.Equal(t, Number(16), r["fontSize"])
	assert.Equal(t, String("red"), r["color"])
	assert.Equal(t, Bool(true), r["hidden"])
	v, present := r["unset"]
	assert.True(t, present)
	assert.Nil(t, v)
}
