package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAnyConvertsPlainValues(t *testing.T) {
	v, err := FromAny(map[string]any{
		"list": []any{"a", 1, true},
		"skip": nil,
	})
	require.NoError(t, err)

	assert.Equal(t, Object{
		"list": List{String("a"), Number(1), Bool(true)},
	}, v)
}

func TestFromAnyRejectsNonFinite(t *testing.T) {
	_, err := FromAny(math.NaN())
	assert.Error(t, err)

	_, err = FromAny(math.Inf(1))
	assert.Error(t, err)
}

func TestFromAnyRejectsNullInList(t *testing.T) {
	_, err := FromAny([]any{"a", nil})
	assert.Error(t, err)
}

func TestFromAnyRejectsUnsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.Error(t, err)
}

func TestDecodeValue(t *testing.T) {
	v, err := DecodeValue([]byte(`{"a":[1.5,"x"],"b":false}`))
	require.NoError(t, err)
	assert.Equal(t, Object{"a": List{Number(1.5), String("x")}, "b": Bool(false)}, v)

	v, err = DecodeValue([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, String("")))
	assert.True(t, Equal(Number(1), Number(1)))
	assert.False(t, Equal(Number(1), String("1")))
	assert.True(t, Equal(Object{"a": List{Bool(true)}}, Object{"a": List{Bool(true)}}))
	assert.False(t, Equal(List{Number(1)}, List{Number(1), Number(2)}))
}

func TestCloneValueIsDeep(t *testing.T) {
	orig := Object{"slides": List{String("a")}}
	clone := CloneValue(orig).(Object)
	clone["slides"].(List)[0] = String("b")

	assert.Equal(t, String("a"), orig["slides"].(List)[0])
}

func TestToAnyRoundTrip(t *testing.T) {
	orig := Object{"n": Number(2), "l": List{String("x")}, "b": Bool(true)}
	back, err := FromAny(ToAny(orig))
	require.NoError(t, err)
	assert.True(t, Equal(orig, back))
}
