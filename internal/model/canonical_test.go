package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"b": 1, "a": "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1}`, string(out))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"a": "<b>&"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<b>&"}`, string(out))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed, err := MarshalCanonical(map[string]any{"k": "e\u0301"})
	require.NoError(t, err)
	composed, err := MarshalCanonical(map[string]any{"k": "\u00e9"})
	require.NoError(t, err)

	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalDocumentStable(t *testing.T) {
	doc := NewDocument()
	el := NewElement("t1", TypeText)
	doc.Elements["t1"] = el
	doc.RootElementIDs = []string{"t1"}

	first, err := MarshalCanonical(doc)
	require.NoError(t, err)
	second, err := MarshalCanonical(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t,
		`{"elements":{"t1":{"children":[],"id":"t1","parentId":null,"props":{"content":"Text","tag":"p"},"style":{"fontSize":16},"type":"text"}},"rootElementIds":["t1"]}`,
		string(first))
}

func TestDocumentHash(t *testing.T) {
	doc := NewDocument()
	doc.Elements["t1"] = NewElement("t1", TypeText)
	doc.RootElementIDs = []string{"t1"}

	h1, err := DocumentHash(doc)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	doc.Elements["t1"].Style["color"] = String("red")
	h2, err := DocumentHash(doc)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestComponentHashIgnoresRevision(t *testing.T) {
	c := &Component{
		ID:            "card",
		Name:          "Card",
		Elements:      map[string]*Element{"t": NewElement("t", TypeContainer)},
		RootElementID: "t",
	}
	h1, err := ComponentHash(c)
	require.NoError(t, err)

	c.Revision = 9
	h2, err := ComponentHash(c)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	c.Name = "Card 2"
	h3, err := ComponentHash(c)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
