package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvas/internal/model"
	"github.com/roach88/canvas/internal/testutil"
)

// overriddenDocument is instanceDocument with a title override and a card
// override that repeats the dark variant's background.
func overriddenDocument() model.Document {
	doc := instanceDocument()
	inst := doc.Instances["card"]
	inst.Overrides["title"] = model.Override{Props: model.Record{"content": model.String("Hello")}}
	inst.Overrides["card"] = model.Override{Style: model.Record{"backgroundColor": model.String("#000")}}
	return doc
}

func TestDiffText(t *testing.T) {
	lib := writeLibrary(t)
	page := writePage(t, t.TempDir(), "page.json", overriddenDocument())

	out, err := execute(t, "--library", lib, "diff", page, "title")
	require.NoError(t, err)
	assert.Contains(t, out, "title (instance of Card, variant dark)")
	assert.Contains(t, out, "SCOPE")
	assert.Contains(t, out, "content")
	assert.Contains(t, out, `"Title"`)
	assert.Contains(t, out, `"Hello"`)
	assert.NotContains(t, out, "redundant")
}

func TestDiffMarksRedundantOverride(t *testing.T) {
	lib := writeLibrary(t)
	page := writePage(t, t.TempDir(), "page.json", overriddenDocument())

	out, err := execute(t, "--library", lib, "diff", page, "card")
	require.NoError(t, err)
	assert.Contains(t, out, "backgroundColor")
	assert.Contains(t, out, `"#fff"`)
	assert.Contains(t, out, "redundant")
}

func TestDiffNoOverrides(t *testing.T) {
	lib := writeLibrary(t)
	page := writePage(t, t.TempDir(), "page.json", instanceDocument())

	out, err := execute(t, "--library", lib, "diff", page, "title")
	require.NoError(t, err)
	assert.Contains(t, out, "no overrides")
}

func TestDiffJSON(t *testing.T) {
	lib := writeLibrary(t)
	page := writePage(t, t.TempDir(), "page.json", overriddenDocument())

	out, err := execute(t, "--format", "json", "--library", lib, "diff", page, "title")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Element   string `json:"element"`
			Component string `json:"component"`
			Variant   string `json:"variant"`
			Keys      []struct {
				Scope     string `json:"scope"`
				Key       string `json:"key"`
				Master    string `json:"master"`
				Override  string `json:"override"`
				Effective string `json:"effective"`
				Redundant bool   `json:"redundant"`
			} `json:"keys"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Card", resp.Data.Component)
	assert.Equal(t, "dark", resp.Data.Variant)
	require.Len(t, resp.Data.Keys, 1)
	k := resp.Data.Keys[0]
	assert.Equal(t, "props", k.Scope)
	assert.Equal(t, "content", k.Key)
	assert.Equal(t, "Title", k.Master)
	assert.Equal(t, "Hello", k.Override)
	assert.Equal(t, "Hello", k.Effective)
	assert.False(t, k.Redundant)
}

func TestDiffPlainElement(t *testing.T) {
	page := writePage(t, t.TempDir(), "page.json", testutil.CardDocument())

	out, err := execute(t, "diff", page, "title")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeStructural)
}

func TestDiffUnknownElement(t *testing.T) {
	page := writePage(t, t.TempDir(), "page.json", testutil.CardDocument())

	out, err := execute(t, "diff", page, "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeReference)
}
