package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvas/internal/testutil"
)

func TestValidateValidPage(t *testing.T) {
	path := writePage(t, t.TempDir(), "page.json", testutil.CardDocument())

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "is valid (3 elements, 1 roots, 0 instances)")
}

func TestValidateValidPageJSON(t *testing.T) {
	path := writePage(t, t.TempDir(), "page.json", instanceDocument())

	out, err := execute(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Elements)
	assert.Equal(t, 1, resp.Data.Instances)
	assert.Len(t, resp.Data.ContentHash, 64)
}

func TestValidateNonExistentFile(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/page.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestValidateInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"elements": `},
		{"trailing data", `{"elements": {}, "rootElementIds": []} {}`},
		{"dangling root", `{"elements": {}, "rootElementIds": ["ghost"]}`},
		{"unknown type", `{"elements": {"a": {"id": "a", "type": "video", "parentId": null, "children": [], "style": {}, "props": {}}}, "rootElementIds": ["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "page.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			out, err := execute(t, "validate", path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "invalid document")
		})
	}
}

func TestValidateInvalidDocumentJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"elements": `), 0o644))

	out, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCorrupt, resp.Error.Code)
}
