package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/canvas/internal/document"
	"github.com/roach88/canvas/internal/model"
)

// ValidationResult summarizes a valid page document.
type ValidationResult struct {
	Path        string `json:"path"`
	Valid       bool   `json:"valid"`
	Elements    int    `json:"elements"`
	Roots       int    `json:"roots"`
	Instances   int    `json:"instances"`
	ContentHash string `json:"contentHash"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <page.json>",
		Short: "Validate a page document",
		Long: `Validate a page document against the page schema and the tree
and instance invariants.

Invalid documents are rejected, never repaired.

Exit codes:
  0 - Document is valid
  1 - Document is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := readDocument(path)
	if err != nil {
		if ErrorCode(err) == ErrCodeCorrupt {
			return formatter.Fail(ExitFailure, "invalid document", err)
		}
		return formatter.Fail(ExitCommandError, "cannot read document", err)
	}
	formatter.VerboseLog("Decoded %s: %d element(s)", path, len(doc.Elements))

	hash, err := document.Hash(doc)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot hash document", err)
	}
	result := ValidationResult{
		Path:        path,
		Valid:       true,
		Elements:    len(doc.Elements),
		Roots:       len(doc.RootElementIDs),
		Instances:   len(doc.Instances),
		ContentHash: hash,
	}

	return formatter.Success(result)
}

func (r ValidationResult) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ %s is valid (%d elements, %d roots, %d instances)\n",
		r.Path, r.Elements, r.Roots, r.Instances)
	return err
}

// readDocument reads and decodes a page document file.
func readDocument(path string) (model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, err
	}
	return document.Decode(data)
}
