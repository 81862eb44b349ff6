package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/canvas/internal/document"
	"github.com/roach88/canvas/internal/session"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <page.json>",
		Short: "Print the resolved document",
		Long: `Resolve every component instance in a page and print the result.

Components come from the page store (--db) and the CUE library
directory (--library). The output has no instance records: each derived
element carries its resolved style and props, ready for a renderer.
Instances of components that are not available keep their stored values.

Example:
  canvas render page.json --library ./components
  canvas render page.json --db pages.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runRender(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	sess, err := openPage(opts, path, cmd, formatter)
	if err != nil {
		return err
	}

	data, err := document.EncodeIndent(sess.Resolved())
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot encode document", err)
	}
	return formatter.Success(rawJSON(data))
}

// openPage loads the page at path into a session backed by the configured
// component registry. Failures are already reported through formatter.
func openPage(opts *RootOptions, path string, cmd *cobra.Command, formatter *OutputFormatter) (*session.Session, error) {
	cfg, err := opts.settings()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, "invalid configuration", err)
	}
	logger := cfg.NewLogger(formatter.GetErrWriter())

	doc, err := readDocument(path)
	if err != nil {
		if ErrorCode(err) == ErrCodeCorrupt {
			return nil, formatter.Fail(ExitFailure, "invalid document", err)
		}
		return nil, formatter.Fail(ExitCommandError, "cannot read document", err)
	}

	registry, err := loadRegistry(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, "cannot load components", err)
	}

	sess := session.New(
		session.WithRegistry(registry),
		session.WithLogger(logger),
		session.WithHistoryDepth(cfg.HistoryDepth),
	)
	if err := sess.Load(doc); err != nil {
		return nil, formatter.Fail(ExitFailure, "invalid document", err)
	}
	for _, inst := range sess.Store().Instances() {
		if !registry.Has(inst.ComponentID) {
			logger.Warn("instance refers to an unavailable component; using stored values",
				"element", inst.ElementID, "component", inst.ComponentID)
		}
	}
	return sess, nil
}
