package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/canvas/internal/config"
	"github.com/roach88/canvas/internal/document"
	"github.com/roach88/canvas/internal/pagestore"
)

var errNoDatabase = errors.New("no page store configured (use --db, CANVAS_DB or the config file)")

// NewPageCommand creates the page command group.
func NewPageCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Save, load and list pages in the page store",
		Long: `Manage page documents in the SQLite page store.

The store is chosen with --db, CANVAS_DB or the "database" config key.
Saving unchanged content keeps the page's revision.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "save <id> <page.json>",
		Short:         "Validate a page document and store it under id",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPageSave(rootOpts, args[0], args[1], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "load <id>",
		Short:         "Print a stored page document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPageLoad(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List stored pages",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPageList(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "delete <id>",
		Short:         "Remove a stored page",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPageDelete(rootOpts, args[0], cmd)
		},
	})
	return cmd
}

// openStore resolves settings and opens the configured page store.
func (o *RootOptions) openStore() (*pagestore.Store, config.Config, error) {
	cfg, err := o.settings()
	if err != nil {
		return nil, cfg, err
	}
	if cfg.Database == "" {
		return nil, cfg, errNoDatabase
	}
	st, err := pagestore.Open(cfg.Database)
	if err != nil {
		return nil, cfg, fmt.Errorf("open page store: %w", err)
	}
	return st, cfg, nil
}

func runPageSave(opts *RootOptions, id, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := readDocument(path)
	if err != nil {
		if ErrorCode(err) == ErrCodeCorrupt {
			return formatter.Fail(ExitFailure, "invalid document", err)
		}
		return formatter.Fail(ExitCommandError, "cannot read document", err)
	}

	st, _, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open page store", err)
	}
	defer st.Close()

	info, err := st.SavePageInfo(cmd.Context(), id, doc)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot save page", err)
	}
	formatter.VerboseLog("Saved %s from %s", id, path)

	return formatter.Success(pageSaved{info})
}

func runPageLoad(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, _, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open page store", err)
	}
	defer st.Close()

	doc, err := st.LoadPage(cmd.Context(), id)
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot load page", err)
	}
	data, err := document.EncodeIndent(doc)
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot encode document", err)
	}
	return formatter.Success(rawJSON(data))
}

func runPageList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, _, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open page store", err)
	}
	defer st.Close()

	pages, err := st.ListPages(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot list pages", err)
	}
	return formatter.Success(pageList(pages))
}

func runPageDelete(opts *RootOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, _, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open page store", err)
	}
	defer st.Close()

	if err := st.DeletePage(cmd.Context(), id); err != nil {
		return formatter.Fail(ExitFailure, "cannot delete page", err)
	}
	return formatter.Success(pageDeleted{Deleted: id})
}

type pageSaved struct {
	pagestore.PageInfo
}

func (p pageSaved) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ saved %s (revision %d)\n", p.ID, p.Revision)
	return err
}

type pageList []pagestore.PageInfo

func (l pageList) renderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "no pages")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tREVISION\tHASH")
	for _, p := range l {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", p.ID, p.Revision, shortHash(p.ContentHash))
	}
	return tw.Flush()
}

type pageDeleted struct {
	Deleted string `json:"deleted"`
}

func (p pageDeleted) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ deleted %s\n", p.Deleted)
	return err
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
