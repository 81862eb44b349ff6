package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/canvas/internal/component"
	"github.com/roach88/canvas/internal/library"
	"github.com/roach88/canvas/internal/model"
)

// ComponentSummary is one row of component list output.
type ComponentSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Elements int      `json:"elements"`
	Variants int      `json:"variants"`
	Props    int      `json:"props"`
}

// ImportResult lists the components written by component import.
type ImportResult struct {
	Imported []string `json:"imported"`
	Total    int      `json:"total"`
}

// NewComponentCommand creates the component command group.
func NewComponentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "component",
		Short: "Import, export and list library components",
		Long: `Manage the component library kept in the page store.

Components can be imported from exported JSON envelopes, from a single
CUE file or from a directory of CUE files. Listing and export also see
the components of the --library directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var output string
	exportCmd := &cobra.Command{
		Use:           "export <id>",
		Short:         "Write a component as a versioned JSON envelope",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComponentExport(rootOpts, args[0], output, cmd)
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "write the envelope to a file instead of stdout")

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.json|file.cue|dir>",
		Short: "Add components to the page store",
		Long: `Add components to the page store.

JSON envelopes are verified and added under fresh ids. CUE components
keep their declared ids and replace stored components with the same id.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComponentImport(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(exportCmd)
	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List available components",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComponentList(rootOpts, cmd)
		},
	})
	return cmd
}

func runComponentImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, cfg, err := opts.openStore()
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot open page store", err)
	}
	defer st.Close()
	logger := cfg.NewLogger(formatter.GetErrWriter())

	reg := newRegistry(logger)
	if err := loadStored(cmd.Context(), reg, st); err != nil {
		return formatter.Fail(ExitCommandError, "cannot load stored components", err)
	}

	imported, err := importPath(reg, path)
	if err != nil {
		if os.IsNotExist(err) {
			return formatter.Fail(ExitCommandError, "cannot import components", err)
		}
		return formatter.Fail(ExitFailure, "cannot import components", err)
	}
	if err := st.SaveComponents(cmd.Context(), reg.List()); err != nil {
		return formatter.Fail(ExitCommandError, "cannot save components", err)
	}
	logger.Info("components imported", "path", path, "count", len(imported))

	return formatter.Success(ImportResult{Imported: imported, Total: reg.Len()})
}

func (r ImportResult) renderText(w io.Writer) error {
	for _, id := range r.Imported {
		fmt.Fprintf(w, "✓ imported %s\n", id)
	}
	_, err := fmt.Fprintf(w, "%d component(s) in store\n", r.Total)
	return err
}

// importPath adds the components at path to reg and returns their ids.
func importPath(reg *component.Registry, path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var compiled []*model.Component
	switch {
	case info.IsDir():
		compiled, err = library.LoadDir(path)
	case strings.EqualFold(filepath.Ext(path), ".cue"):
		var src []byte
		if src, err = os.ReadFile(path); err == nil {
			compiled, err = library.Compile(path, src)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		id, err := reg.Import(data)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(compiled))
	for _, c := range compiled {
		if err := reg.Load(c); err != nil {
			return nil, fmt.Errorf("component %s: %w", c.ID, err)
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func runComponentExport(opts *RootOptions, id, output string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid configuration", err)
	}
	reg, err := loadRegistry(cmd.Context(), cfg, cfg.NewLogger(formatter.GetErrWriter()))
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot load components", err)
	}

	data, err := reg.Export(id)
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot export component", err)
	}

	if output == "" {
		return formatter.Success(rawJSON(data))
	}
	if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		return formatter.Fail(ExitCommandError, "cannot write envelope", err)
	}
	formatter.VerboseLog("Wrote %s", output)
	return formatter.Success(componentExported{Exported: id, Output: output})
}

type componentExported struct {
	Exported string `json:"exported"`
	Output   string `json:"output"`
}

func (c componentExported) renderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ exported %s to %s\n", c.Exported, c.Output)
	return err
}

func runComponentList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid configuration", err)
	}
	reg, err := loadRegistry(cmd.Context(), cfg, cfg.NewLogger(formatter.GetErrWriter()))
	if err != nil {
		return formatter.Fail(ExitCommandError, "cannot load components", err)
	}

	summaries := make(componentList, 0, reg.Len())
	for _, c := range reg.List() {
		summaries = append(summaries, ComponentSummary{
			ID:       c.ID,
			Name:     c.Name,
			Category: c.Category,
			Tags:     c.Tags,
			Elements: len(c.Elements),
			Variants: len(c.Variants),
			Props:    len(c.Props),
		})
	}
	return formatter.Success(summaries)
}

type componentList []ComponentSummary

func (l componentList) renderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "no components")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tELEMENTS\tVARIANTS\tPROPS")
	for _, s := range l {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", s.ID, s.Name, s.Category, s.Elements, s.Variants, s.Props)
	}
	return tw.Flush()
}
