package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/canvas/internal/instance"
	"github.com/roach88/canvas/internal/model"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <page.json> <element-id>",
		Short: "Show the overrides of a derived element",
		Long: `List every key an instance overrides on one of its elements, next to
the master value, the variant value and the value that is rendered.

Keys whose override equals the inherited value are marked redundant.

Example:
  canvas diff page.json title --library ./components
  canvas diff page.json card --db pages.db --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

// ElementDiff is the result of the diff command.
type ElementDiff struct {
	Element   string                  `json:"element"`
	Component string                  `json:"component"`
	Variant   string                  `json:"variant,omitempty"`
	Keys      []instance.PropertyDiff `json:"keys"`
}

func runDiff(opts *RootOptions, path, elementID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	sess, err := openPage(opts, path, cmd, formatter)
	if err != nil {
		return err
	}

	keys, err := sess.Diff(elementID)
	if err != nil {
		return formatter.Fail(ExitFailure, "cannot diff element", err)
	}
	inst, _ := sess.Resolver().InstanceOf(elementID)

	result := ElementDiff{
		Element:   elementID,
		Component: inst.ComponentID,
		Variant:   inst.VariantID,
		Keys:      keys,
	}
	if result.Keys == nil {
		result.Keys = []instance.PropertyDiff{}
	}
	return formatter.Success(result)
}

func (d ElementDiff) renderText(w io.Writer) error {
	header := fmt.Sprintf("%s (instance of %s", d.Element, d.Component)
	if d.Variant != "" {
		header += ", variant " + d.Variant
	}
	fmt.Fprintln(w, header+")")

	if len(d.Keys) == 0 {
		_, err := fmt.Fprintln(w, "no overrides")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tKEY\tMASTER\tVARIANT\tOVERRIDE\tEFFECTIVE\t")
	for _, k := range d.Keys {
		mark := ""
		if k.Redundant {
			mark = "redundant"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", k.Scope, k.Key,
			cell(k.Master), cell(k.Variant), cell(k.Override), cell(k.Effective), mark)
	}
	return tw.Flush()
}

// cell formats a value for a table column. Absent values print as "-".
func cell(v model.Value) string {
	if v == nil {
		return "-"
	}
	data, err := model.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
