package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tabdiff/pkg/diff"
	"tabdiff/pkg/format"
	"tabdiff/pkg/table"
)

// errDifferencesFound signals a completed diff that found differences; it
// maps to exit status 1 without an error message.
var errDifferencesFound = errors.New("differences found")

func fatal(formatStr string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+formatStr+"\n", args...)
	os.Exit(1)
}

func main() {
	root := &cobra.Command{
		Use:           "tabdiff",
		Short:         "Compare and reshape tabular data files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addCommands(root)
	if err := root.Execute(); err != nil {
		if errors.Is(err, errDifferencesFound) {
			os.Exit(1)
		}
		fatal("%s", err)
	}
}

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "diff from.csv to.csv",
		Short: "Diff two CSV files bucketed by key fields",
		Args:  cobra.ExactArgs(2),
		RunE:  runDiff,
	}
	cmd.Flags().StringArrayP("key", "k", nil, "bucket key field (repeatable, required)")
	cmd.Flags().StringArray("ignore", nil, "field whose differences are expected (repeatable)")
	cmd.Flags().BoolP("quiet", "q", false, "suppress output, set exit status only")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "cat file.csv",
		Short: "Re-render a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCat,
	}
	cmd.Flags().StringP("format", "f", "fixed", "output format: csv|fixed|xml")
	root.AddCommand(cmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	keys, _ := cmd.Flags().GetStringArray("key")
	ignore, _ := cmd.Flags().GetStringArray("ignore")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if len(keys) == 0 {
		return fmt.Errorf("at least one --key field is required")
	}

	from, err := format.LoadCSV(args[0])
	if err != nil {
		return err
	}
	to, err := format.LoadCSV(args[1])
	if err != nil {
		return err
	}

	rs := diff.Diff(from, to, keys...)
	for _, f := range ignore {
		rs.IgnoreField(f)
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), diff.FormatResults(rs))
	}
	if rs.Len() > 0 {
		return errDifferencesFound
	}
	return nil
}

func runCat(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("format")
	consumer, err := consumerFor(name)
	if err != nil {
		return err
	}
	t, err := format.LoadCSV(args[0])
	if err != nil {
		return err
	}
	text, err := t.PipeTo(consumer)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func consumerFor(name string) (func(table.RowIter) (string, error), error) {
	switch name {
	case "csv":
		return format.CSV, nil
	case "fixed", "table":
		return format.FixedWidth, nil
	case "xml":
		return format.XML, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", name)
	}
}
