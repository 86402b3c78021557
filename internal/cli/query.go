package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rowanvale/liveset"
)

// QueryOptions holds query command flags.
type QueryOptions struct {
	Where string
	Args  []string
	Sort  string
}

// QueryResult is the JSON shape of a query's output.
type QueryResult struct {
	Class    string `json:"class"`
	Length   int    `json:"length"`
	Elements []any  `json:"elements"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	queryOpts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <class>",
		Short: "Query a class and print the matching elements",
		Long: `Open a result set over a class, optionally restricted by a query
string and reordered by sort descriptors, and print the elements.

The query string uses comparison operators (==, !=, <, <=, >, >=,
CONTAINS, BEGINSWITH, ENDSWITH) joined with AND/OR/NOT. Positional
arguments referenced as $0, $1, ... are supplied with --arg.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, queryOpts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&queryOpts.Where, "where", "w", "", "query string restricting the elements")
	cmd.Flags().StringArrayVar(&queryOpts.Args, "arg", nil, "positional query argument (repeatable)")
	cmd.Flags().StringVarP(&queryOpts.Sort, "sort", "s", "", "sort specification, e.g. \"name,-age\"")

	return cmd
}

func runQuery(opts *RootOptions, queryOpts *QueryOptions, class string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openStore(opts)
	if err != nil {
		_ = formatter.Error("OPEN", err.Error(), nil)
		return err
	}
	defer st.Close()

	res, err := st.Results(cmd.Context(), class)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer res.Close()

	view, err := restrict(res, queryOpts)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	if view != res {
		defer view.Close()
	}

	formatter.VerboseLog("Matched %d element(s) of %s", view.Length(), class)

	elements := make([]any, 0, view.Length())
	for v := range view.Values() {
		elements = append(elements, displayValue(v))
	}

	if formatter.Format == "json" {
		return formatter.Success(QueryResult{
			Class:    class,
			Length:   len(elements),
			Elements: elements,
		})
	}

	for i, e := range elements {
		fmt.Fprintf(formatter.Writer, "%d\t%v\n", i, e)
	}
	return nil
}

// restrict applies the --where and --sort flags in order: filter first,
// then sort, matching how derived views compose.
func restrict(res *liveset.Results, queryOpts *QueryOptions) (*liveset.Results, error) {
	view := res

	if queryOpts.Where != "" {
		args := make([]any, len(queryOpts.Args))
		for i, a := range queryOpts.Args {
			args[i] = parseArg(a)
		}
		filtered, err := view.Filtered(queryOpts.Where, args...)
		if err != nil {
			return nil, err
		}
		view = filtered
	}

	if queryOpts.Sort != "" {
		pairs := parseSortSpec(queryOpts.Sort)
		sorted, err := view.Sorted(pairs)
		if err != nil {
			if view != res {
				view.Close()
			}
			return nil, err
		}
		if view != res {
			view.Close()
		}
		view = sorted
	}

	return view, nil
}
