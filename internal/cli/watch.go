package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowanvale/liveset"
)

// WatchOptions holds watch command flags.
type WatchOptions struct {
	Where    string
	Args     []string
	Sort     string
	Interval time.Duration
}

// ChangeEvent is the JSON shape of one delivered change notification.
type ChangeEvent struct {
	Length           int   `json:"length"`
	Insertions       []int `json:"insertions,omitempty"`
	Deletions        []int `json:"deletions,omitempty"`
	OldModifications []int `json:"old_modifications,omitempty"`
	NewModifications []int `json:"new_modifications,omitempty"`
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	watchOpts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <class>",
		Short: "Watch a class and print change notifications",
		Long: `Open a live result set over a class and print index-level change
notifications as rows are inserted, updated, or deleted by other
processes. The database is polled at the configured interval; stop
with Ctrl-C.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, watchOpts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&watchOpts.Where, "where", "w", "", "query string restricting the elements")
	cmd.Flags().StringArrayVar(&watchOpts.Args, "arg", nil, "positional query argument (repeatable)")
	cmd.Flags().StringVarP(&watchOpts.Sort, "sort", "s", "", "sort specification, e.g. \"name,-age\"")
	cmd.Flags().DurationVar(&watchOpts.Interval, "interval", time.Second, "poll interval")

	return cmd
}

func runWatch(opts *RootOptions, watchOpts *WatchOptions, class string, cmd *cobra.Command) error {
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

	view, err := restrict(res, &QueryOptions{
		Where: watchOpts.Where,
		Args:  watchOpts.Args,
		Sort:  watchOpts.Sort,
	})
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	if view != res {
		defer view.Close()
	}

	token, err := view.AddListener(func(r *liveset.Results, changes liveset.ChangeSet) {
		printChanges(formatter, r, changes)
	})
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	defer view.RemoveListener(token)

	formatter.VerboseLog("Watching %s (%d element(s)), interval %s", class, view.Length(), watchOpts.Interval)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(watchOpts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := st.Refresh(ctx); err != nil {
				formatter.VerboseLog("refresh failed: %v", err)
			}
		}
	}
}

// printChanges renders one delivered change set.
func printChanges(f *OutputFormatter, r *liveset.Results, changes liveset.ChangeSet) {
	if f.Format == "json" {
		_ = f.Success(ChangeEvent{
			Length:           r.Length(),
			Insertions:       changes.Insertions,
			Deletions:        changes.Deletions,
			OldModifications: changes.OldModifications,
			NewModifications: changes.NewModifications,
		})
		return
	}

	fmt.Fprintf(f.Writer, "length=%d", r.Length())
	if len(changes.Insertions) > 0 {
		fmt.Fprintf(f.Writer, " insertions=%v", changes.Insertions)
	}
	if len(changes.Deletions) > 0 {
		fmt.Fprintf(f.Writer, " deletions=%v", changes.Deletions)
	}
	if len(changes.OldModifications) > 0 {
		fmt.Fprintf(f.Writer, " old_modifications=%v", changes.OldModifications)
	}
	if len(changes.NewModifications) > 0 {
		fmt.Fprintf(f.Writer, " new_modifications=%v", changes.NewModifications)
	}
	fmt.Fprintln(f.Writer)
}
