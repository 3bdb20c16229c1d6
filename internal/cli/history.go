package cli

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/tempusfetch/internal/archive"
)

func newHistoryCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect captures recorded in the local archive.",
	}
	cmd.AddCommand(
		newHistoryListCommand(rt),
		newHistoryShowCommand(rt),
		newHistoryDiffCommand(rt),
	)
	return cmd
}

// openArchive opens the capture archive even when recording is disabled, so
// earlier captures stay browsable.
func (rt *runtime) openArchive() (*archive.Archive, error) {
	if rt.app.Archive != nil {
		return rt.app.Archive, nil
	}
	cfg := rt.app.Config.Archive
	cfg.Enabled = true
	arc, err := archive.Open(cfg, rt.app.Logger)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	rt.app.Archive = arc
	return arc, nil
}

func newHistoryListCommand(rt *runtime) *cobra.Command {
	var (
		job   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent captures, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			arc, err := rt.openArchive()
			if err != nil {
				return err
			}
			caps, err := arc.List(cmd.Context(), job, limit)
			if err != nil {
				return err
			}
			if len(caps) == 0 {
				fmt.Fprintln(rt.opts.Stdout, "No captures recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(rt.opts.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tJOB\tSTATUS\tRECORDS\tSIZE\tCAPTURED")
			for _, c := range caps {
				records := "-"
				if c.RecordCount != nil {
					records = strconv.Itoa(*c.RecordCount)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\n",
					c.ID, c.Job, c.Status, records, c.Size, c.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "only captures of this job")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of captures")
	return cmd
}

func newHistoryShowCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <capture-id>",
		Short: "Print the stored output of one capture.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arc, err := rt.openArchive()
			if err != nil {
				return err
			}
			_, body, err := arc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.opts.Stdout, "%s\n", body)
			return nil
		},
	}
}

func newHistoryDiffCommand(rt *runtime) *cobra.Command {
	var job string
	cmd := &cobra.Command{
		Use:   "diff [base-id head-id]",
		Short: "Show what changed between two captures.",
		Long: `Show a line diff between two captures. Without ids, the two most
recent captures of --job are compared.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			arc, err := rt.openArchive()
			if err != nil {
				return err
			}
			base, head := "", ""
			if len(args) == 2 {
				base, head = args[0], args[1]
			} else {
				if job == "" {
					return errors.New("either two capture ids or --job is required")
				}
				caps, err := arc.List(cmd.Context(), job, 2)
				if err != nil {
					return err
				}
				if len(caps) < 2 {
					return fmt.Errorf("need two %s captures to diff, have %d", job, len(caps))
				}
				base, head = caps[1].ID, caps[0].ID
			}

			res, err := arc.Diff(cmd.Context(), base, head)
			if err != nil {
				return err
			}
			if !res.Changed() {
				fmt.Fprintf(rt.opts.Stdout, "No changes between %s and %s.\n", base, head)
				return nil
			}
			fmt.Fprintf(rt.opts.Stdout, "--- %s\n+++ %s\n%s", base, head, res.Text())
			return nil
		},
	}
	cmd.Flags().StringVar(&job, "job", "", "diff the two latest captures of this job")
	return cmd
}
