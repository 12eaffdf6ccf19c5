package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		limit int
		stats bool
		runID string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs from the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if err := a.initLogger(false); err != nil {
				return err
			}
			defer a.syncLogger()
			ctx := cmd.Context()
			store, err := a.openHistory(ctx, true)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			defer tw.Flush()
			switch {
			case runID != "":
				matches, err := store.Matches(ctx, runID)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					return fmt.Errorf("run %q not found in history", runID)
				}
				fmt.Fprintln(tw, "#\tCRITERION\tGRADE\tSTATUS\tSCORE\tSUGGESTION")
				for _, m := range matches {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s/%s\t%s\n", m.Position+1, oneLine(m.Criterion, 48), m.Grade, m.Bucket,
						trimFloat(m.Score), trimFloat(m.MaxScore), oneLine(m.Suggestion, 60))
				}
			case stats:
				rows, err := store.CriterionStats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "CRITERION\tRUNS\tMET\tPARTIAL\tMISSING\tAVG")
				for _, row := range rows {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.0f%%\n", oneLine(row.Criterion, 48), row.Runs, row.Met, row.Partial, row.Missing, row.AvgRatio*100)
				}
			default:
				runs, err := store.List(ctx, limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(tw, "No runs recorded")
					return nil
				}
				fmt.Fprintln(tw, "RUN\tESSAY\tMODE\tFLOW\tSCORE\tMET\tPARTIAL\tMISSING")
				for _, run := range runs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\t%d\t%d\t%d\n", run.RunID, oneLine(filepath.Base(run.EssaySource), 40), run.Mode, run.RubricFlow,
						run.Percent(), run.Met, run.Partial, run.Missing)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Aggregate outcomes per criterion")
	cmd.Flags().StringVar(&runID, "run", "", "Show the stored criteria of one run")
	return cmd
}
