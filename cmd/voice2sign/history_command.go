package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"voice2sign/internal/history"
	"voice2sign/internal/stagecache"
	"voice2sign/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var videoID string
	var clear bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if clear {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "History cleared (%d row(s) removed)\n", removed)
				return nil
			}

			var entries []history.Entry
			if videoID != "" {
				entries, err = store.ForVideo(cmd.Context(), videoID)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if asJSON {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No analyses recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				status := e.Status
				if e.Failed() {
					status = "failed: " + textutil.Truncate(e.ErrorMessage, 40)
				}
				rows = append(rows, []string{
					humanize.Time(e.CreatedAt),
					e.VideoID,
					status,
					e.Language,
					e.Model,
					fmt.Sprint(e.Segments),
					fmt.Sprint(e.Words),
					fmt.Sprintf("%.1fs", e.DurationSeconds),
					fmt.Sprintf("%d/%d", len(e.StagesFromCache), len(stagecache.Stages)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Video", "Status", "Lang", "Model", "Segments", "Words", "Duration", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Number of rows to show")
	cmd.Flags().StringVar(&videoID, "video", "", "Only show runs for this video ID")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete all history rows")
	addJSONFlag(cmd, &asJSON, "Print rows as JSON")
	return cmd
}
