package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"voice2sign/internal/stagecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the per-stage result cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheInfoCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			ids, err := cache.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				videos := make([]cachedVideo, 0, len(ids))
				for _, id := range ids {
					info, err := cache.Info(id)
					if err != nil {
						return err
					}
					videos = append(videos, cachedVideo{VideoID: id, Info: info})
				}
				return writeJSON(cmd, videos)
			}
			if len(ids) == 0 {
				fmt.Fprintln(out, "Cache is empty.")
				return nil
			}
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				info, err := cache.Info(id)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					id,
					stageNames(info.Stages),
					yesNo(info.Summary),
					humanize.Bytes(uint64(info.SizeBytes)),
					humanize.Time(info.Modified),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Video", "Stages", "Summary", "Size", "Modified"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d cached video(s) in %s\n", len(ids), cache.Dir())
			return nil
		},
	}
	addJSONFlag(cmd, &asJSON, "Print cached videos as JSON")
	return cmd
}

func newCacheInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <video-id>",
		Short: "Show which stages are cached for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			info, err := cache.Info(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !info.Cached {
				fmt.Fprintf(out, "%s is not cached\n", args[0])
				return nil
			}
			pairs := [][2]string{{"Video", args[0]}, {"Summary", yesNo(info.Summary)}}
			for _, stage := range stagecache.Stages {
				state := "missing"
				if cache.HasStage(args[0], stage) {
					state = cache.StagePath(args[0], stage)
				}
				pairs = append(pairs, [2]string{string(stage), state})
			}
			pairs = append(pairs,
				[2]string{"Size", humanize.Bytes(uint64(info.SizeBytes))},
				[2]string{"Modified", info.Modified.Format("2006-01-02 15:04:05")},
			)
			fmt.Fprintln(out, renderKeyValues(pairs))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [video-id]",
		Short: "Remove cached results for one video, or all videos",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			var removed int
			if len(args) == 1 {
				removed, err = cache.Clear(args[0])
			} else {
				removed, err = cache.ClearAll()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%d file(s) removed)\n", removed)
			return nil
		},
	}
}

func stageNames(stages []stagecache.Stage) string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = string(s)
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
