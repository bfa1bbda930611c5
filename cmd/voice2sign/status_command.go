package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"voice2sign/internal/deps"
	"voice2sign/internal/preflight"
	"voice2sign/internal/signs"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report dependency, directory, dataset and cache health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string

			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configPath := ctx.configPath
			if configPath == "" {
				configPath = "(defaults)"
			}
			lines = append(lines,
				renderStatusLine("Config", statusInfo, configPath, colorize),
				renderStatusLine("Transcription", statusInfo, cfg.Transcription.Backend+" / "+cfg.Transcription.Model, colorize),
				renderStatusLine("Emotion", statusInfo, emotionSummary(cfg.Emotion.Enabled, cfg.Emotion.Backend), colorize),
				renderStatusLine("Web UI", statusInfo, cfg.Server.Bind, colorize),
			)

			statuses := preflight.CheckSystemDeps(cfg)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			for _, st := range statuses {
				lines = append(lines, dependencyLine(st, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			loader, err := ctx.signLoader()
			if err != nil {
				return err
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dataset", colorize)...)
			lines = append(lines, datasetLine(loader.Available(), colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Cache", colorize)...)
			if cache, err := ctx.openCache(); err != nil {
				lines = append(lines, renderStatusLine("Cache", statusError, err.Error(), colorize))
			} else if ids, err := cache.List(); err != nil {
				lines = append(lines, renderStatusLine("Cache", statusError, err.Error(), colorize))
			} else {
				lines = append(lines, renderStatusLine("Cached videos", statusInfo, fmt.Sprint(len(ids)), colorize))
			}
			if store, err := ctx.openHistory(); err != nil {
				lines = append(lines, renderStatusLine("History", statusWarn, err.Error(), colorize))
			} else if n, err := store.Count(cmd.Context()); err != nil {
				lines = append(lines, renderStatusLine("History", statusWarn, err.Error(), colorize))
			} else {
				lines = append(lines, renderStatusLine("History", statusInfo, fmt.Sprintf("%d run(s) in %s", n, store.Path()), colorize))
			}

			printLines(out, lines)
			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func dependencyLine(st deps.Status, colorize bool) string {
	switch {
	case st.Available:
		msg := st.Command
		if st.Detail != "" {
			msg = st.Detail
		}
		return renderStatusLine(st.Name, statusOK, msg, colorize)
	case st.Optional:
		return renderStatusLine(st.Name, statusWarn, st.Detail+" (optional: "+st.Description+")", colorize)
	default:
		return renderStatusLine(st.Name, statusError, st.Detail+" ("+st.Description+")", colorize)
	}
}

func datasetLine(available map[string]int, colorize bool) string {
	var missing []string
	total := 0
	for _, ch := range signs.Alphabet {
		n := available[string(ch)]
		total += n
		if n == 0 {
			missing = append(missing, string(ch))
		}
	}
	switch {
	case len(available) == 0:
		return renderStatusLine("Sign images", statusError, "no images found", colorize)
	case len(missing) > 0:
		return renderStatusLine("Sign images", statusWarn,
			fmt.Sprintf("%d images, missing %s", total, strings.Join(missing, "")), colorize)
	default:
		return renderStatusLine("Sign images", statusOK,
			fmt.Sprintf("%d images for %d characters", total, len(available)), colorize)
	}
}

func emotionSummary(enabled bool, backend string) string {
	if !enabled {
		return "off by default (" + backend + ")"
	}
	return "on (" + backend + ")"
}

func printLines(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
