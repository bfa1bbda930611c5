package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"voice2sign/internal/config"
	"voice2sign/internal/emotion"
	"voice2sign/internal/gloss"
	"voice2sign/internal/pipeline"
	"voice2sign/internal/services"
	"voice2sign/internal/textutil"
)

const segmentTextWidth = 48

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var withEmotion bool
	var model string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <youtube-url>",
		Short: "Run the pipeline for one video and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if model != "" && !config.ValidWhisperModel(model) {
				return fmt.Errorf("unknown model %q (want one of %s)", model, strings.Join(config.WhisperModels, ", "))
			}
			if !cmd.Flags().Changed("emotion") {
				withEmotion = cfg.Emotion.Enabled
			}
			runner, _, err := ctx.runner()
			if err != nil {
				return err
			}
			res, err := runner.Run(cmd.Context(), pipeline.Request{
				URL:            args[0],
				EmotionEnabled: withEmotion,
				Model:          model,
			})
			if err != nil {
				return fmt.Errorf("Error: %s", services.UserMessage(err))
			}
			if asJSON {
				return writeJSON(cmd, res)
			}
			printAnalysis(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withEmotion, "emotion", false, "Tag each segment with an emotion (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "Whisper model size (tiny, base, small, medium, large)")
	addJSONFlag(cmd, &asJSON, "Print the full result as JSON")
	return cmd
}

func printAnalysis(out io.Writer, res *pipeline.Result) {
	stats := res.Summary.Stats
	fromCache := strings.Join(res.StagesFromCache, ", ")
	if fromCache == "" {
		fromCache = "none"
	}
	fmt.Fprintln(out, renderKeyValues([][2]string{
		{"Video", res.VideoID},
		{"Language", strings.ToUpper(res.Transcript.Language)},
		{"Model", res.Transcript.Model},
		{"Emotion", yesNo(res.Summary.Emotion)},
		{"Segments", fmt.Sprint(stats.Segments)},
		{"Sign items", fmt.Sprint(stats.SignItems)},
		{"Words", fmt.Sprint(stats.Words)},
		{"Duration", fmt.Sprintf("%.1fs", stats.Duration)},
		{"From cache", fromCache},
	}))

	rows := make([][]string, 0, len(res.Timeline.Timeline))
	for i, seg := range res.Timeline.Timeline {
		glossText := gloss.Display(seg.Gloss)
		if glossText == "" {
			glossText = "-"
		}
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			fmt.Sprintf("%.1fs - %.1fs", seg.Start, seg.End),
			textutil.Truncate(seg.Text, segmentTextWidth),
			glossText,
			emotion.Badge(seg.Emotion),
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No speech segments.")
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Time", "English", "Gloss", "Emotion"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
}
