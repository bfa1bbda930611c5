package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"voice2sign/internal/fileutil"
	"voice2sign/internal/gloss"
	"voice2sign/internal/textutil"
)

const glossFileNameParts = 5

func newRenderCommand(ctx *commandContext) *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render fingerspelling GIFs from the sign dataset",
	}
	renderCmd.AddCommand(newRenderLetterCommand(ctx))
	renderCmd.AddCommand(newRenderTokenCommand(ctx))
	renderCmd.AddCommand(newRenderGlossCommand(ctx))
	return renderCmd
}

func newRenderLetterCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "letter <L>",
		Short: "Render a slow single-letter GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := ctx.renderer()
			if err != nil {
				return err
			}
			path, err := renderer.LetterGIF(args[0])
			if err != nil {
				return fmt.Errorf("render letter %q: %w", args[0], err)
			}
			return reportGIF(cmd, path, outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Copy the GIF to this path")
	return cmd
}

func newRenderTokenCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "token <WORD>",
		Short: "Render a GIF spelling one word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := ctx.renderer()
			if err != nil {
				return err
			}
			path, err := renderer.TokenGIF(args[0])
			if err != nil {
				return fmt.Errorf("render token %q: %w", args[0], err)
			}
			return reportGIF(cmd, path, outPath)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Copy the GIF to this path")
	return cmd
}

func newRenderGlossCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	var fromText bool
	cmd := &cobra.Command{
		Use:   "gloss <WORD...>",
		Short: "Render the fast combined GIF for a gloss sequence",
		Long: "Render the fast combined GIF for a gloss sequence.\n\n" +
			"With --text the arguments are read as an English sentence and converted to gloss first.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tokens := args
			if fromText {
				tokens, err = gloss.TextToGloss(strings.Join(args, " "), cfg.Gloss.KeepNegation)
				if err != nil {
					return err
				}
			}
			renderer, err := ctx.renderer()
			if err != nil {
				return err
			}
			data, err := renderer.CombinedGIF(tokens)
			if err != nil {
				return fmt.Errorf("render gloss: %w", err)
			}
			target := outPath
			if target == "" {
				target = filepath.Join(cfg.Paths.OutputDir, textutil.GlossFileName(tokens, glossFileNameParts))
			}
			if err := fileutil.WriteFileAtomic(target, data); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Gloss: %s\n", gloss.Display(tokens))
			fmt.Fprintf(out, "Wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output GIF path (default: output_dir/gloss_<words>.gif)")
	cmd.Flags().BoolVar(&fromText, "text", false, "Treat arguments as English text and convert to gloss")
	return cmd
}

func reportGIF(cmd *cobra.Command, cached, outPath string) error {
	out := cmd.OutOrStdout()
	if outPath == "" {
		fmt.Fprintln(out, cached)
		return nil
	}
	if err := fileutil.CopyFile(cached, outPath); err != nil {
		return fmt.Errorf("copy gif: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", outPath)
	return nil
}
