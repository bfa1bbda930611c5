package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"voice2sign/internal/config"
	"voice2sign/internal/signs"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)

			written, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("reload sample config: %w", err)
			}
			covered, detail := datasetCoverage(written.Paths.DatasetDir)
			fmt.Fprintf(out, "Sign dataset: %s\n", detail)
			if covered == 0 {
				fmt.Fprintln(out, "Point paths.dataset_dir at the ISL image folders (one per character A-Z, 1-9) before running voice2sign.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			}
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Output dir", cfg.Paths.OutputDir},
				{"Cache dir", cfg.Paths.CacheDir},
				{"Dataset dir", cfg.Paths.DatasetDir},
				{"Sign dataset", datasetSummary(cfg.Paths.DatasetDir)},
				{"History DB", cfg.Paths.HistoryDB},
				{"Transcription", cfg.Transcription.Backend + " / " + cfg.Transcription.Model},
				{"Emotion", emotionSummary(cfg.Emotion.Enabled, cfg.Emotion.Backend)},
			}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// datasetCoverage counts the characters with at least one sign image in dir.
func datasetCoverage(dir string) (int, string) {
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Sprintf("%s not found", dir)
	}
	covered := len(signs.NewLoader(dir, nil).Available())
	return covered, fmt.Sprintf("%d/%d characters in %s", covered, len(signs.Alphabet), dir)
}

func datasetSummary(dir string) string {
	_, detail := datasetCoverage(dir)
	return detail
}
