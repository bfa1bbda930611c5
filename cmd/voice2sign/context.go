package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"voice2sign/internal/config"
	"voice2sign/internal/history"
	"voice2sign/internal/logging"
	"voice2sign/internal/pipeline"
	"voice2sign/internal/render"
	"voice2sign/internal/signs"
	"voice2sign/internal/stagecache"
)

// commandContext lazily builds the collaborators a command needs so that
// "config init" works without a valid config and "status" never opens the
// history database twice.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	loaderOnce sync.Once
	loader     *signs.Loader

	history *history.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) openCache() (*stagecache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return stagecache.New(cfg.Paths.CacheDir, c.log())
}

func (c *commandContext) openHistory() (*history.Store, error) {
	if c.history != nil {
		return c.history, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	c.history = store
	return store, nil
}

func (c *commandContext) signLoader() (*signs.Loader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loaderOnce.Do(func() {
		c.loader = signs.NewLoader(cfg.Paths.DatasetDir, c.log())
	})
	return c.loader, nil
}

func (c *commandContext) renderer() (*render.Renderer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	loader, err := c.signLoader()
	if err != nil {
		return nil, err
	}
	return render.New(renderOptions(cfg), loader, c.log()), nil
}

// runner wires the pipeline with history when the database opens; a broken
// history database only costs the sidebar, not the analysis.
func (c *commandContext) runner() (*pipeline.Runner, *stagecache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	cache, err := c.openCache()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openHistory()
	if err != nil {
		logging.WarnWithContext(c.log(), "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "runs are not recorded in history"),
		)
		return pipeline.NewFromConfig(cfg, cache, nil, c.log()), cache, nil
	}
	return pipeline.NewFromConfig(cfg, cache, store, c.log()), cache, nil
}

func (c *commandContext) close() error {
	if c.history == nil {
		return nil
	}
	err := c.history.Close()
	c.history = nil
	return err
}

func renderOptions(cfg *config.Config) render.Options {
	return render.Options{
		GIFDir:          cfg.GIFDir(),
		FrameWidth:      cfg.Render.FrameWidth,
		FrameHeight:     cfg.Render.FrameHeight,
		ImageSize:       cfg.Render.ImageSize,
		LetterDelayMS:   cfg.Render.LetterDelayMS,
		TokenDelayMS:    cfg.Render.TokenDelayMS,
		CombinedDelayMS: cfg.Render.CombinedDelayMS,
		HoldFrames:      cfg.Render.PauseFrames,
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
