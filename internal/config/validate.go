package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateEmotion(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 48000 {
		return fmt.Errorf("audio.sample_rate must be between 8000 and 48000, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Backend {
	case "whisper":
		if !ValidWhisperModel(c.Transcription.Model) {
			return fmt.Errorf("transcription.model must be one of %s, got %q", strings.Join(WhisperModels, ", "), c.Transcription.Model)
		}
	case "api":
		if c.Transcription.APIURL == "" {
			return errors.New("transcription.api_url must be set when transcription.backend is api")
		}
	default:
		return fmt.Errorf("transcription.backend must be whisper or api, got %q", c.Transcription.Backend)
	}
	return nil
}

func (c *Config) validateEmotion() error {
	switch c.Emotion.Backend {
	case "http":
		if c.Emotion.Enabled && c.Emotion.ServiceURL == "" {
			return errors.New("emotion.service_url must be set when emotion.backend is http")
		}
	case "llm":
		if c.Emotion.Enabled && c.LLM.APIKey == "" {
			return errors.New("llm.api_key must be set when emotion.backend is llm (or set OPENROUTER_API_KEY)")
		}
	default:
		return fmt.Errorf("emotion.backend must be http or llm, got %q", c.Emotion.Backend)
	}
	return nil
}

func (c *Config) validateRender() error {
	r := c.Render
	if r.ImageSize > r.FrameWidth || r.ImageSize > r.FrameHeight {
		return fmt.Errorf("render.image_size (%d) must fit inside the %dx%d frame", r.ImageSize, r.FrameWidth, r.FrameHeight)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
}

// ValidWhisperModel reports whether model is one of WhisperModels.
func ValidWhisperModel(model string) bool {
	return slices.Contains(WhisperModels, strings.ToLower(strings.TrimSpace(model)))
}
