package app

import (
	"fmt"
	"time"

	"github.com/cogbotics/go-animahead/internal/config"
	"github.com/cogbotics/go-animahead/pkg/audioio"
	"github.com/cogbotics/go-animahead/pkg/behavior"
	"github.com/cogbotics/go-animahead/pkg/listen"
	"github.com/cogbotics/go-animahead/pkg/motion"
	"github.com/cogbotics/go-animahead/pkg/mouth"
)

// Config collects every tunable of the head.
type Config struct {
	// OpenAIKey authenticates the conversational collaborators.
	OpenAIKey string

	// Port is the status server's listen port.
	Port string

	// PalettePath optionally overrides the emotion colors from a YAML
	// file. Empty uses the built-in table.
	PalettePath string

	// PixelCount is the mouth strip size.
	PixelCount int

	// ArmPoll is how often the arm switch is sampled between turns.
	ArmPoll time.Duration

	// Announcement is spoken once at startup.
	Announcement string

	Listen       listen.Config
	Capture      audioio.Config
	Playback     audioio.Config
	Visualizer   mouth.VisualizerConfig
	Interpolator motion.InterpolatorConfig
	Blink        motion.BlinkConfig
	Gaze         behavior.GazeConfig
	Indicator    behavior.IndicatorConfig
	IdleTalk     behavior.IdleTalkConfig
}

// DefaultConfig returns the reference head's tuning.
func DefaultConfig() Config {
	return Config{
		Port:         "8080",
		PixelCount:   8,
		ArmPoll:      50 * time.Millisecond,
		Announcement: "I'm ready. Press the button and ask me a question.",
		Listen:       listen.DefaultConfig(),
		Capture:      audioio.DefaultCaptureConfig(),
		Playback:     audioio.DefaultPlaybackConfig(),
		Visualizer:   mouth.DefaultVisualizerConfig(),
		Interpolator: motion.DefaultInterpolatorConfig(),
		Blink:        motion.DefaultBlinkConfig(),
		Gaze:         behavior.DefaultGazeConfig(),
		Indicator:    behavior.DefaultIndicatorConfig(),
		IdleTalk:     behavior.DefaultIdleTalkConfig(),
	}
}

// FromEnv overlays environment settings onto the defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.OpenAIKey = config.Env("OPENAI_API_KEY", "")
	cfg.Port = config.Env("ANIMAHEAD_PORT", cfg.Port)
	cfg.PalettePath = config.Env("ANIMAHEAD_PALETTE", "")
	cfg.Listen.Threshold = float64(config.EnvInt("ANIMAHEAD_THRESHOLD", int(cfg.Listen.Threshold)))
	cfg.Listen.SilenceDuration = config.EnvDuration("ANIMAHEAD_SILENCE", cfg.Listen.SilenceDuration)
	cfg.IdleTalk.Threshold = config.EnvDuration("ANIMAHEAD_IDLE_INTERVAL", cfg.IdleTalk.Threshold)
	return cfg
}

// Validate checks the composite configuration.
func (c Config) Validate() error {
	if c.OpenAIKey == "" {
		return fmt.Errorf("app: OPENAI_API_KEY is required")
	}
	if c.PixelCount <= 0 || c.PixelCount%2 != 0 {
		return fmt.Errorf("app: pixel count must be positive and even, got %d", c.PixelCount)
	}
	if c.ArmPoll <= 0 {
		return fmt.Errorf("app: arm poll interval must be positive, got %v", c.ArmPoll)
	}
	if err := c.Listen.Validate(); err != nil {
		return err
	}
	if err := c.Capture.Validate(); err != nil {
		return err
	}
	if err := c.Playback.Validate(); err != nil {
		return err
	}
	return c.Visualizer.Validate()
}
