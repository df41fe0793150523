package behavior

import (
	"context"
	"time"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/state"
)

// IdleTalkConfig tunes the unprompted speech timer.
type IdleTalkConfig struct {
	// Threshold is how long the head must sit armed and idle before it
	// speaks up.
	Threshold time.Duration

	// Poll is the timer check interval.
	Poll time.Duration
}

// DefaultIdleTalkConfig returns the reference tuning.
func DefaultIdleTalkConfig() IdleTalkConfig {
	return IdleTalkConfig{
		Threshold: 90 * time.Second,
		Poll:      time.Second,
	}
}

// IdleTalk speaks an unprompted phrase after a long armed-and-idle
// stretch. Any activity (disarming, thinking, speaking, offline)
// resets the timer.
type IdleTalk struct {
	mode  func() state.Mode
	speak func(ctx context.Context) error
	cfg   IdleTalkConfig
}

// NewIdleTalk creates the idle announcement loop. speak is invoked
// when the timer fires.
func NewIdleTalk(mode func() state.Mode, speak func(ctx context.Context) error, cfg IdleTalkConfig) *IdleTalk {
	return &IdleTalk{mode: mode, speak: speak, cfg: cfg}
}

// Run drives the timer until the context is cancelled.
func (it *IdleTalk) Run(ctx context.Context) error {
	last := time.Now()

	for {
		if err := sleep(ctx, it.cfg.Poll); err != nil {
			return err
		}

		if it.mode() != state.ModeIdle {
			last = time.Now()
			continue
		}

		if time.Since(last) >= it.cfg.Threshold {
			log.Info("idle threshold reached, speaking up")
			if err := it.speak(ctx); err != nil && ctx.Err() == nil {
				log.Warn("idle speech failed", "error", err)
			}
			last = time.Now()
		}
	}
}
