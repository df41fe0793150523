package behavior

import (
	"context"
	"time"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/state"
)

// StatusLamp is a single boolean status output, typically one LED.
type StatusLamp interface {
	Set(on bool) error
}

// IndicatorConfig tunes the status lamp loop.
type IndicatorConfig struct {
	// BlinkInterval is the on and off time while busy.
	BlinkInterval time.Duration

	// Poll is the re-check interval in the steady states.
	Poll time.Duration
}

// DefaultIndicatorConfig returns the reference tuning.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		BlinkInterval: 300 * time.Millisecond,
		Poll:          100 * time.Millisecond,
	}
}

// Indicator renders the behavioral mode on a status lamp: off while
// unarmed, blinking while thinking or speaking, solid while armed and
// idle or armed and offline. The arm switch always wins: a disarmed
// head shows no light even when the offline flag is set.
type Indicator struct {
	lamp  StatusLamp
	mode  func() state.Mode
	armed func() bool
	cfg   IndicatorConfig
}

// NewIndicator creates the status lamp loop. armed may be nil, which
// reads as always armed.
func NewIndicator(lamp StatusLamp, mode func() state.Mode, armed func() bool, cfg IndicatorConfig) *Indicator {
	if armed == nil {
		armed = func() bool { return true }
	}
	return &Indicator{lamp: lamp, mode: mode, armed: armed, cfg: cfg}
}

// Run drives the lamp until the context is cancelled, turning it off on
// the way out.
func (ind *Indicator) Run(ctx context.Context) error {
	defer ind.lamp.Set(false)

	lit := false
	set := func(on bool) {
		if on == lit {
			return
		}
		if err := ind.lamp.Set(on); err != nil {
			log.Warn("status lamp write failed", "error", err)
			return
		}
		lit = on
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch ind.mode() {
		case state.ModeThinking, state.ModeSpeaking:
			if err := ind.lamp.Set(!lit); err != nil {
				log.Warn("status lamp write failed", "error", err)
			} else {
				lit = !lit
			}
			if err := sleep(ctx, ind.cfg.BlinkInterval); err != nil {
				return err
			}

		case state.ModeIdle:
			set(true)
			if err := sleep(ctx, ind.cfg.Poll); err != nil {
				return err
			}

		case state.ModeOffline:
			set(ind.armed())
			if err := sleep(ctx, ind.cfg.Poll); err != nil {
				return err
			}

		default:
			set(false)
			if err := sleep(ctx, ind.cfg.Poll); err != nil {
				return err
			}
		}
	}
}
