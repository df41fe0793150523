package behavior

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/motion"
	"github.com/cogbotics/go-animahead/pkg/state"
)

// GazeConfig tunes the ambient eye motion per mode.
type GazeConfig struct {
	// ThinkingScale, SpeakingScale and IdleScale shrink random gaze
	// targets toward center in each mode.
	ThinkingScale float64
	SpeakingScale float64
	IdleScale     float64

	// ThinkingBlinkChance and SpeakingBlinkChance are per-move blink
	// probabilities. Idle blinking runs on its own randomized timer.
	ThinkingBlinkChance float64
	SpeakingBlinkChance float64

	// MinBlinkGap suppresses blinks that would land too soon after the
	// previous eyelid motion.
	MinBlinkGap time.Duration

	// ThinkingPause is the fixed pause between thinking-mode moves.
	ThinkingPause time.Duration

	// SpeakingPauseMin/Max bound the random pause between speaking-mode
	// moves.
	SpeakingPauseMin time.Duration
	SpeakingPauseMax time.Duration

	// IdlePauseMin/Max bound the random pause between idle-mode moves.
	IdlePauseMin time.Duration
	IdlePauseMax time.Duration

	// IdleBlinkMin/Max bound the randomized idle inter-blink interval.
	IdleBlinkMin time.Duration
	IdleBlinkMax time.Duration

	// HoldPoll is the sleep while the head must stay still.
	HoldPoll time.Duration
}

// DefaultGazeConfig returns the reference tuning.
func DefaultGazeConfig() GazeConfig {
	return GazeConfig{
		ThinkingScale:       0.5,
		SpeakingScale:       0.3,
		IdleScale:           1.0,
		ThinkingBlinkChance: 0.3,
		SpeakingBlinkChance: 0.2,
		MinBlinkGap:         200 * time.Millisecond,
		ThinkingPause:       time.Second,
		SpeakingPauseMin:    800 * time.Millisecond,
		SpeakingPauseMax:    1800 * time.Millisecond,
		IdlePauseMin:        time.Second,
		IdlePauseMax:        3 * time.Second,
		IdleBlinkMin:        7 * time.Second,
		IdleBlinkMax:        12 * time.Second,
		HoldPoll:            100 * time.Millisecond,
	}
}

// Gaze runs the ambient eye motion loop. The motion pattern follows the
// behavioral mode: small quick glances while thinking, subtle drift
// while speaking, wide relaxed wandering when idle, and stillness when
// offline or unarmed.
type Gaze struct {
	face   *Face
	blinks *motion.Choreographer
	mode   func() state.Mode
	cfg    GazeConfig
	rng    *rand.Rand
}

// NewGaze creates the gaze loop. rng may be nil for a default source.
func NewGaze(face *Face, blinks *motion.Choreographer, mode func() state.Mode, cfg GazeConfig, rng *rand.Rand) *Gaze {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Gaze{face: face, blinks: blinks, mode: mode, cfg: cfg, rng: rng}
}

func (g *Gaze) randBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(g.rng.Int64N(int64(max-min)))
}

func (g *Gaze) maybeBlink(chance float64) {
	if time.Since(g.blinks.LastBlink()) < g.cfg.MinBlinkGap {
		return
	}
	if err := g.blinks.Blink(chance); err != nil {
		log.Warn("blink failed", "error", err)
	}
}

func (g *Gaze) glance(ctx context.Context, scale float64) {
	x, y := g.face.RandomGazeTarget(g.rng, scale)
	if err := g.face.LookAt(ctx, x, y); err != nil && ctx.Err() == nil {
		log.Warn("gaze move failed", "error", err)
	}
}

// Run drives the loop until the context is cancelled.
func (g *Gaze) Run(ctx context.Context) error {
	nextIdleBlink := time.Now().Add(g.randBetween(g.cfg.IdleBlinkMin, g.cfg.IdleBlinkMax))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch g.mode() {
		case state.ModeThinking:
			// Two quick reduced glances per cycle.
			for i := 0; i < 2; i++ {
				g.glance(ctx, g.cfg.ThinkingScale)
				g.maybeBlink(g.cfg.ThinkingBlinkChance)
				if err := sleep(ctx, g.cfg.ThinkingPause); err != nil {
					return err
				}
			}

		case state.ModeSpeaking:
			g.glance(ctx, g.cfg.SpeakingScale)
			g.maybeBlink(g.cfg.SpeakingBlinkChance)
			if err := sleep(ctx, g.randBetween(g.cfg.SpeakingPauseMin, g.cfg.SpeakingPauseMax)); err != nil {
				return err
			}

		case state.ModeIdle:
			g.glance(ctx, g.cfg.IdleScale)
			if time.Now().After(nextIdleBlink) {
				g.maybeBlink(1)
				nextIdleBlink = time.Now().Add(g.randBetween(g.cfg.IdleBlinkMin, g.cfg.IdleBlinkMax))
			}
			if err := sleep(ctx, g.randBetween(g.cfg.IdlePauseMin, g.cfg.IdlePauseMax)); err != nil {
				return err
			}

		default:
			// Offline or unarmed: hold still.
			if err := sleep(ctx, g.cfg.HoldPoll); err != nil {
				return err
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
