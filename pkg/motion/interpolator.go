// Package motion performs sub-servo-step interpolation for the eye
// mechanism: lock-step batch moves and staggered eyelid choreography.
package motion

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cogbotics/go-animahead/pkg/servo"
)

// Target is one channel's destination angle in a batch move.
type Target struct {
	Channel servo.Channel
	Angle   float64
}

// InterpolatorConfig holds motion timing parameters.
type InterpolatorConfig struct {
	// StepSize is the interpolation step in degrees.
	StepSize float64

	// StepDelay is the sleep between iterations. Constant delay plus
	// constant step size gives constant angular velocity for the batch.
	StepDelay time.Duration
}

// DefaultInterpolatorConfig returns the reference head's motion timing.
func DefaultInterpolatorConfig() InterpolatorConfig {
	return InterpolatorConfig{
		StepSize:  1,
		StepDelay: 10 * time.Millisecond,
	}
}

// Interpolator moves batches of servos from their current positions to
// target positions in lock-step, finishing together regardless of each
// channel's travel distance.
type Interpolator struct {
	ctrl *servo.Controller
	pos  *servo.Positions
	cfg  InterpolatorConfig

	// mu serializes batch moves so two loops cannot interleave partial
	// moves to the same channels.
	mu sync.Mutex
}

// NewInterpolator creates an interpolator over a controller and its
// position table.
func NewInterpolator(ctrl *servo.Controller, pos *servo.Positions, cfg InterpolatorConfig) *Interpolator {
	if cfg.StepSize <= 0 {
		cfg.StepSize = 1
	}
	return &Interpolator{ctrl: ctrl, pos: pos, cfg: cfg}
}

// MoveTogether drives every target channel toward its target angle
// simultaneously. The channel with the largest delta sets the step
// count; smaller deltas reach their targets proportionally earlier. An
// empty batch, or a batch already at target, performs zero writes.
//
// On completion the position table holds the exact targets, correcting
// any rounding drift from the intermediate steps.
func (in *Interpolator) MoveTogether(ctx context.Context, targets []Target) error {
	if len(targets) == 0 {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	starts := make([]float64, len(targets))
	steps := 0.0
	for i, tg := range targets {
		// Channels never commanded count as already at target.
		starts[i] = in.pos.GetOr(tg.Channel.ID, tg.Angle)
		if d := math.Abs(tg.Angle - starts[i]); d > steps {
			steps = d
		}
	}
	if steps == 0 {
		return nil
	}

	iterations := int(math.Ceil(steps/in.cfg.StepSize)) + 1
	last := make([]float64, len(targets))
	copy(last, starts)

	for n := 0; n < iterations; n++ {
		select {
		case <-ctx.Done():
			// Keep the table truthful about what was actually issued.
			for i, tg := range targets {
				in.pos.Set(tg.Channel.ID, last[i])
			}
			return ctx.Err()
		default:
		}

		t := math.Min(1, float64(n)*in.cfg.StepSize/steps)
		for i, tg := range targets {
			if starts[i] == tg.Angle {
				continue
			}
			angle := starts[i] + (tg.Angle-starts[i])*t
			if err := in.ctrl.SetAngle(tg.Channel, angle); err != nil {
				return err
			}
			last[i] = angle
		}

		time.Sleep(in.cfg.StepDelay)
	}

	for _, tg := range targets {
		in.pos.Set(tg.Channel.ID, tg.Angle)
	}
	return nil
}
