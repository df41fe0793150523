package mouth

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/audioio"
)

// VisualizerConfig tunes the loudness-to-light mapping and playback
// pacing.
type VisualizerConfig struct {
	// FrameSize is the number of samples per playback chunk.
	FrameSize int

	// Smoothing is the weight of the previous level in the exponential
	// smoother; higher values damp flicker.
	Smoothing float64

	// Lead is how far ahead of real time the first chunk is scheduled,
	// absorbing scheduling jitter before the device buffer drains.
	Lead time.Duration

	// PulseOn and PulseOff set the alert pulse duty cycle.
	PulseOn  time.Duration
	PulseOff time.Duration
}

// DefaultVisualizerConfig returns the reference tuning.
func DefaultVisualizerConfig() VisualizerConfig {
	return VisualizerConfig{
		FrameSize: 512,
		Smoothing: 0.6,
		Lead:      70 * time.Millisecond,
		PulseOn:   250 * time.Millisecond,
		PulseOff:  250 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c VisualizerConfig) Validate() error {
	if c.FrameSize <= 0 {
		return fmt.Errorf("mouth: frame size must be positive, got %d", c.FrameSize)
	}
	if !(c.Smoothing >= 0 && c.Smoothing < 1) {
		return fmt.Errorf("mouth: smoothing must be in [0,1), got %v", c.Smoothing)
	}
	return nil
}

// Visualizer plays speech audio while animating the mouth strip with
// the signal's loudness.
type Visualizer struct {
	strip *Strip
	cfg   VisualizerConfig
}

// NewVisualizer creates a visualizer over the given strip.
func NewVisualizer(strip *Strip, cfg VisualizerConfig) (*Visualizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Visualizer{strip: strip, cfg: cfg}, nil
}

// level maps a normalized RMS amplitude to a lit fraction. Quiet
// speech still lights a visible band; the curve saturates at 1.
func level(normRMS float64) float64 {
	return math.Min(1, math.Log10(1+55*normRMS))
}

// Play writes the samples to the sink in fixed-size frames, driving
// the strip from each frame's loudness just before the frame's
// playback deadline. Deadlines accumulate from the start time, so
// pacing does not drift with per-frame processing cost. The strip is
// cleared when playback ends for any reason.
func (v *Visualizer) Play(ctx context.Context, samples []int16, sampleRate int, color Color, sink audioio.Sink) error {
	if sampleRate <= 0 {
		return fmt.Errorf("mouth: sample rate must be positive, got %d", sampleRate)
	}
	defer v.strip.Clear()

	if err := sink.Start(ctx); err != nil {
		return err
	}
	defer sink.Stop()

	frameDur := time.Duration(float64(v.cfg.FrameSize) / float64(sampleRate) * float64(time.Second))
	deadline := time.Now().Add(v.cfg.Lead)
	prev := 0.0

	log.Debug("visualized playback", "samples", len(samples), "rate", sampleRate, "frame", v.cfg.FrameSize)

	for off := 0; off < len(samples); off += v.cfg.FrameSize {
		end := off + v.cfg.FrameSize
		if end > len(samples) {
			end = len(samples)
		}
		chunk := audioio.Chunk{Samples: samples[off:end], SampleRate: sampleRate, Channels: 1}

		cur := level(chunk.NormRMS())
		smoothed := v.cfg.Smoothing*prev + (1-v.cfg.Smoothing)*cur
		prev = smoothed

		if err := v.strip.Show(smoothed, color); err != nil {
			return fmt.Errorf("mouth: show: %w", err)
		}

		if err := sleepUntil(ctx, deadline); err != nil {
			return err
		}
		if err := sink.Write(ctx, chunk); err != nil {
			return fmt.Errorf("mouth: write audio: %w", err)
		}
		deadline = deadline.Add(frameDur)
	}

	return sink.Flush(ctx)
}

// AlertPulse flashes the whole strip red n times.
func (v *Visualizer) AlertPulse(ctx context.Context, n int) error {
	defer v.strip.Clear()
	for i := 0; i < n; i++ {
		if err := v.strip.Fill(Red); err != nil {
			return err
		}
		if err := sleepFor(ctx, v.cfg.PulseOn); err != nil {
			return err
		}
		if err := v.strip.Clear(); err != nil {
			return err
		}
		if err := sleepFor(ctx, v.cfg.PulseOff); err != nil {
			return err
		}
	}
	return nil
}

func sleepUntil(ctx context.Context, t time.Time) error {
	return sleepFor(ctx, time.Until(t))
}

func sleepFor(ctx context.Context, d time.Duration) error {
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
