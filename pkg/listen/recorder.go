// Package listen captures a single utterance from a live audio stream
// using amplitude thresholding with silence-based endpointing.
package listen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/audioio"
)

// ErrNoAudio indicates the session ended without capturing any frames.
var ErrNoAudio = errors.New("listen: no audio captured")

// Status describes how a capture session terminated.
type Status int

const (
	// StatusDone means silence endpointing finished the utterance.
	StatusDone Status = iota
	// StatusCancelled means the disarm signal stopped the session.
	// Frames captured before the cancel are kept.
	StatusCancelled
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Config holds the speech segmentation parameters.
type Config struct {
	// Threshold is the raw RMS loudness (0..32767) at or above which a
	// frame counts as speech.
	Threshold float64

	// SilenceDuration is how long loudness must stay continuously below
	// Threshold before the utterance is considered finished. Wall-clock
	// based so it stays correct under variable frame processing cost.
	SilenceDuration time.Duration
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		Threshold:       2400,
		SilenceDuration: 600 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("listen: threshold must be positive, got %v", c.Threshold)
	}
	if c.SilenceDuration <= 0 {
		return fmt.Errorf("listen: silence duration must be positive, got %v", c.SilenceDuration)
	}
	return nil
}

// Capture is one finished recording session.
type Capture struct {
	// ID identifies the session in logs.
	ID string

	// Samples is the accumulated mono PCM16 audio, starting with the
	// frame that triggered recording.
	Samples []int16

	// SampleRate is the capture rate in Hz.
	SampleRate int

	// Status says whether the session finished or was cancelled.
	Status Status
}

// Duration returns the captured audio length.
func (c *Capture) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// WAV serializes the capture to a mono PCM16 WAV container.
func (c *Capture) WAV() []byte {
	return audioio.EncodeWAV(c.Samples, c.SampleRate, 1)
}

// Recorder runs voice-activated capture sessions.
type Recorder struct {
	cfg Config
}

// NewRecorder creates a recorder with the given segmentation config.
func NewRecorder(cfg Config) *Recorder {
	return &Recorder{cfg: cfg}
}

// Record runs one capture session: wait for speech onset, accumulate
// frames, and stop after continuous silence. The armed signal is
// sampled every frame; when it goes false the session terminates as
// cancelled within one frame-read interval, keeping frames already
// captured. Returns ErrNoAudio if nothing was recorded, or the source's
// error (audioio.ErrNoDevice) if capture could not start.
func (r *Recorder) Record(ctx context.Context, src audioio.Source, armed func() bool) (*Capture, error) {
	if err := src.Start(ctx); err != nil {
		return nil, err
	}
	defer src.Stop()

	id := uuid.NewString()
	logger := log.With("session", id)
	logger.Info("listening for speech", "threshold", r.cfg.Threshold)

	var samples []int16
	recording := false
	var silenceStart time.Time // zero means the silence timer is unset
	status := StatusDone

	for {
		// Disarm takes priority over silence detection.
		if !armed() {
			logger.Info("disarmed, cancelling capture")
			status = StatusCancelled
			break
		}
		if ctx.Err() != nil {
			status = StatusCancelled
			break
		}

		chunk, err := src.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = StatusCancelled
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listen: read: %w", err)
		}

		rms := chunk.RMS()

		if !recording {
			// Waiting for speech above the noise floor. The triggering
			// frame is the first recorded frame.
			if rms >= r.cfg.Threshold {
				logger.Info("recording started", "rms", rms)
				recording = true
				samples = append(samples, chunk.Samples...)
			}
			continue
		}

		samples = append(samples, chunk.Samples...)

		if rms < r.cfg.Threshold {
			if silenceStart.IsZero() {
				silenceStart = time.Now()
			} else if time.Since(silenceStart) >= r.cfg.SilenceDuration {
				logger.Info("silence detected, stopping")
				break
			}
		} else {
			// A loud blip resets the timer: only a continuous
			// below-threshold span counts.
			silenceStart = time.Time{}
		}
	}

	if len(samples) == 0 {
		logger.Warn("no audio captured")
		return nil, ErrNoAudio
	}

	out := &Capture{
		ID:         id,
		Samples:    samples,
		SampleRate: src.Config().SampleRate,
		Status:     status,
	}
	logger.Info("capture finished", "status", status.String(), "duration", out.Duration())
	return out, nil
}
