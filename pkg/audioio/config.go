package audioio

import "fmt"

// Config holds audio stream parameters.
type Config struct {
	// SampleRate in Hz. Capture runs at 44100 on the reference build;
	// synthesized playback at 48000.
	SampleRate int

	// Channels is the number of channels. The head is mono everywhere.
	Channels int

	// FrameSize is the number of samples per chunk.
	FrameSize int
}

// DefaultCaptureConfig returns the microphone configuration.
func DefaultCaptureConfig() Config {
	return Config{SampleRate: 44100, Channels: 1, FrameSize: 1024}
}

// DefaultPlaybackConfig returns the speaker configuration.
func DefaultPlaybackConfig() Config {
	return Config{SampleRate: 48000, Channels: 1, FrameSize: 512}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("audioio: sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("audioio: channels must be positive, got %d", c.Channels)
	}
	if c.FrameSize <= 0 {
		return fmt.Errorf("audioio: frame size must be positive, got %d", c.FrameSize)
	}
	return nil
}

// FrameDuration returns the wall-clock duration of one frame in seconds.
func (c Config) FrameDuration() float64 {
	return float64(c.FrameSize) / float64(c.SampleRate*c.Channels)
}
