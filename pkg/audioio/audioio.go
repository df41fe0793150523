// Package audioio provides audio capture and playback behind small
// Source/Sink interfaces.
//
// Two backends ship: PortAudio for real devices and a mock for tests
// without hardware.
package audioio

import (
	"context"
	"errors"
	"io"
	"math"
)

// Sentinel errors.
var (
	// ErrNoDevice indicates no usable capture or playback device.
	ErrNoDevice = errors.New("audioio: no audio device available")

	// ErrNotStarted indicates Read/Write before Start.
	ErrNotStarted = errors.New("audioio: not started")

	// ErrClosed indicates use after Close.
	ErrClosed = errors.New("audioio: closed")
)

// Chunk is one frame's worth of mono or interleaved PCM16 audio.
type Chunk struct {
	// Samples contains PCM16 samples (little-endian on the wire).
	Samples []int16

	// SampleRate is the sample rate of this chunk in Hz.
	SampleRate int

	// Channels is the number of interleaved channels.
	Channels int
}

// Bytes returns the raw little-endian bytes of the chunk.
func (c *Chunk) Bytes() []byte {
	buf := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// FromBytes populates the chunk from raw PCM16 bytes.
func (c *Chunk) FromBytes(data []byte, sampleRate, channels int) {
	c.SampleRate = sampleRate
	c.Channels = channels
	c.Samples = make([]int16, len(data)/2)
	for i := range c.Samples {
		c.Samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
}

// Duration returns the playback duration of this chunk in seconds.
func (c *Chunk) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}

// RMS returns the root-mean-square amplitude in raw sample units
// (0..32767), the loudness proxy used for speech detection.
func (c *Chunk) RMS() float64 {
	if len(c.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range c.Samples {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(c.Samples)))
}

// NormRMS returns the RMS amplitude normalized to [0,1].
func (c *Chunk) NormRMS() float64 {
	return c.RMS() / 32768.0
}

// Source captures audio from a microphone or other input device.
type Source interface {
	// Start begins audio capture.
	Start(ctx context.Context) error

	// Stop halts capture. Safe to call multiple times.
	Stop() error

	// Read returns the next chunk, blocking if necessary.
	// Returns io.EOF when the stream is exhausted or stopped.
	Read(ctx context.Context) (Chunk, error)

	// Config returns the configured audio parameters.
	Config() Config

	// Name returns the backend name.
	Name() string

	// Close releases all resources. The source cannot be restarted.
	io.Closer
}

// Sink plays audio to a speaker or other output device.
type Sink interface {
	// Start begins playback.
	Start(ctx context.Context) error

	// Stop halts playback. Safe to call multiple times.
	Stop() error

	// Write sends one chunk to the device. May block while the device
	// drains its buffer.
	Write(ctx context.Context, chunk Chunk) error

	// Flush plays out any buffered partial frame.
	Flush(ctx context.Context) error

	// Config returns the configured audio parameters.
	Config() Config

	// Name returns the backend name.
	Name() string

	// Close releases all resources. The sink cannot be restarted.
	io.Closer
}
