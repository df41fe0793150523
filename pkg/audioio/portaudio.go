package audioio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource captures from the default input device.
type PortAudioSource struct {
	cfg Config

	mu      sync.Mutex
	buf     []int16
	stream  *portaudio.Stream
	started bool
	closed  bool
}

// NewPortAudioSource creates a source for the default microphone.
func NewPortAudioSource(cfg Config) (*PortAudioSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PortAudioSource{cfg: cfg, buf: make([]int16, cfg.FrameSize*cfg.Channels)}, nil
}

// Start opens and starts the capture stream.
func (s *PortAudioSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	stream, err := portaudio.OpenDefaultStream(s.cfg.Channels, 0, float64(s.cfg.SampleRate), len(s.buf), &s.buf)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	s.stream = stream
	s.started = true
	return nil
}

// Read blocks until the next frame is captured.
func (s *PortAudioSource) Read(ctx context.Context) (Chunk, error) {
	s.mu.Lock()
	stream := s.stream
	started := s.started
	s.mu.Unlock()

	if !started {
		return Chunk{}, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}

	if err := stream.Read(); err != nil {
		return Chunk{}, fmt.Errorf("audioio: portaudio read: %w", err)
	}

	frame := make([]int16, len(s.buf))
	copy(frame, s.buf)
	return Chunk{Samples: frame, SampleRate: s.cfg.SampleRate, Channels: s.cfg.Channels}, nil
}

// Stop halts capture.
func (s *PortAudioSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	err := s.stream.Stop()
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	s.stream = nil
	return err
}

// Config returns the capture configuration.
func (s *PortAudioSource) Config() Config { return s.cfg }

// Name returns the backend name.
func (s *PortAudioSource) Name() string { return "portaudio" }

// Close stops and releases the source.
func (s *PortAudioSource) Close() error {
	err := s.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}

// PortAudioSink plays to the default output device.
type PortAudioSink struct {
	cfg Config

	mu      sync.Mutex
	buf     []int16
	pending []int16
	stream  *portaudio.Stream
	started bool
	closed  bool
}

// NewPortAudioSink creates a sink for the default speaker.
func NewPortAudioSink(cfg Config) (*PortAudioSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PortAudioSink{cfg: cfg, buf: make([]int16, cfg.FrameSize*cfg.Channels)}, nil
}

// Start opens and starts the playback stream.
func (s *PortAudioSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.started {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	stream, err := portaudio.OpenDefaultStream(0, s.cfg.Channels, float64(s.cfg.SampleRate), len(s.buf), &s.buf)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	s.stream = stream
	s.started = true
	return nil
}

// Write queues chunk samples and plays every complete device frame.
func (s *PortAudioSink) Write(ctx context.Context, chunk Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.pending = append(s.pending, chunk.Samples...)
	for len(s.pending) >= len(s.buf) {
		copy(s.buf, s.pending[:len(s.buf)])
		s.pending = s.pending[len(s.buf):]
		if err := s.stream.Write(); err != nil {
			return fmt.Errorf("audioio: portaudio write: %w", err)
		}
	}
	return nil
}

// Flush zero-pads and plays any buffered partial frame.
func (s *PortAudioSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || len(s.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n := copy(s.buf, s.pending)
	for i := n; i < len(s.buf); i++ {
		s.buf[i] = 0
	}
	s.pending = s.pending[:0]
	if err := s.stream.Write(); err != nil {
		return fmt.Errorf("audioio: portaudio write: %w", err)
	}
	return nil
}

// Stop halts playback.
func (s *PortAudioSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	err := s.stream.Stop()
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	s.stream = nil
	return err
}

// Config returns the playback configuration.
func (s *PortAudioSink) Config() Config { return s.cfg }

// Name returns the backend name.
func (s *PortAudioSink) Name() string { return "portaudio" }

// Close stops and releases the sink.
func (s *PortAudioSink) Close() error {
	err := s.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}
