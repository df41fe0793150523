package audioio

import (
	"context"
	"io"
	"sync"
	"time"
)

// MockSource replays a scripted sequence of chunks, for tests without a
// microphone. Read returns io.EOF once the script is exhausted.
type MockSource struct {
	cfg Config

	mu      sync.Mutex
	chunks  []Chunk
	idx     int
	started bool
	closed  bool

	// ReadDelay simulates device pacing; zero reads return instantly.
	ReadDelay time.Duration

	// FailStart forces Start to return ErrNoDevice, simulating a
	// missing capture device.
	FailStart bool
}

// NewMockSource creates a source that will replay the given chunks.
func NewMockSource(cfg Config, chunks []Chunk) *MockSource {
	return &MockSource{cfg: cfg, chunks: chunks}
}

// Start begins replay.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.FailStart {
		return ErrNoDevice
	}
	m.started = true
	return nil
}

// Read returns the next scripted chunk.
func (m *MockSource) Read(ctx context.Context) (Chunk, error) {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return Chunk{}, ErrNotStarted
	}
	if m.idx >= len(m.chunks) {
		m.mu.Unlock()
		return Chunk{}, io.EOF
	}
	chunk := m.chunks[m.idx]
	m.idx++
	delay := m.ReadDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return Chunk{}, ctx.Err()
		case <-time.After(delay):
		}
	} else if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}
	return chunk, nil
}

// Stop halts replay.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return nil
}

// Config returns the scripted configuration.
func (m *MockSource) Config() Config { return m.cfg }

// Name returns the backend name.
func (m *MockSource) Name() string { return "mock" }

// Close releases the source.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	m.closed = true
	return nil
}

// MockSink records written chunks with their write times, for playback
// pacing assertions.
type MockSink struct {
	cfg Config

	mu      sync.Mutex
	chunks  []Chunk
	times   []time.Time
	started bool
	closed  bool
}

// NewMockSink creates an empty recording sink.
func NewMockSink(cfg Config) *MockSink {
	return &MockSink{cfg: cfg}
}

// Start begins accepting writes.
func (m *MockSink) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.started = true
	return nil
}

// Write records the chunk and its arrival time.
func (m *MockSink) Write(ctx context.Context, chunk Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	m.chunks = append(m.chunks, chunk)
	m.times = append(m.times, time.Now())
	return nil
}

// Flush is a no-op for the mock.
func (m *MockSink) Flush(ctx context.Context) error { return nil }

// Stop halts the sink.
func (m *MockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return nil
}

// Config returns the sink configuration.
func (m *MockSink) Config() Config { return m.cfg }

// Name returns the backend name.
func (m *MockSink) Name() string { return "mock" }

// Close releases the sink.
func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	m.closed = true
	return nil
}

// Written returns copies of the recorded chunks and write times.
func (m *MockSink) Written() ([]Chunk, []time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chunks := make([]Chunk, len(m.chunks))
	copy(chunks, m.chunks)
	times := make([]time.Time, len(m.times))
	copy(times, m.times)
	return chunks, times
}

// SampleCount returns the total samples written.
func (m *MockSink) SampleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.chunks {
		n += len(c.Samples)
	}
	return n
}
