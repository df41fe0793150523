package audioio

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
)

func TestChunk_BytesRoundTrip(t *testing.T) {
	c := Chunk{Samples: []int16{0, 1, -1, 32767, -32768}, SampleRate: 44100, Channels: 1}

	var back Chunk
	back.FromBytes(c.Bytes(), 44100, 1)

	if len(back.Samples) != len(c.Samples) {
		t.Fatalf("length: got %d, want %d", len(back.Samples), len(c.Samples))
	}
	for i := range c.Samples {
		if back.Samples[i] != c.Samples[i] {
			t.Errorf("sample %d: got %d, want %d", i, back.Samples[i], c.Samples[i])
		}
	}
}

func TestChunk_Duration(t *testing.T) {
	c := Chunk{Samples: make([]int16, 1024), SampleRate: 44100, Channels: 1}
	want := 1024.0 / 44100.0
	if math.Abs(c.Duration()-want) > 1e-12 {
		t.Errorf("Duration: got %v, want %v", c.Duration(), want)
	}

	empty := Chunk{}
	if empty.Duration() != 0 {
		t.Errorf("empty chunk duration: got %v", empty.Duration())
	}
}

func TestChunk_RMS(t *testing.T) {
	silent := Chunk{Samples: make([]int16, 256)}
	if silent.RMS() != 0 {
		t.Errorf("silent RMS: got %v", silent.RMS())
	}

	// A constant-amplitude signal has RMS equal to that amplitude.
	loud := Chunk{Samples: make([]int16, 256)}
	for i := range loud.Samples {
		if i%2 == 0 {
			loud.Samples[i] = 8000
		} else {
			loud.Samples[i] = -8000
		}
	}
	if math.Abs(loud.RMS()-8000) > 1e-9 {
		t.Errorf("square-wave RMS: got %v, want 8000", loud.RMS())
	}
	if math.Abs(loud.NormRMS()-8000.0/32768.0) > 1e-12 {
		t.Errorf("NormRMS: got %v", loud.NormRMS())
	}
}

func TestMockSource_ReplaysThenEOF(t *testing.T) {
	cfg := DefaultCaptureConfig()
	chunks := []Chunk{
		{Samples: []int16{1, 2}, SampleRate: cfg.SampleRate, Channels: 1},
		{Samples: []int16{3, 4}, SampleRate: cfg.SampleRate, Channels: 1},
	}
	src := NewMockSource(cfg, chunks)

	ctx := context.Background()
	if _, err := src.Read(ctx); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("read before start: got %v, want ErrNotStarted", err)
	}

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 2; i++ {
		c, err := src.Read(ctx)
		if err != nil {
			t.Fatalf("Read %d: %v", i, err)
		}
		if c.Samples[0] != chunks[i].Samples[0] {
			t.Errorf("chunk %d: got %v", i, c.Samples)
		}
	}
	if _, err := src.Read(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("exhausted read: got %v, want io.EOF", err)
	}
}

func TestMockSource_FailStart(t *testing.T) {
	src := NewMockSource(DefaultCaptureConfig(), nil)
	src.FailStart = true
	if err := src.Start(context.Background()); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Start: got %v, want ErrNoDevice", err)
	}
}

func TestMockSink_Records(t *testing.T) {
	sink := NewMockSink(DefaultPlaybackConfig())
	ctx := context.Background()

	if err := sink.Write(ctx, Chunk{Samples: []int16{1}}); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("write before start: got %v", err)
	}

	if err := sink.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sink.Write(ctx, Chunk{Samples: []int16{1, 2, 3}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Write(ctx, Chunk{Samples: []int16{4}}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if sink.SampleCount() != 4 {
		t.Errorf("SampleCount: got %d, want 4", sink.SampleCount())
	}
	chunks, times := sink.Written()
	if len(chunks) != 2 || len(times) != 2 {
		t.Errorf("Written: got %d chunks, %d times", len(chunks), len(times))
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultCaptureConfig().Validate(); err != nil {
		t.Errorf("default capture config invalid: %v", err)
	}
	if err := DefaultPlaybackConfig().Validate(); err != nil {
		t.Errorf("default playback config invalid: %v", err)
	}
	bad := Config{SampleRate: 0, Channels: 1, FrameSize: 512}
	if err := bad.Validate(); err == nil {
		t.Error("zero sample rate accepted")
	}
}
