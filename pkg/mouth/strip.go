// Package mouth renders speech loudness on an addressable LED strip,
// lighting pixels symmetrically outward from the center like a mouth
// opening.
package mouth

import (
	"fmt"
	"math"
	"sync"
)

// Color is one RGB pixel value.
type Color struct {
	R, G, B uint8
}

// Red is the alert color used for connectivity pulses.
var Red = Color{R: 255}

// PixelWriter pushes a full pixel buffer to the hardware. Index 0 is
// the first pixel on the strip; the slice length is the strip size.
type PixelWriter interface {
	WritePixels(pixels []Color) error
}

// Strip maps a loudness level to lit pixels on a fixed-size strip.
type Strip struct {
	mu     sync.Mutex
	writer PixelWriter
	count  int
	buf    []Color
}

// NewStrip creates a strip of count pixels backed by the given writer.
func NewStrip(writer PixelWriter, count int) (*Strip, error) {
	if count <= 0 || count%2 != 0 {
		return nil, fmt.Errorf("mouth: pixel count must be positive and even, got %d", count)
	}
	return &Strip{writer: writer, count: count, buf: make([]Color, count)}, nil
}

// Count returns the number of pixels on the strip.
func (s *Strip) Count() int { return s.count }

// Show lights round(level*count) pixels in the given color, filling
// outward from the two center pixels. Level is clamped to [0,1].
func (s *Strip) Show(level float64, color Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	level = math.Max(0, math.Min(1, level))
	lit := int(math.Round(level * float64(s.count)))

	for i := range s.buf {
		s.buf[i] = Color{}
	}

	// Pixels light in pairs around the seam between count/2-1 and
	// count/2, so the mouth grows symmetrically.
	left := s.count/2 - 1
	right := s.count / 2
	for i := 0; i < lit; i++ {
		if i%2 == 0 {
			s.buf[right+i/2] = color
		} else {
			s.buf[left-i/2] = color
		}
	}
	return s.writer.WritePixels(s.buf)
}

// Fill lights the whole strip in one color.
func (s *Strip) Fill(color Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buf {
		s.buf[i] = color
	}
	return s.writer.WritePixels(s.buf)
}

// Clear turns every pixel off.
func (s *Strip) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buf {
		s.buf[i] = Color{}
	}
	return s.writer.WritePixels(s.buf)
}
