// Package driver provides hardware stand-ins for running the head
// without a servo board, LED strip, or GPIO switch attached.
package driver

import (
	"sync"
	"sync/atomic"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/mouth"
)

// SimServoDriver accepts duty writes and remembers the last value per
// channel.
type SimServoDriver struct {
	mu     sync.Mutex
	duties map[int]uint16
}

// NewSimServoDriver creates an empty simulated board.
func NewSimServoDriver() *SimServoDriver {
	return &SimServoDriver{duties: map[int]uint16{}}
}

// SetDuty records the duty value for a channel.
func (d *SimServoDriver) SetDuty(channel int, duty uint16) error {
	d.mu.Lock()
	d.duties[channel] = duty
	d.mu.Unlock()
	return nil
}

// Duties returns a copy of the last duty written per channel.
func (d *SimServoDriver) Duties() map[int]uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[int]uint16, len(d.duties))
	for k, v := range d.duties {
		out[k] = v
	}
	return out
}

// SimPixels accepts pixel buffers and remembers the last frame.
type SimPixels struct {
	mu   sync.Mutex
	last []mouth.Color
}

// NewSimPixels creates an empty simulated strip.
func NewSimPixels() *SimPixels {
	return &SimPixels{}
}

// WritePixels stores a copy of the frame.
func (p *SimPixels) WritePixels(pixels []mouth.Color) error {
	buf := make([]mouth.Color, len(pixels))
	copy(buf, pixels)
	p.mu.Lock()
	p.last = buf
	p.mu.Unlock()
	return nil
}

// Last returns the most recent frame.
func (p *SimPixels) Last() []mouth.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]mouth.Color, len(p.last))
	copy(out, p.last)
	return out
}

// SimLamp is a status lamp that logs level changes.
type SimLamp struct {
	on atomic.Bool
}

// NewSimLamp creates a lamp that is off.
func NewSimLamp() *SimLamp {
	return &SimLamp{}
}

// Set updates the lamp level.
func (l *SimLamp) Set(on bool) error {
	if l.on.Swap(on) != on {
		log.Debug("status lamp", "on", on)
	}
	return nil
}

// On returns the current level.
func (l *SimLamp) On() bool {
	return l.on.Load()
}

// ToggleSwitch is a software arm switch.
type ToggleSwitch struct {
	on atomic.Bool
}

// NewToggleSwitch creates a switch in the given position.
func NewToggleSwitch(on bool) *ToggleSwitch {
	s := &ToggleSwitch{}
	s.on.Store(on)
	return s
}

// Set flips the switch.
func (s *ToggleSwitch) Set(on bool) {
	s.on.Store(on)
}

// On reads the switch position.
func (s *ToggleSwitch) On() bool {
	return s.on.Load()
}
