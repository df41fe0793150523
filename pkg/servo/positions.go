package servo

import "sync"

// Positions tracks the last commanded angle per channel. It must always
// reflect the last issued position so relative interpolations stay
// seamless; nothing resets it implicitly.
//
// Only one loop moves the eyes at a time in practice, but the table is
// still guarded so interleaved moves from two loops cannot corrupt it.
type Positions struct {
	mu     sync.Mutex
	angles map[int]float64
}

// NewPositions creates an empty position table.
func NewPositions() *Positions {
	return &Positions{angles: make(map[int]float64)}
}

// Get returns the last commanded angle for a channel.
// ok is false if the channel has never been commanded.
func (p *Positions) Get(channel int) (angle float64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	angle, ok = p.angles[channel]
	return angle, ok
}

// GetOr returns the last commanded angle, or fallback if unknown.
func (p *Positions) GetOr(channel int, fallback float64) float64 {
	if a, ok := p.Get(channel); ok {
		return a
	}
	return fallback
}

// Set records the last commanded angle for a channel.
func (p *Positions) Set(channel int, angle float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.angles[channel] = angle
}

// Snapshot returns a copy of the whole table.
func (p *Positions) Snapshot() map[int]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[int]float64, len(p.angles))
	for ch, a := range p.angles {
		out[ch] = a
	}
	return out
}
