package motion

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cogbotics/go-animahead/pkg/servo"
)

// Side selects an eyelid for a wink.
type Side int

const (
	// SideRandom lets the choreographer pick an eyelid.
	SideRandom Side = iota
	// SideLeft winks the left eyelid.
	SideLeft
	// SideRight winks the right eyelid.
	SideRight
)

// BlinkConfig holds eyelid choreography timing.
type BlinkConfig struct {
	// StepTime is the sleep per sweep step.
	StepTime time.Duration

	// Hold is how long the lids stay closed mid-blink.
	Hold time.Duration

	// SideDelay staggers the right eyelid behind the left. Converted to
	// a step offset at SideDelay/StepTime.
	SideDelay time.Duration

	// DoublePause separates the two blinks of a double-blink.
	DoublePause time.Duration
}

// DefaultBlinkConfig returns the reference head's blink timing.
func DefaultBlinkConfig() BlinkConfig {
	return BlinkConfig{
		StepTime:    3 * time.Millisecond,
		Hold:        100 * time.Millisecond,
		SideDelay:   30 * time.Millisecond,
		DoublePause: 300 * time.Millisecond,
	}
}

// Choreographer drives parametric open-closed-open eyelid sweeps with a
// timing stagger between the two lids. All motions are no-ops while the
// system is not armed, so the head stays still when "asleep".
type Choreographer struct {
	ctrl  *servo.Controller
	head  servo.Head
	pos   *servo.Positions
	cfg   BlinkConfig
	armed func() bool
	rng   *rand.Rand

	// mu: one eyelid sequence at a time.
	mu sync.Mutex

	lastMu sync.Mutex
	last   time.Time
}

// NewChoreographer creates a blink choreographer. armed gates every
// motion; rng may be nil for a default source.
func NewChoreographer(ctrl *servo.Controller, pos *servo.Positions, head servo.Head, cfg BlinkConfig, armed func() bool, rng *rand.Rand) *Choreographer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if armed == nil {
		armed = func() bool { return true }
	}
	return &Choreographer{ctrl: ctrl, head: head, pos: pos, cfg: cfg, armed: armed, rng: rng}
}

// LastBlink returns when an eyelid sequence last ran.
func (c *Choreographer) LastBlink() time.Time {
	c.lastMu.Lock()
	defer c.lastMu.Unlock()
	return c.last
}

func (c *Choreographer) touch() {
	c.lastMu.Lock()
	c.last = time.Now()
	c.lastMu.Unlock()
}

// sweepProgress returns the per-step progress fraction for an eyelid
// whose sweep is offset steps behind the leading lid, clamped to [0,1].
func sweepProgress(step, offset, span int) float64 {
	if span <= 0 {
		return 1
	}
	corrected := step - offset
	if corrected < 0 {
		corrected = 0
	}
	if corrected > span {
		corrected = span
	}
	return float64(corrected) / float64(span)
}

// Blink performs a full staggered blink on both eyelids with the given
// probability. Periodic callers pass a probability below 1 to request a
// blink that only sometimes executes. No-op when not armed.
func (c *Choreographer) Blink(probability float64) error {
	if !c.armed() {
		return nil
	}
	if probability < 1 && c.rng.Float64() > probability {
		return nil
	}
	return c.blinkOnce()
}

func (c *Choreographer) blinkOnce() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.head
	leftSpan := int(math.Round(h.LidClosed - h.LeftLidOpen))
	rightSpan := int(math.Round(h.LidClosed - h.RightLidOpen))

	total := leftSpan
	if rightSpan > total {
		total = rightSpan
	}
	if total <= 0 {
		return nil
	}

	sideSteps := 0
	if c.cfg.StepTime > 0 {
		sideSteps = int(math.Round(float64(c.cfg.SideDelay) / float64(c.cfg.StepTime)))
	}

	// Closing sweep: the right lid trails by sideSteps but both finish
	// inside the same step window.
	for step := 0; step <= total; step++ {
		if err := c.setLids(step, sideSteps, leftSpan, rightSpan); err != nil {
			return err
		}
		time.Sleep(c.cfg.StepTime)
	}

	time.Sleep(c.cfg.Hold)

	// Opening sweep: same profile, reversed.
	for step := total; step >= 0; step-- {
		if err := c.setLids(step, sideSteps, leftSpan, rightSpan); err != nil {
			return err
		}
		time.Sleep(c.cfg.StepTime)
	}

	c.pos.Set(h.LeftLid.ID, h.LeftLidOpen)
	c.pos.Set(h.RightLid.ID, h.RightLidOpen)
	c.touch()
	return nil
}

func (c *Choreographer) setLids(step, sideSteps, leftSpan, rightSpan int) error {
	h := c.head
	leftAngle := h.LeftLidOpen + sweepProgress(step, 0, leftSpan)*float64(leftSpan)
	rightAngle := h.RightLidOpen + sweepProgress(step, sideSteps, rightSpan)*float64(rightSpan)

	if err := c.ctrl.SetAngle(h.LeftLid, leftAngle); err != nil {
		return err
	}
	return c.ctrl.SetAngle(h.RightLid, rightAngle)
}

// Wink sweeps exactly one eyelid closed and open again while the other
// stays untouched. SideRandom picks one. No-op when not armed.
func (c *Choreographer) Wink(side Side) error {
	if !c.armed() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.head
	ch := h.LeftLid
	open := h.LeftLidOpen
	if side == SideRandom {
		if c.rng.IntN(2) == 1 {
			side = SideRight
		} else {
			side = SideLeft
		}
	}
	if side == SideRight {
		ch = h.RightLid
		open = h.RightLidOpen
	}

	span := int(math.Round(h.LidClosed - open))
	if span <= 0 {
		return nil
	}

	for step := 0; step <= span; step++ {
		angle := open + sweepProgress(step, 0, span)*float64(span)
		if err := c.ctrl.SetAngle(ch, angle); err != nil {
			return err
		}
		time.Sleep(c.cfg.StepTime)
	}

	time.Sleep(c.cfg.Hold)

	for step := span; step >= 0; step-- {
		angle := open + sweepProgress(step, 0, span)*float64(span)
		if err := c.ctrl.SetAngle(ch, angle); err != nil {
			return err
		}
		time.Sleep(c.cfg.StepTime)
	}

	c.pos.Set(ch.ID, open)
	c.touch()
	return nil
}

// DoubleBlink performs two full blinks separated by a fixed pause.
// No-op when not armed.
func (c *Choreographer) DoubleBlink() error {
	if !c.armed() {
		return nil
	}
	for i := 0; i < 2; i++ {
		if err := c.blinkOnce(); err != nil {
			return err
		}
		time.Sleep(c.cfg.DoublePause)
	}
	return nil
}
