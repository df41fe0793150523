// Package servo converts angular commands into duty-cycle values for a
// PWM servo board. The board itself sits behind the Driver interface;
// this package owns the angle math and the position bookkeeping.
package servo

import (
	"fmt"
)

// Pulse timing for standard hobby servos on a 50Hz PWM frame.
const (
	minPulseMs = 0.5
	maxPulseMs = 2.5
	periodMs   = 20.0
)

// Driver is the actuator board boundary: set one output channel to a
// 16-bit duty value. Duty 0 de-energizes the channel.
type Driver interface {
	SetDuty(channel int, duty uint16) error
}

// Channel describes one servo output. Immutable after configuration.
type Channel struct {
	// ID is the board output index.
	ID int

	// Direction is +1, or -1 for a physically mirrored mounting.
	Direction int

	// Min and Max bound the useful travel in degrees. Callers clamp
	// before commanding; SetAngle does not.
	Min float64
	Max float64
}

// Clamp restricts angle to the channel's configured travel.
func (c Channel) Clamp(angle float64) float64 {
	if angle < c.Min {
		return c.Min
	}
	if angle > c.Max {
		return c.Max
	}
	return angle
}

// Validate checks the channel configuration.
func (c Channel) Validate() error {
	if c.Direction != 1 && c.Direction != -1 {
		return fmt.Errorf("servo: channel %d direction must be +1 or -1, got %d", c.ID, c.Direction)
	}
	if c.Min > c.Max {
		return fmt.Errorf("servo: channel %d min %v exceeds max %v", c.ID, c.Min, c.Max)
	}
	return nil
}

// Controller issues angle commands to a Driver.
type Controller struct {
	driver Driver
}

// NewController creates a controller over the given driver.
func NewController(d Driver) *Controller {
	return &Controller{driver: d}
}

// SetAngle commands a channel to an angle in degrees (0-180 servo frame).
// The channel's direction sign is applied here; range clamping is the
// caller's job.
func (c *Controller) SetAngle(ch Channel, angle float64) error {
	if ch.Direction == -1 {
		angle = 180 - angle
	}

	pulseMs := minPulseMs + (maxPulseMs-minPulseMs)*angle/180.0
	duty := uint16(pulseMs / periodMs * 65535)
	return c.driver.SetDuty(ch.ID, duty)
}

// SetOff de-energizes a channel so the servo relaxes and stops buzzing.
func (c *Controller) SetOff(ch Channel) error {
	return c.driver.SetDuty(ch.ID, 0)
}

// DutyForAngle returns the duty value SetAngle would issue. Exposed for
// calibration tooling.
func DutyForAngle(ch Channel, angle float64) uint16 {
	if ch.Direction == -1 {
		angle = 180 - angle
	}
	pulseMs := minPulseMs + (maxPulseMs-minPulseMs)*angle/180.0
	return uint16(pulseMs / periodMs * 65535)
}
