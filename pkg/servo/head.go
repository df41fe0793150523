package servo

// Board output indices for the head wiring harness.
const (
	ChanLeftX = iota
	ChanLeftY
	ChanLeftLid
	ChanRightX
	ChanRightY
	ChanRightLid
)

// Head describes the six-servo eye mechanism: two gimbaled eyes plus an
// eyelid each. Trims and directions correct for the mirrored right-side
// mounting.
type Head struct {
	LeftX    Channel
	LeftY    Channel
	LeftLid  Channel
	RightX   Channel
	RightY   Channel
	RightLid Channel

	// LidClosed is the shared eyelid angle for fully closed.
	LidClosed float64

	// LeftLidOpen and RightLidOpen are the per-side open trim angles.
	// They may sit outside the lid travel limits; they are mechanical
	// trims, not gaze targets.
	LeftLidOpen  float64
	RightLidOpen float64
}

// DefaultHead returns the calibration for the reference head build.
func DefaultHead() Head {
	return Head{
		LeftX:    Channel{ID: ChanLeftX, Direction: 1, Min: 70, Max: 110},
		LeftY:    Channel{ID: ChanLeftY, Direction: 1, Min: 70, Max: 110},
		LeftLid:  Channel{ID: ChanLeftLid, Direction: 1, Min: 0, Max: 40},
		RightX:   Channel{ID: ChanRightX, Direction: 1, Min: 70, Max: 110},
		RightY:   Channel{ID: ChanRightY, Direction: -1, Min: 70, Max: 110},
		RightLid: Channel{ID: ChanRightLid, Direction: -1, Min: 0, Max: 40},

		LidClosed:    40,
		LeftLidOpen:  -12,
		RightLidOpen: 0,
	}
}

// NeutralX returns the centered horizontal gaze angle.
func (h Head) NeutralX() float64 {
	return (h.LeftX.Min + h.LeftX.Max) / 2
}

// NeutralY returns the centered vertical gaze angle.
func (h Head) NeutralY() float64 {
	return (h.LeftY.Min + h.LeftY.Max) / 2
}

// Channels returns every head channel.
func (h Head) Channels() []Channel {
	return []Channel{h.LeftX, h.LeftY, h.LeftLid, h.RightX, h.RightY, h.RightLid}
}

// Validate checks all channel configurations.
func (h Head) Validate() error {
	for _, ch := range h.Channels() {
		if err := ch.Validate(); err != nil {
			return err
		}
	}
	return nil
}
