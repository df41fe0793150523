// Package behavior runs the head's autonomous loops: ambient gaze
// motion, the status indicator, and idle announcements, plus the canned
// poses they are built from.
package behavior

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cogbotics/go-animahead/pkg/motion"
	"github.com/cogbotics/go-animahead/pkg/servo"
)

// Face bundles the actuators into named poses and gaze moves.
type Face struct {
	ctrl   *servo.Controller
	pos    *servo.Positions
	interp *motion.Interpolator
	head   servo.Head

	// SettleTime is how long to hold the eyelids closed before cutting
	// servo power in EyelidsClosed.
	SettleTime time.Duration
}

// NewFace creates a face over the given actuator stack. Channels the
// table has never seen are seeded with the neutral pose, so the first
// interpolated move has real start angles instead of treating every
// channel as already at target.
func NewFace(ctrl *servo.Controller, pos *servo.Positions, interp *motion.Interpolator, head servo.Head) *Face {
	f := &Face{ctrl: ctrl, pos: pos, interp: interp, head: head, SettleTime: 300 * time.Millisecond}
	for _, p := range f.neutralPose() {
		if _, ok := pos.Get(p.ch.ID); !ok {
			pos.Set(p.ch.ID, p.angle)
		}
	}
	return f
}

type poseEntry struct {
	ch    servo.Channel
	angle float64
}

// neutralPose is the startup expression: eyes centered, eyelids at
// their open trims.
func (f *Face) neutralPose() []poseEntry {
	h := f.head
	return []poseEntry{
		{h.LeftX, h.NeutralX()},
		{h.LeftY, h.NeutralY()},
		{h.RightX, h.NeutralX()},
		{h.RightY, h.NeutralY()},
		{h.LeftLid, h.LeftLidOpen},
		{h.RightLid, h.RightLidOpen},
	}
}

// Reset commands the neutral pose directly, without interpolation, and
// records it in the position table. Run once at startup so the
// hardware and the table agree before the first interpolated move.
func (f *Face) Reset() error {
	for _, p := range f.neutralPose() {
		if err := f.ctrl.SetAngle(p.ch, p.angle); err != nil {
			return err
		}
		f.pos.Set(p.ch.ID, p.angle)
	}
	return nil
}

// Head returns the calibration in use.
func (f *Face) Head() servo.Head { return f.head }

// LookAt moves both eyes to the given gaze angles. The right eye's
// channel directions mirror the motion mechanically.
func (f *Face) LookAt(ctx context.Context, x, y float64) error {
	x = f.head.LeftX.Clamp(x)
	y = f.head.LeftY.Clamp(y)
	return f.interp.MoveTogether(ctx, []motion.Target{
		{Channel: f.head.LeftX, Angle: x},
		{Channel: f.head.LeftY, Angle: y},
		{Channel: f.head.RightX, Angle: x},
		{Channel: f.head.RightY, Angle: y},
	})
}

// Center points both eyes straight ahead.
func (f *Face) Center(ctx context.Context) error {
	return f.LookAt(ctx, f.head.NeutralX(), f.head.NeutralY())
}

// RandomGazeTarget picks a gaze point uniformly inside the travel
// limits, scaled toward center. Scale 1 uses the full range; smaller
// scales keep the eyes nearer to straight ahead.
func (f *Face) RandomGazeTarget(rng *rand.Rand, scale float64) (x, y float64) {
	h := f.head
	cx, cy := h.NeutralX(), h.NeutralY()
	x = cx + (h.LeftX.Min+rng.Float64()*(h.LeftX.Max-h.LeftX.Min)-cx)*scale
	y = cy + (h.LeftY.Min+rng.Float64()*(h.LeftY.Max-h.LeftY.Min)-cy)*scale
	return x, y
}

// EyelidsOpen sweeps both eyelids to their open trims.
func (f *Face) EyelidsOpen(ctx context.Context) error {
	return f.interp.MoveTogether(ctx, []motion.Target{
		{Channel: f.head.LeftLid, Angle: f.head.LeftLidOpen},
		{Channel: f.head.RightLid, Angle: f.head.RightLidOpen},
	})
}

// EyelidsClosed sweeps both eyelids closed, lets them settle, then cuts
// power so the servos do not buzz against the closed stop.
func (f *Face) EyelidsClosed(ctx context.Context) error {
	err := f.interp.MoveTogether(ctx, []motion.Target{
		{Channel: f.head.LeftLid, Angle: f.head.LidClosed},
		{Channel: f.head.RightLid, Angle: f.head.LidClosed},
	})
	if err != nil {
		return err
	}

	timer := time.NewTimer(f.SettleTime)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	if err := f.ctrl.SetOff(f.head.LeftLid); err != nil {
		return err
	}
	return f.ctrl.SetOff(f.head.RightLid)
}

// OfflineFace crosses the eyes inward with the eyelids open, the "I
// cannot reach the network" expression.
func (f *Face) OfflineFace(ctx context.Context) error {
	h := f.head
	if err := f.interp.MoveTogether(ctx, []motion.Target{
		{Channel: h.LeftX, Angle: h.LeftX.Max},
		{Channel: h.LeftY, Angle: h.NeutralY()},
		{Channel: h.RightX, Angle: h.RightX.Min},
		{Channel: h.RightY, Angle: h.NeutralY()},
	}); err != nil {
		return err
	}
	return f.EyelidsOpen(ctx)
}

// Relax cuts power to every channel for shutdown.
func (f *Face) Relax() error {
	for _, ch := range f.head.Channels() {
		if err := f.ctrl.SetOff(ch); err != nil {
			return err
		}
	}
	return nil
}
