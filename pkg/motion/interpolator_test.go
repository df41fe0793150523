package motion

import (
	"context"
	"sync"
	"testing"

	"github.com/cogbotics/go-animahead/pkg/servo"
)

// recordingDriver captures duty writes per channel.
type recordingDriver struct {
	mu     sync.Mutex
	writes map[int][]uint16
}

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{writes: make(map[int][]uint16)}
}

func (d *recordingDriver) SetDuty(channel int, duty uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes[channel] = append(d.writes[channel], duty)
	return nil
}

func (d *recordingDriver) count(channel int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.writes[channel])
}

func (d *recordingDriver) total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, w := range d.writes {
		n += len(w)
	}
	return n
}

func (d *recordingDriver) last(channel int) (uint16, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := d.writes[channel]
	if len(w) == 0 {
		return 0, false
	}
	return w[len(w)-1], true
}

func testInterpolator(drv servo.Driver) (*Interpolator, *servo.Positions) {
	pos := servo.NewPositions()
	ctrl := servo.NewController(drv)
	cfg := InterpolatorConfig{StepSize: 1, StepDelay: 0}
	return NewInterpolator(ctrl, pos, cfg), pos
}

func TestMoveTogether_EmptyBatchIsNoOp(t *testing.T) {
	drv := newRecordingDriver()
	in, _ := testInterpolator(drv)

	if err := in.MoveTogether(context.Background(), nil); err != nil {
		t.Fatalf("MoveTogether: %v", err)
	}
	if drv.total() != 0 {
		t.Errorf("empty batch wrote %d duties", drv.total())
	}
}

func TestMoveTogether_AtTargetPerformsZeroWrites(t *testing.T) {
	drv := newRecordingDriver()
	in, pos := testInterpolator(drv)

	chX := servo.Channel{ID: 0, Direction: 1, Min: 70, Max: 110}
	chY := servo.Channel{ID: 1, Direction: 1, Min: 70, Max: 110}
	pos.Set(0, 90)
	pos.Set(1, 85)

	targets := []Target{{chX, 90}, {chY, 85}}
	if err := in.MoveTogether(context.Background(), targets); err != nil {
		t.Fatalf("MoveTogether: %v", err)
	}
	if drv.total() != 0 {
		t.Errorf("at-target batch wrote %d duties", drv.total())
	}
}

func TestMoveTogether_UnknownChannelCountsAsAtTarget(t *testing.T) {
	drv := newRecordingDriver()
	in, _ := testInterpolator(drv)

	ch := servo.Channel{ID: 4, Direction: 1, Min: 70, Max: 110}
	if err := in.MoveTogether(context.Background(), []Target{{ch, 100}}); err != nil {
		t.Fatalf("MoveTogether: %v", err)
	}
	if drv.total() != 0 {
		t.Errorf("never-commanded channel wrote %d duties", drv.total())
	}
}

func TestMoveTogether_TableHoldsExactTargets(t *testing.T) {
	drv := newRecordingDriver()
	in, pos := testInterpolator(drv)

	chX := servo.Channel{ID: 0, Direction: 1, Min: 70, Max: 110}
	chY := servo.Channel{ID: 1, Direction: -1, Min: 70, Max: 110}
	pos.Set(0, 90)
	pos.Set(1, 90)

	targets := []Target{{chX, 103.5}, {chY, 72.25}}
	if err := in.MoveTogether(context.Background(), targets); err != nil {
		t.Fatalf("MoveTogether: %v", err)
	}

	if a, _ := pos.Get(0); a != 103.5 {
		t.Errorf("channel 0: table holds %v, want exactly 103.5", a)
	}
	if a, _ := pos.Get(1); a != 72.25 {
		t.Errorf("channel 1: table holds %v, want exactly 72.25", a)
	}
}

func TestMoveTogether_ChannelsArriveTogether(t *testing.T) {
	drv := newRecordingDriver()
	in, pos := testInterpolator(drv)

	// Deltas 40 and 10: the small delta finishes proportionally early
	// but the final issued angle for both must be the exact target.
	chBig := servo.Channel{ID: 0, Direction: 1, Min: 70, Max: 110}
	chSmall := servo.Channel{ID: 1, Direction: 1, Min: 70, Max: 110}
	pos.Set(0, 70)
	pos.Set(1, 70)

	targets := []Target{{chBig, 110}, {chSmall, 80}}
	if err := in.MoveTogether(context.Background(), targets); err != nil {
		t.Fatalf("MoveTogether: %v", err)
	}

	wantBig := servo.DutyForAngle(chBig, 110)
	wantSmall := servo.DutyForAngle(chSmall, 80)

	if got, ok := drv.last(0); !ok || got != wantBig {
		t.Errorf("big channel final duty: got %d, want %d", got, wantBig)
	}
	if got, ok := drv.last(1); !ok || got != wantSmall {
		t.Errorf("small channel final duty: got %d, want %d", got, wantSmall)
	}

	// The big delta channel is written on every iteration: 41 for a
	// 40-degree move at 1 degree per step.
	if got := drv.count(0); got != 41 {
		t.Errorf("big channel write count: got %d, want 41", got)
	}
	// The small channel is recomputed every iteration too.
	if got := drv.count(1); got != 41 {
		t.Errorf("small channel write count: got %d, want 41", got)
	}
}

func TestMoveTogether_CancelKeepsTableTruthful(t *testing.T) {
	drv := newRecordingDriver()
	in, pos := testInterpolator(drv)

	ch := servo.Channel{ID: 0, Direction: 1, Min: 70, Max: 110}
	pos.Set(0, 70)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := in.MoveTogether(ctx, []Target{{ch, 110}})
	if err == nil {
		t.Fatal("cancelled move returned nil error")
	}
	// Nothing was issued, so the table must still say 70.
	if a, _ := pos.Get(0); a != 70 {
		t.Errorf("table after immediate cancel: got %v, want 70", a)
	}
}
