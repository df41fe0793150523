package behavior

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cogbotics/go-animahead/pkg/motion"
	"github.com/cogbotics/go-animahead/pkg/servo"
	"github.com/cogbotics/go-animahead/pkg/state"
)

// recordingDriver captures every duty write per channel.
type recordingDriver struct {
	mu     sync.Mutex
	writes map[int][]uint16
}

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{writes: map[int][]uint16{}}
}

func (d *recordingDriver) SetDuty(channel int, duty uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes[channel] = append(d.writes[channel], duty)
	return nil
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

func (d *recordingDriver) total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, w := range d.writes {
		n += len(w)
	}
	return n
}

func testFace() (*Face, *recordingDriver, *servo.Positions) {
	drv := newRecordingDriver()
	ctrl := servo.NewController(drv)
	pos := servo.NewPositions()
	interp := motion.NewInterpolator(ctrl, pos, motion.InterpolatorConfig{StepSize: 5})
	f := NewFace(ctrl, pos, interp, servo.DefaultHead())
	f.SettleTime = 0
	return f, drv, pos
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestFace_FirstMoveFromColdStart(t *testing.T) {
	f, drv, pos := testFace()
	h := f.Head()

	// A brand-new face interpolates from the seeded neutral pose; the
	// table being empty must not make the move a silent no-op.
	if err := f.LookAt(context.Background(), 105, 80); err != nil {
		t.Fatal(err)
	}
	if drv.total() == 0 {
		t.Fatal("first move issued no servo writes")
	}
	if got := pos.GetOr(h.LeftX.ID, -1); got != 105 {
		t.Errorf("left x: got %v, want 105", got)
	}
	if got, _ := drv.last(h.RightY.ID); got != servo.DutyForAngle(h.RightY, 80) {
		t.Errorf("right y final duty: got %d", got)
	}
}

func TestFace_ResetIssuesNeutralPose(t *testing.T) {
	f, drv, pos := testFace()
	h := f.Head()

	if err := f.Reset(); err != nil {
		t.Fatal(err)
	}
	if got, _ := drv.last(h.LeftX.ID); got != servo.DutyForAngle(h.LeftX, h.NeutralX()) {
		t.Errorf("left x duty: got %d", got)
	}
	if got, _ := drv.last(h.LeftLid.ID); got != servo.DutyForAngle(h.LeftLid, h.LeftLidOpen) {
		t.Errorf("left lid duty: got %d", got)
	}
	for _, ch := range h.Channels() {
		if _, ok := pos.Get(ch.ID); !ok {
			t.Errorf("channel %d missing from table after reset", ch.ID)
		}
	}
}

func TestFace_Center(t *testing.T) {
	f, drv, pos := testFace()
	ctx := context.Background()

	if err := f.LookAt(ctx, 75, 105); err != nil {
		t.Fatal(err)
	}
	if err := f.Center(ctx); err != nil {
		t.Fatal(err)
	}

	h := f.Head()
	for _, id := range []int{h.LeftX.ID, h.LeftY.ID, h.RightX.ID, h.RightY.ID} {
		if got := pos.GetOr(id, -1); got != 90 {
			t.Errorf("channel %d: got %v, want 90", id, got)
		}
	}
	if got, _ := drv.last(h.LeftX.ID); got != servo.DutyForAngle(h.LeftX, 90) {
		t.Errorf("left x duty: got %d", got)
	}
}

func TestFace_LookAtClamps(t *testing.T) {
	f, _, pos := testFace()

	if err := f.LookAt(context.Background(), 200, -50); err != nil {
		t.Fatal(err)
	}
	h := f.Head()
	if got := pos.GetOr(h.LeftX.ID, -1); got != h.LeftX.Max {
		t.Errorf("x: got %v, want clamped %v", got, h.LeftX.Max)
	}
	if got := pos.GetOr(h.LeftY.ID, -1); got != h.LeftY.Min {
		t.Errorf("y: got %v, want clamped %v", got, h.LeftY.Min)
	}
}

func TestFace_EyelidsClosedRelaxesServos(t *testing.T) {
	f, drv, pos := testFace()
	ctx := context.Background()

	if err := f.EyelidsOpen(ctx); err != nil {
		t.Fatal(err)
	}
	if err := f.EyelidsClosed(ctx); err != nil {
		t.Fatal(err)
	}

	h := f.Head()
	// The last write per lid cuts power.
	for _, id := range []int{h.LeftLid.ID, h.RightLid.ID} {
		got, ok := drv.last(id)
		if !ok || got != 0 {
			t.Errorf("lid %d: last duty %d, want 0", id, got)
		}
	}
	// The table still remembers the closed pose.
	if got := pos.GetOr(h.LeftLid.ID, -1); got != h.LidClosed {
		t.Errorf("left lid position: got %v, want %v", got, h.LidClosed)
	}
}

func TestFace_OfflineFaceCrossesEyes(t *testing.T) {
	f, _, pos := testFace()

	if err := f.OfflineFace(context.Background()); err != nil {
		t.Fatal(err)
	}
	h := f.Head()
	if got := pos.GetOr(h.LeftX.ID, -1); got != h.LeftX.Max {
		t.Errorf("left x: got %v, want %v", got, h.LeftX.Max)
	}
	if got := pos.GetOr(h.RightX.ID, -1); got != h.RightX.Min {
		t.Errorf("right x: got %v, want %v", got, h.RightX.Min)
	}
	if got := pos.GetOr(h.LeftLid.ID, -1); got != h.LeftLidOpen {
		t.Errorf("left lid: got %v, want open trim %v", got, h.LeftLidOpen)
	}
}

func TestFace_Relax(t *testing.T) {
	f, drv, _ := testFace()

	if err := f.Center(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := f.Relax(); err != nil {
		t.Fatal(err)
	}
	for _, ch := range f.Head().Channels() {
		got, ok := drv.last(ch.ID)
		if !ok || got != 0 {
			t.Errorf("channel %d: last duty %d, want 0", ch.ID, got)
		}
	}
}

func TestFace_RandomGazeTarget(t *testing.T) {
	f, _, _ := testFace()
	h := f.Head()
	rng := testRNG()

	for i := 0; i < 100; i++ {
		x, y := f.RandomGazeTarget(rng, 1)
		if x < h.LeftX.Min || x > h.LeftX.Max || y < h.LeftY.Min || y > h.LeftY.Max {
			t.Fatalf("full-scale target (%v,%v) outside travel", x, y)
		}
	}

	// Scale 0 pins the gaze to center.
	if x, y := f.RandomGazeTarget(rng, 0); x != 90 || y != 90 {
		t.Errorf("zero-scale target: got (%v,%v), want (90,90)", x, y)
	}

	// Half scale stays within half the travel around center.
	for i := 0; i < 100; i++ {
		x, _ := f.RandomGazeTarget(rng, 0.5)
		if x < 80 || x > 100 {
			t.Fatalf("half-scale x %v outside [80,100]", x)
		}
	}
}

func fastGazeConfig() GazeConfig {
	cfg := DefaultGazeConfig()
	cfg.ThinkingPause = time.Millisecond
	cfg.SpeakingPauseMin = time.Millisecond
	cfg.SpeakingPauseMax = 2 * time.Millisecond
	cfg.IdlePauseMin = time.Millisecond
	cfg.IdlePauseMax = 2 * time.Millisecond
	cfg.IdleBlinkMin = time.Hour // keep blinks out of these tests
	cfg.IdleBlinkMax = 2 * time.Hour
	cfg.HoldPoll = time.Millisecond
	return cfg
}

func testChoreographer(f *Face, pos *servo.Positions, armed func() bool) *motion.Choreographer {
	ctrl := servo.NewController(newRecordingDriver())
	return motion.NewChoreographer(ctrl, pos, f.Head(), motion.BlinkConfig{}, armed, testRNG())
}

func TestGaze_HoldsStillWhenUnarmed(t *testing.T) {
	f, drv, pos := testFace()
	blinks := testChoreographer(f, pos, func() bool { return false })
	g := NewGaze(f, blinks, func() state.Mode { return state.ModeUnarmed }, fastGazeConfig(), testRNG())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := g.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run: %v", err)
	}
	if drv.total() != 0 {
		t.Errorf("unarmed gaze issued %d servo writes", drv.total())
	}
}

func TestGaze_MovesWhileIdle(t *testing.T) {
	f, drv, pos := testFace()
	blinks := testChoreographer(f, pos, func() bool { return true })
	g := NewGaze(f, blinks, func() state.Mode { return state.ModeIdle }, fastGazeConfig(), testRNG())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	g.Run(ctx)

	if drv.total() == 0 {
		t.Error("idle gaze issued no servo writes")
	}
	// Only gaze channels move; the eyelids are the choreographer's.
	h := f.Head()
	if _, ok := drv.last(h.LeftLid.ID); ok {
		t.Error("gaze loop touched an eyelid channel")
	}
}

func TestGaze_ThinkingStaysNearCenter(t *testing.T) {
	f, _, pos := testFace()
	blinks := testChoreographer(f, pos, func() bool { return true })
	cfg := fastGazeConfig()
	g := NewGaze(f, blinks, func() state.Mode { return state.ModeThinking }, cfg, testRNG())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	g.Run(ctx)

	// Half-scale targets keep x within [80,100].
	h := f.Head()
	if got := pos.GetOr(h.LeftX.ID, 90); got < 80 || got > 100 {
		t.Errorf("thinking gaze x %v outside reduced range", got)
	}
}

// fakeLamp records the level sequence written to it.
type fakeLamp struct {
	mu     sync.Mutex
	states []bool
}

func (l *fakeLamp) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, on)
	return nil
}

func (l *fakeLamp) history() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]bool, len(l.states))
	copy(out, l.states)
	return out
}

func fastIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{BlinkInterval: 2 * time.Millisecond, Poll: time.Millisecond}
}

func runIndicator(t *testing.T, mode state.Mode, armed bool, d time.Duration) *fakeLamp {
	t.Helper()
	lamp := &fakeLamp{}
	ind := NewIndicator(lamp, func() state.Mode { return mode }, func() bool { return armed }, fastIndicatorConfig())
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	ind.Run(ctx)
	return lamp
}

func TestIndicator_OffWhenUnarmed(t *testing.T) {
	lamp := runIndicator(t, state.ModeUnarmed, false, 20*time.Millisecond)
	for _, on := range lamp.history() {
		if on {
			t.Fatal("lamp lit while unarmed")
		}
	}
}

func TestIndicator_OffWhenOfflineUnarmed(t *testing.T) {
	lamp := runIndicator(t, state.ModeOffline, false, 20*time.Millisecond)
	for _, on := range lamp.history() {
		if on {
			t.Fatal("lamp lit while offline and unarmed")
		}
	}
}

func TestIndicator_SolidWhenOfflineArmed(t *testing.T) {
	lamp := runIndicator(t, state.ModeOffline, true, 20*time.Millisecond)
	h := lamp.history()
	if len(h) == 0 || !h[0] {
		t.Fatal("lamp not turned on while offline and armed")
	}
}

func TestIndicator_SolidWhenIdle(t *testing.T) {
	lamp := runIndicator(t, state.ModeIdle, true, 20*time.Millisecond)
	h := lamp.history()
	if len(h) == 0 || !h[0] {
		t.Fatal("lamp not turned on for idle")
	}
	// One on write, then only the shutdown off.
	for _, on := range h[1 : len(h)-1] {
		if !on {
			t.Error("lamp flickered while idle")
		}
	}
	if h[len(h)-1] {
		t.Error("lamp left on after shutdown")
	}
}

func TestIndicator_BlinksWhenBusy(t *testing.T) {
	lamp := runIndicator(t, state.ModeThinking, true, 30*time.Millisecond)
	h := lamp.history()

	toggles := 0
	for i := 1; i < len(h); i++ {
		if h[i] != h[i-1] {
			toggles++
		}
	}
	if toggles < 4 {
		t.Errorf("lamp toggled %d times in 30ms, want blinking", toggles)
	}
}

func TestIdleTalk_FiresAfterThreshold(t *testing.T) {
	var spoke atomic.Int32
	it := NewIdleTalk(
		func() state.Mode { return state.ModeIdle },
		func(ctx context.Context) error { spoke.Add(1); return nil },
		IdleTalkConfig{Threshold: 20 * time.Millisecond, Poll: 2 * time.Millisecond},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	it.Run(ctx)

	if n := spoke.Load(); n < 2 {
		t.Errorf("spoke %d times in 100ms with a 20ms threshold", n)
	}
}

func TestIdleTalk_ActivityResetsTimer(t *testing.T) {
	var busy atomic.Bool
	busy.Store(true)
	var spoke atomic.Int32

	it := NewIdleTalk(
		func() state.Mode {
			if busy.Load() {
				return state.ModeThinking
			}
			return state.ModeIdle
		},
		func(ctx context.Context) error { spoke.Add(1); return nil },
		IdleTalkConfig{Threshold: 30 * time.Millisecond, Poll: 2 * time.Millisecond},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	// Stay busy for the first 40ms; the timer must restart from the
	// transition, so nothing is spoken before ~70ms.
	go func() {
		time.Sleep(40 * time.Millisecond)
		busy.Store(false)
	}()

	start := time.Now()
	done := make(chan struct{})
	go func() {
		it.Run(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	if n := spoke.Load(); n != 0 {
		t.Errorf("spoke %d times %v after start, before the reset threshold elapsed", n, time.Since(start))
	}
	<-done
	if spoke.Load() == 0 {
		t.Error("never spoke after going idle")
	}
}
