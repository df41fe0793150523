// Package state holds the process-wide behavioral flags every control
// loop reads. Each flag is a single independently meaningful boolean, so
// they are plain atomics rather than a lock: readers tolerate observing
// a flag mid-transition and no invariant spans two flags.
package state

import "sync/atomic"

// Mode is the gaze behavior selected from the flags, in priority order.
type Mode int

const (
	// ModeOffline suppresses all movement; the offline pose holds.
	ModeOffline Mode = iota
	// ModeUnarmed holds the last pose while the arm switch is off.
	ModeUnarmed
	// ModeThinking uses reduced-scale movement with frequent blinks.
	ModeThinking
	// ModeSpeaking uses minimal movement with occasional blinks.
	ModeSpeaking
	// ModeIdle uses full-scale movement with a randomized blink timer.
	ModeIdle
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeOffline:
		return "offline"
	case ModeUnarmed:
		return "unarmed"
	case ModeThinking:
		return "thinking"
	case ModeSpeaking:
		return "speaking"
	case ModeIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Flags is the behavioral state coordinator. The conversation driver and
// failure handlers write; the idle/status loops only read.
type Flags struct {
	armed    atomic.Bool
	thinking atomic.Bool
	speaking atomic.Bool
	offline  atomic.Bool
	shutdown atomic.Bool
}

// New returns flags in the startup state: everything false.
func New() *Flags {
	return &Flags{}
}

// Armed reports whether the arm switch is on.
func (f *Flags) Armed() bool { return f.armed.Load() }

// SetArmed records the arm switch level.
func (f *Flags) SetArmed(v bool) { f.armed.Store(v) }

// Thinking reports whether a response is being computed.
func (f *Flags) Thinking() bool { return f.thinking.Load() }

// SetThinking records the thinking state.
func (f *Flags) SetThinking(v bool) { f.thinking.Store(v) }

// Speaking reports whether audio playback is in progress.
func (f *Flags) Speaking() bool { return f.speaking.Load() }

// SetSpeaking records the speaking state.
func (f *Flags) SetSpeaking(v bool) { f.speaking.Store(v) }

// Offline reports whether a networked collaborator is unreachable.
func (f *Flags) Offline() bool { return f.offline.Load() }

// MarkOffline enters the offline state. Thinking and speaking are
// cleared so the loops fall straight through to the offline pose.
func (f *Flags) MarkOffline() {
	f.offline.Store(true)
	f.thinking.Store(false)
	f.speaking.Store(false)
}

// MarkOnline clears the offline state after a successful network call.
func (f *Flags) MarkOnline() { f.offline.Store(false) }

// Running reports whether the process-wide shutdown flag is unset.
func (f *Flags) Running() bool { return !f.shutdown.Load() }

// Shutdown sets the process-wide shutdown flag. Loops exit on their
// next poll; nothing clears it.
func (f *Flags) Shutdown() { f.shutdown.Store(true) }

// Mode computes the gaze mode once from the current flags, in priority
// order offline > unarmed > thinking > speaking > idle.
func (f *Flags) Mode() Mode {
	switch {
	case f.offline.Load():
		return ModeOffline
	case !f.armed.Load():
		return ModeUnarmed
	case f.thinking.Load():
		return ModeThinking
	case f.speaking.Load():
		return ModeSpeaking
	default:
		return ModeIdle
	}
}
