// Package app wires the actuators, audio pipeline, and conversational
// collaborators into the head's main control flow.
package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/audioio"
	"github.com/cogbotics/go-animahead/pkg/behavior"
	"github.com/cogbotics/go-animahead/pkg/convo"
	"github.com/cogbotics/go-animahead/pkg/listen"
	"github.com/cogbotics/go-animahead/pkg/motion"
	"github.com/cogbotics/go-animahead/pkg/mouth"
	"github.com/cogbotics/go-animahead/pkg/servo"
	"github.com/cogbotics/go-animahead/pkg/state"
	"github.com/cogbotics/go-animahead/pkg/web"
)

// Deps are the hardware and network boundaries of the app, injectable
// for simulation and tests.
type Deps struct {
	ServoDriver servo.Driver
	Pixels      mouth.PixelWriter
	Lamp        behavior.StatusLamp

	// ArmSwitch samples the physical arm input.
	ArmSwitch func() bool

	Mic     audioio.Source
	Speaker audioio.Sink

	Transcriber convo.Transcriber
	Responder   convo.Responder
	Synthesizer convo.Synthesizer

	// Transcode converts MP3 speech to PCM16 at the given rate. Nil
	// uses ffmpeg.
	Transcode func(ctx context.Context, mp3 []byte, sampleRate int) ([]int16, error)
}

// App is the assembled head.
type App struct {
	cfg  Config
	deps Deps

	flags    *state.Flags
	head     servo.Head
	ctrl     *servo.Controller
	pos      *servo.Positions
	blinks   *motion.Choreographer
	face     *behavior.Face
	strip    *mouth.Strip
	viz      *mouth.Visualizer
	palette  *mouth.Palette
	recorder *listen.Recorder
	web      *web.Server
	rng      *rand.Rand

	stop context.CancelFunc
}

// New assembles the app from its configuration and boundaries.
func New(cfg Config, deps Deps) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Transcode == nil {
		deps.Transcode = transcodeMP3
	}

	head := servo.DefaultHead()
	if err := head.Validate(); err != nil {
		return nil, err
	}

	flags := state.New()
	ctrl := servo.NewController(deps.ServoDriver)
	pos := servo.NewPositions()
	interp := motion.NewInterpolator(ctrl, pos, cfg.Interpolator)
	blinks := motion.NewChoreographer(ctrl, pos, head, cfg.Blink, flags.Armed, nil)
	face := behavior.NewFace(ctrl, pos, interp, head)

	strip, err := mouth.NewStrip(deps.Pixels, cfg.PixelCount)
	if err != nil {
		return nil, err
	}
	viz, err := mouth.NewVisualizer(strip, cfg.Visualizer)
	if err != nil {
		return nil, err
	}

	palette := mouth.DefaultPalette()
	if cfg.PalettePath != "" {
		palette, err = mouth.LoadPalette(cfg.PalettePath)
		if err != nil {
			return nil, err
		}
	}

	return &App{
		cfg:      cfg,
		deps:     deps,
		flags:    flags,
		head:     head,
		ctrl:     ctrl,
		pos:      pos,
		blinks:   blinks,
		face:     face,
		strip:    strip,
		viz:      viz,
		palette:  palette,
		recorder: listen.NewRecorder(cfg.Listen),
		web:      web.NewServer(cfg.Port, flags, pos),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}, nil
}

// Flags exposes the behavioral state, mainly for tests and tooling.
func (a *App) Flags() *state.Flags { return a.flags }

// Run drives the head until the context is cancelled or an exit phrase
// is heard.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.stop = cancel

	if err := a.face.Reset(); err != nil {
		return err
	}
	if err := a.strip.Clear(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	gaze := behavior.NewGaze(a.face, a.blinks, a.flags.Mode, a.cfg.Gaze, nil)
	indicator := behavior.NewIndicator(a.deps.Lamp, a.flags.Mode, a.flags.Armed, a.cfg.Indicator)
	idleTalk := behavior.NewIdleTalk(a.flags.Mode, a.speakIdlePhrase, a.cfg.IdleTalk)

	g.Go(func() error { return gaze.Run(ctx) })
	g.Go(func() error { return indicator.Run(ctx) })
	g.Go(func() error { return idleTalk.Run(ctx) })
	g.Go(func() error {
		<-ctx.Done()
		return a.web.Shutdown()
	})
	g.Go(a.web.Listen)
	g.Go(func() error { return a.drive(ctx) })

	log.Info("animahead ready")
	if a.cfg.Announcement != "" {
		if err := a.Speak(ctx, a.cfg.Announcement, a.palette.Color("neutral")); err != nil {
			log.Warn("startup announcement failed", "error", err)
		}
	}

	err := g.Wait()

	a.flags.Shutdown()
	if rerr := a.face.Relax(); rerr != nil {
		log.Warn("relax failed", "error", rerr)
	}
	if cerr := a.strip.Clear(); cerr != nil {
		log.Warn("strip clear failed", "error", cerr)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// drive is the conversation loop: poll the arm switch, animate the
// eyelids on transitions, and take one listening turn per pass while
// armed.
func (a *App) drive(ctx context.Context) error {
	armed := a.deps.ArmSwitch()
	a.flags.SetArmed(armed)
	last := armed

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		armed = a.deps.ArmSwitch()
		a.flags.SetArmed(armed)

		if armed != last {
			if armed {
				log.Info("armed, waking up")
				if err := a.face.EyelidsOpen(ctx); err != nil && ctx.Err() == nil {
					log.Warn("eyelid open failed", "error", err)
				}
			} else {
				log.Info("disarmed, going to sleep")
				if err := a.face.EyelidsClosed(ctx); err != nil && ctx.Err() == nil {
					log.Warn("eyelid close failed", "error", err)
				}
			}
			last = armed
		}

		if !armed {
			if err := sleep(ctx, a.cfg.ArmPoll); err != nil {
				return err
			}
			continue
		}

		a.takeTurn(ctx)
	}
}

// takeTurn listens for one utterance and answers it.
func (a *App) takeTurn(ctx context.Context) {
	capture, err := a.recorder.Record(ctx, a.deps.Mic, func() bool {
		return a.deps.ArmSwitch() && ctx.Err() == nil
	})
	switch {
	case errors.Is(err, listen.ErrNoAudio):
		sleep(ctx, a.cfg.ArmPoll)
		return
	case errors.Is(err, audioio.ErrNoDevice):
		log.Error("no microphone available", "error", err)
		sleep(ctx, time.Second)
		return
	case err != nil:
		log.Error("recording failed", "error", err)
		return
	}

	a.web.RecordCapture(capture.ID, capture.Duration(), capture.Status.String())
	if capture.Status == listen.StatusCancelled {
		return
	}

	a.flags.SetThinking(true)
	defer a.flags.SetThinking(false)

	text, err := a.deps.Transcriber.Transcribe(ctx, capture.WAV())
	if err != nil {
		if convo.IsConnectivity(err) {
			a.goOffline(ctx)
		} else {
			log.Error("transcription failed", "error", err)
		}
		return
	}
	a.flags.MarkOnline()

	text = strings.TrimSpace(text)
	if text == "" {
		log.Debug("nothing transcribed, skipping turn")
		a.flags.SetThinking(false)
		sleep(ctx, 500*time.Millisecond)
		return
	}
	log.Info("heard", "text", text)

	norm := strings.ToLower(text)
	norm = strings.Trim(norm, " .,!?")

	if strings.Contains(norm, "wink for me") || strings.HasPrefix(norm, "wink") || strings.Contains(norm, "can you wink") {
		a.flags.SetThinking(false)
		if err := a.blinks.Wink(motion.SideRandom); err != nil {
			log.Warn("wink failed", "error", err)
		}
		return
	}
	if strings.Contains(norm, "blink twice") && strings.Contains(norm, "understand") {
		a.flags.SetThinking(false)
		if err := a.blinks.DoubleBlink(); err != nil {
			log.Warn("double blink failed", "error", err)
		}
		return
	}

	if norm == "quit" || norm == "exit" || norm == "stop" {
		log.Info("exit phrase heard, shutting down")
		a.stop()
		return
	}

	reply, err := a.deps.Responder.Respond(ctx, text)
	if err != nil {
		if convo.IsConnectivity(err) {
			a.goOffline(ctx)
		} else {
			log.Error("chat failed", "error", err)
		}
		return
	}
	a.flags.MarkOnline()

	spoken, emotion := convo.ParseEmotion(reply)
	log.Info("replying", "text", spoken, "emotion", emotion)

	a.flags.SetThinking(false)
	if err := a.Speak(ctx, spoken, a.palette.Color(emotion)); err != nil && ctx.Err() == nil {
		log.Warn("speech failed", "error", err)
	}
}

// goOffline renders the connectivity-failure behavior: offline flags,
// the crossed-eyes pose, and red alert pulses. The head keeps running
// and retries on the next turn.
func (a *App) goOffline(ctx context.Context) {
	log.Warn("collaborator unreachable, going offline")
	a.flags.MarkOffline()
	if err := a.face.OfflineFace(ctx); err != nil && ctx.Err() == nil {
		log.Warn("offline pose failed", "error", err)
	}
	if err := a.viz.AlertPulse(ctx, 3); err != nil && ctx.Err() == nil {
		log.Warn("alert pulse failed", "error", err)
	}
}

func (a *App) speakIdlePhrase(ctx context.Context) error {
	phrase := convo.IdlePhrases[a.rng.IntN(len(convo.IdlePhrases))]
	return a.Speak(ctx, phrase, a.palette.Color("neutral"))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
