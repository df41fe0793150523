// Command animahead runs the animatronic head: eye motion, blinking,
// voice-activated conversation, and the mouth visualizer.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/cogbotics/go-animahead/internal/config"
	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/app"
	"github.com/cogbotics/go-animahead/pkg/audioio"
	"github.com/cogbotics/go-animahead/pkg/convo"
	"github.com/cogbotics/go-animahead/pkg/driver"
)

func main() {
	logLevel := flag.String("log-level", config.Env("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	armed := flag.Bool("armed", true, "start with the arm switch on")
	mock := flag.Bool("mock-audio", false, "run without audio hardware")
	flag.Parse()

	config.LoadDotEnv()
	log.Init(*logLevel)

	cfg := app.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		mic     audioio.Source
		speaker audioio.Sink
		err     error
	)
	if *mock {
		mic = audioio.NewMockSource(cfg.Capture, nil)
		speaker = audioio.NewMockSink(cfg.Playback)
	} else {
		mic, err = audioio.NewPortAudioSource(cfg.Capture)
		if err != nil {
			log.Error("open microphone", "error", err)
			os.Exit(1)
		}
		speaker, err = audioio.NewPortAudioSink(cfg.Playback)
		if err != nil {
			log.Error("open speaker", "error", err)
			os.Exit(1)
		}
	}
	defer mic.Close()
	defer speaker.Close()

	ai := convo.NewOpenAI(cfg.OpenAIKey)
	armSwitch := driver.NewToggleSwitch(*armed)

	a, err := app.New(cfg, app.Deps{
		ServoDriver: driver.NewSimServoDriver(),
		Pixels:      driver.NewSimPixels(),
		Lamp:        driver.NewSimLamp(),
		ArmSwitch:   armSwitch.On,
		Mic:         mic,
		Speaker:     speaker,
		Transcriber: ai,
		Responder:   ai,
		Synthesizer: ai,
	})
	if err != nil {
		log.Error("assemble app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
	log.Info("goodbye")
}
