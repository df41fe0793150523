package app

import (
	"context"
	"fmt"

	"github.com/cogbotics/go-animahead/internal/log"
	"github.com/cogbotics/go-animahead/pkg/convo"
	"github.com/cogbotics/go-animahead/pkg/mouth"
)

// Speak synthesizes the text and plays it with the mouth animated in
// the given color. The speaking flag is held for the duration so the
// other loops adjust their behavior.
func (a *App) Speak(ctx context.Context, text string, color mouth.Color) error {
	if text == "" {
		return nil
	}

	a.flags.SetSpeaking(true)
	defer a.flags.SetSpeaking(false)

	mp3, err := a.deps.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		if convo.IsConnectivity(err) {
			a.goOffline(ctx)
			return nil
		}
		return fmt.Errorf("app: synthesize: %w", err)
	}
	a.flags.MarkOnline()

	samples, err := a.deps.Transcode(ctx, mp3, a.cfg.Playback.SampleRate)
	if err != nil {
		return err
	}

	log.Debug("speaking", "text", text, "samples", len(samples))
	return a.viz.Play(ctx, samples, a.cfg.Playback.SampleRate, color, a.deps.Speaker)
}
