package app

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/cogbotics/go-animahead/pkg/audioio"
)

// transcodeMP3 converts MP3 bytes to mono PCM16 samples at the given
// rate using ffmpeg over pipes, so nothing touches the filesystem.
func transcodeMP3(ctx context.Context, mp3 []byte, sampleRate int) ([]int16, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", "pipe:0",
		"-ac", "1",
		"-ar", fmt.Sprint(sampleRate),
		"-f", "wav",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(mp3)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("app: ffmpeg: %w", err)
	}

	samples, rate, _, err := audioio.DecodeWAV(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("app: decode transcoded audio: %w", err)
	}
	if rate != sampleRate {
		return nil, fmt.Errorf("app: ffmpeg produced %dHz, want %dHz", rate, sampleRate)
	}
	return samples, nil
}
