// Package convo holds the conversational collaborators: speech-to-text,
// chat, and speech synthesis, plus the emotion labels woven through the
// replies.
package convo

import (
	"context"
)

// Transcriber turns recorded speech into text.
type Transcriber interface {
	// Transcribe converts WAV audio bytes to text.
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// Responder produces a conversational reply to user text.
type Responder interface {
	// Respond returns the reply, which may carry a trailing emotion
	// label for ParseEmotion.
	Respond(ctx context.Context, userText string) (string, error)
}

// Synthesizer turns reply text into speech audio.
type Synthesizer interface {
	// Synthesize returns encoded audio (MP3) for the given text.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// IdlePhrases are spoken unprompted after a long quiet stretch.
var IdlePhrases = []string{
	"Ready when you are.",
	"Anything I can help with?",
	"I'm here whenever you need me.",
	"Just say the word.",
	"How can I help?",
}
