package convo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cogbotics/go-animahead/internal/log"
)

const (
	chatModel = "gpt-4.1-mini"
	ttsModel  = "gpt-4o-mini-tts"
	ttsVoice  = openai.VoiceEcho
)

// systemPrompt shapes the replies: short, direct, with a trailing
// emotion label the caller parses off.
const systemPrompt = "You are a calm, expressive AI. " +
	"Respond concisely in 1 sentence unless necessary. " +
	"Do NOT start with greetings like 'Hello', 'Hi', or 'How can I help you today?'. " +
	"Just answer the user's request directly. " +
	"Also output emotion as one of: happy, sad, neutral, angry, surprised. " +
	"Format: <text> [emotion: <label>]"

// OpenAI implements Transcriber, Responder and Synthesizer against the
// OpenAI API.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI creates the collaborator set for the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey)}
}

// Transcribe sends WAV bytes to whisper and returns the text.
func (o *OpenAI) Transcribe(ctx context.Context, wav []byte) (string, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "capture.wav",
		Reader:   bytes.NewReader(wav),
	})
	if err != nil {
		return "", fmt.Errorf("convo: transcribe: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	log.Debug("transcription", "text", text)
	return text, nil
}

// Respond asks the chat model for a reply to the user's words.
func (o *OpenAI) Respond(ctx context.Context, userText string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("convo: chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("convo: chat returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Synthesize renders the text as MP3 speech audio.
func (o *OpenAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          ttsModel,
		Voice:          ttsVoice,
		Input:          text,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("convo: synthesize: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("convo: read speech: %w", err)
	}
	return audio, nil
}
