package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/openai/openai-go"
)

// DefaultSpeechModel is the whisper-class model served by the speech provider.
const DefaultSpeechModel = "whisper-large-v3-turbo"

// transcriptionPrompt steers the model toward a literal transcript instead of
// a cleaned-up paraphrase.
const transcriptionPrompt = "Transcribe the speech as factually as possible."

// audioContainers maps the containers the speech provider accepts to the
// filename extension used for the multipart upload.
var audioContainers = map[string]string{
	"audio/wav":   ".wav",
	"audio/mpeg":  ".mp3",
	"audio/mp4":   ".m4a",
	"audio/x-m4a": ".m4a",
	"audio/ogg":   ".ogg",
}

// SniffAudio detects the container of an audio payload and returns the upload
// filename extension and MIME type. Payloads that are not one of the accepted
// containers fail with ErrUnsupportedAudio before any network call.
func SniffAudio(data []byte) (ext, mime string, err error) {
	mt := mimetype.Detect(data)
	for m, e := range audioContainers {
		if mt.Is(m) {
			return e, mt.String(), nil
		}
	}
	return "", "", fmt.Errorf("%w: detected %s", ErrUnsupportedAudio, mt.String())
}

// Transcriber wraps the speech provider's transcription endpoint.
type Transcriber struct {
	client *openai.Client
	model  string
}

// NewTranscriber returns a Transcriber using the given SDK client and model.
// An empty model falls back to DefaultSpeechModel.
func NewTranscriber(client *openai.Client, model string) *Transcriber {
	if model == "" {
		model = DefaultSpeechModel
	}
	return &Transcriber{client: client, model: model}
}

// Transcribe uploads the audio payload and returns the plain transcript text.
// An empty or whitespace-only transcript is ErrEmptyTranscript; callers must
// treat it as a hard stop for the rest of the pipeline.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	ext, mime, err := SniffAudio(audio)
	if err != nil {
		return "", err
	}

	params := openai.AudioTranscriptionNewParams{
		File:        openai.File(bytes.NewReader(audio), "audio"+ext, mime),
		Model:       openai.AudioModel(t.model),
		Prompt:      openai.String(transcriptionPrompt),
		Temperature: openai.Float(0),
	}
	if language != "" {
		params.Language = openai.String(language)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
