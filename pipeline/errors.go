package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTranscript means the speech provider returned no usable text.
	// Downstream stages must never run on an empty transcript.
	ErrEmptyTranscript = errors.New("transcription produced no usable text")

	// ErrInvalidAnalysisResponse means the text provider returned something that
	// is not the JSON object the analysis asked for. Terminal, never retried.
	ErrInvalidAnalysisResponse = errors.New("analysis response is not valid JSON for the requested categories")

	// ErrAllProvidersRateLimited means every fallback model exhausted its retry
	// budget on rate-limit responses.
	ErrAllProvidersRateLimited = errors.New("all models are currently rate limited")

	// ErrMissingCredential is a configuration error reported before any network call.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrUnsupportedAudio means the payload is not a container the speech
	// provider accepts (wav/mp3/m4a/ogg).
	ErrUnsupportedAudio = errors.New("unsupported audio container")
)

// ImageGenerationError is a non-OK response from the image provider.
// It carries the provider's status and body so the caller can report them.
type ImageGenerationError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ImageGenerationError) Error() string {
	return fmt.Sprintf("image provider %s: %s", e.Status, e.Body)
}
