// Package provider builds OpenAI-compatible SDK clients for the hosted speech
// and text endpoints and classifies their transport errors.
package provider

import (
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Endpoints for the OpenAI-compatible hosted providers used by default.
const (
	GroqBaseURL    = "https://api.groq.com/openai/v1"
	MistralBaseURL = "https://api.mistral.ai/v1"
)

// NewClient returns an SDK client bound to an OpenAI-compatible base URL.
func NewClient(apiKey, baseURL string) *openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &client
}

// IsRateLimit reports whether err is a rate-limit response from the provider.
// Detection keys off the HTTP status carried by the SDK error rather than
// matching "429" in the message text, which also fires on e.g. token counts.
func IsRateLimit(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
