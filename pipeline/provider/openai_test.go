package provider

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/openai/openai-go"
)

func apiError(status int) *openai.Error {
	req, _ := http.NewRequest(http.MethodPost, "https://example.test/v1/chat/completions", nil)
	return &openai.Error{
		StatusCode: status,
		Request:    req,
		Response:   &http.Response{StatusCode: status},
	}
}

func TestIsRateLimit(t *testing.T) {
	t.Parallel()

	if !IsRateLimit(apiError(http.StatusTooManyRequests)) {
		t.Fatal("429 should be a rate limit")
	}
	if IsRateLimit(apiError(http.StatusInternalServerError)) {
		t.Fatal("500 is not a rate limit")
	}
	if IsRateLimit(errors.New("429 somewhere in the message")) {
		t.Fatal("substring matches must not count")
	}
	if IsRateLimit(nil) {
		t.Fatal("nil is not an error")
	}
}

func TestIsRateLimit_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("analyze: %w", apiError(http.StatusTooManyRequests))
	if !IsRateLimit(err) {
		t.Fatal("wrapped 429 should be a rate limit")
	}
}
