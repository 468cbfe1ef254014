package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewImageSynthesizer_MissingCredential(t *testing.T) {
	t.Parallel()

	_, err := NewImageSynthesizer("", "")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err=%v", err)
	}
}

func TestImageSynthesizer_ReturnsBytes(t *testing.T) {
	t.Parallel()

	var gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotPrompt = r.FormValue("prompt")
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	defer srv.Close()

	s, err := NewImageSynthesizer("secret", srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	img, err := s.Synthesize(context.Background(), "a serene forest at sunrise, 4k")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(img) != "PNGDATA" {
		t.Fatalf("img=%q", img)
	}
	if gotKey != "secret" {
		t.Fatalf("api key header=%q", gotKey)
	}
	if gotPrompt != "a serene forest at sunrise, 4k" {
		t.Fatalf("prompt=%q", gotPrompt)
	}
}

func TestImageSynthesizer_NonOKIsTerminal(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "out of credits", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := NewImageSynthesizer("secret", srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = s.Synthesize(context.Background(), "anything")

	var genErr *ImageGenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err=%v", err)
	}
	if genErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d", genErr.StatusCode)
	}
	if genErr.Body == "" {
		t.Fatal("body is empty")
	}
	if calls != 1 {
		t.Fatalf("calls=%d, image provider must not be retried", calls)
	}
}
