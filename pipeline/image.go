package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// DefaultImageEndpoint is the hosted text-to-image endpoint.
const DefaultImageEndpoint = "https://clipdrop-api.co/text-to-image/v1"

// ImageSynthesizer wraps the image provider: one multipart POST per prompt,
// raw PNG bytes back. Non-OK responses are terminal; the provider is never
// retried.
type ImageSynthesizer struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewImageSynthesizer fails fast with ErrMissingCredential when no API key is
// configured, before any network activity. An empty endpoint falls back to
// DefaultImageEndpoint.
func NewImageSynthesizer(apiKey, endpoint string) (*ImageSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: image provider API key", ErrMissingCredential)
	}
	if endpoint == "" {
		endpoint = DefaultImageEndpoint
	}
	return &ImageSynthesizer{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Synthesize posts the prompt as a text/plain form part and returns the raw
// image bytes. A non-OK status yields *ImageGenerationError carrying the
// provider's status and body.
func (s *ImageSynthesizer) Synthesize(ctx context.Context, prompt string) ([]byte, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="prompt"`)
	hdr.Set("Content-Type", "text/plain")
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(prompt)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image provider read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ImageGenerationError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return body, nil
}
