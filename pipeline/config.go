package pipeline

import (
	"fmt"

	env "github.com/Netflix/go-env"
)

// Credentials are the three provider API keys, read from the process
// environment. The image key is checked at synthesizer construction; the
// speech and text keys fail at first use upstream.
type Credentials struct {
	SpeechAPIKey string `env:"GROQ_API_KEY"`
	TextAPIKey   string `env:"MISTRAL_API_KEY"`
	ImageAPIKey  string `env:"CLIPDROP_API_KEY"`
}

// LoadCredentials reads the provider keys from the environment.
func LoadCredentials() (Credentials, error) {
	var c Credentials
	if _, err := env.UnmarshalFromEnviron(&c); err != nil {
		return Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	return c, nil
}
