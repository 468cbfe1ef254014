package pipeline

import "testing"

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "g")
	t.Setenv("MISTRAL_API_KEY", "m")
	t.Setenv("CLIPDROP_API_KEY", "c")

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if creds.SpeechAPIKey != "g" || creds.TextAPIKey != "m" || creds.ImageAPIKey != "c" {
		t.Fatalf("creds=%+v", creds)
	}
}

func TestLoadCredentials_MissingKeysAreEmpty(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("MISTRAL_API_KEY", "")
	t.Setenv("CLIPDROP_API_KEY", "")

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Only the image key is checked eagerly, by NewImageSynthesizer.
	if creds.ImageAPIKey != "" {
		t.Fatalf("creds=%+v", creds)
	}
}
