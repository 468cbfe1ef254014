package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/theimaginaryfoundation/reverie/pipeline"
	"github.com/theimaginaryfoundation/reverie/pipeline/provider"
)

type Config struct {
	AudioPath     string
	DBPath        string
	OutDir        string
	Language      string
	SpeechModel   string
	TextModel     string
	FallbackModel string
	SpeechBaseURL string
	TextBaseURL   string
	ImageEndpoint string
	AnalyzeOnly   bool
}

func (c Config) Validate() error {
	if c.AudioPath == "" {
		return errors.New("missing -audio")
	}
	if c.TextModel == "" {
		return errors.New("missing -model")
	}
	if !c.AnalyzeOnly {
		if c.DBPath == "" {
			return errors.New("missing -db")
		}
		if c.OutDir == "" {
			return errors.New("missing -out")
		}
	}
	return nil
}

// Models returns the fallback chain: primary first, then the fallback model
// when one is configured.
func (c Config) Models() []string {
	models := []string{c.TextModel}
	if c.FallbackModel != "" {
		models = append(models, c.FallbackModel)
	}
	return models
}

func defaultConfig() Config {
	return Config{
		DBPath:        "audio_to_image_history.db",
		OutDir:        filepath.FromSlash("generated_images"),
		Language:      "fr",
		SpeechModel:   pipeline.DefaultSpeechModel,
		TextModel:     "mistral-large-latest",
		FallbackModel: "mistral-small-latest",
		SpeechBaseURL: provider.GroqBaseURL,
		TextBaseURL:   provider.MistralBaseURL,
		ImageEndpoint: pipeline.DefaultImageEndpoint,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.AudioPath, "audio", "", "Path to the audio file to process (wav/mp3/m4a/ogg)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the run-history SQLite database")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Directory for generated image files")
	fs.StringVar(&cfg.Language, "language", cfg.Language, "Language hint for transcription (empty autodetects)")
	fs.StringVar(&cfg.SpeechModel, "speech-model", cfg.SpeechModel, "Speech-to-text model")
	fs.StringVar(&cfg.TextModel, "model", cfg.TextModel, "Primary text model for analysis and prompt composition")
	fs.StringVar(&cfg.FallbackModel, "fallback-model", cfg.FallbackModel, "Fallback text model tried when the primary is rate limited (empty disables)")
	fs.StringVar(&cfg.SpeechBaseURL, "speech-base-url", cfg.SpeechBaseURL, "Base URL of the OpenAI-compatible speech provider")
	fs.StringVar(&cfg.TextBaseURL, "text-base-url", cfg.TextBaseURL, "Base URL of the OpenAI-compatible text provider")
	fs.StringVar(&cfg.ImageEndpoint, "image-endpoint", cfg.ImageEndpoint, "Text-to-image endpoint URL")
	fs.BoolVar(&cfg.AnalyzeOnly, "analyze-only", false, "Transcribe and analyze only; do not generate or persist an image")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.AudioPath != "" {
		cfg.AudioPath = filepath.Clean(cfg.AudioPath)
	}
	if cfg.OutDir != "" {
		cfg.OutDir = filepath.Clean(cfg.OutDir)
	}
	return cfg, nil
}
