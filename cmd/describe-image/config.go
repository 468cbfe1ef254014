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
	ImagePath   string
	Model       string
	TextBaseURL string
}

func (c Config) Validate() error {
	if c.ImagePath == "" {
		return errors.New("missing -image")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Model:       pipeline.DefaultVisionModel,
		TextBaseURL: provider.MistralBaseURL,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.ImagePath, "image", "", "Path to the image to describe")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Vision-capable chat model")
	fs.StringVar(&cfg.TextBaseURL, "text-base-url", cfg.TextBaseURL, "Base URL of the OpenAI-compatible text provider")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.ImagePath != "" {
		cfg.ImagePath = filepath.Clean(cfg.ImagePath)
	}
	return cfg, nil
}
