package main

import (
	"flag"
	"testing"
)

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("describe-image", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-image", "photo.jpg",
		"-model", "pixtral-large-latest",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.ImagePath != "photo.jpg" || cfg.Model != "pixtral-large-latest" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigValidate_MissingImage(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing -image")
	}
}
