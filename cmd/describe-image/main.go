// Command describe-image asks a vision model to describe an existing image.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/theimaginaryfoundation/reverie/pipeline"
	"github.com/theimaginaryfoundation/reverie/pipeline/provider"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	_ = godotenv.Load()
	creds, err := pipeline.LoadCredentials()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	image, err := os.ReadFile(cfg.ImagePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read -image: %w", err).Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	describer := pipeline.NewImageDescriber(provider.NewClient(creds.TextAPIKey, cfg.TextBaseURL), cfg.Model)
	description, err := describer.Describe(ctx, image)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stdout, description)
}
