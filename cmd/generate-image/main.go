// Command generate-image runs the audio-to-image pipeline on one audio file:
// transcribe, score emotions and themes, compose an image prompt, render it
// with the image provider, and persist the run in the history database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/theimaginaryfoundation/reverie/history"
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

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "generate-image", ReportTimestamp: true})

	audio, err := os.ReadFile(cfg.AudioPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("read -audio: %w", err).Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	models := cfg.Models()
	textClient := provider.NewClient(creds.TextAPIKey, cfg.TextBaseURL)
	runner := &pipeline.Runner{
		Transcriber: pipeline.NewTranscriber(provider.NewClient(creds.SpeechAPIKey, cfg.SpeechBaseURL), cfg.SpeechModel),
		Emotions:    pipeline.NewContentAnalyzer(textClient, pipeline.EmotionAnalysis, pipeline.DefaultAnalysisPolicy(models)),
		Themes:      pipeline.NewContentAnalyzer(textClient, pipeline.ThemeAnalysis, pipeline.DefaultAnalysisPolicy(models)),
		Composer:    pipeline.NewPromptComposer(textClient, pipeline.DefaultComposerPolicy(models)),
		Language:    cfg.Language,
		Log:         logger,
		OnStage:     reportStage(logger),
	}

	if cfg.AnalyzeOnly {
		res, err := runner.Analyze(ctx, audio)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "transcript: %s\n", res.Transcript)
		printDistribution("emotions", res.Emotions)
		printDistribution("themes", res.Themes)
		return
	}

	// The image credential is checked before any network call is made.
	synth, err := pipeline.NewImageSynthesizer(creds.ImageAPIKey, cfg.ImageEndpoint)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	store, err := history.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	defer store.Close()

	runner.Synthesizer = synth
	runner.Artifacts = pipeline.NewArtifactStore(cfg.OutDir)
	runner.History = store

	res, err := runner.Run(ctx, audio)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	printDistribution("emotions", res.Emotions)
	printDistribution("themes", res.Themes)
	fmt.Fprintf(os.Stdout, "run_id=%s image=%s prompt=%q\n", res.RunID, res.ImagePath, res.Prompt)
}

// reportStage logs each stage transition with the artifacts available so far.
func reportStage(logger *log.Logger) pipeline.StageFunc {
	return func(stage pipeline.Stage, res *pipeline.Result) {
		switch stage {
		case pipeline.StageAnalyzing:
			logger.Info("transcribed", "chars", len(res.Transcript))
		case pipeline.StageComposingPrompt:
			e, _ := pipeline.Dominant(res.Emotions)
			th, _ := pipeline.Dominant(res.Themes)
			logger.Info("analyzed", "dominant_emotion", e, "dominant_theme", th)
		case pipeline.StageSynthesizing:
			logger.Info("prompt ready", "chars", len(res.Prompt))
		default:
			logger.Info(string(stage))
		}
	}
}

func printDistribution(label string, dist map[string]float64) {
	names := make([]string, 0, len(dist))
	for name := range dist {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return dist[names[i]] > dist[names[j]] })
	fmt.Fprintf(os.Stdout, "%s:\n", label)
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "  %-10s %.3f\n", name, dist[name])
	}
}
