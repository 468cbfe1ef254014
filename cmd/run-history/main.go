// Command run-history lists persisted pipeline runs and deletes them by ID,
// removing the generated image file best-effort.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/theimaginaryfoundation/reverie/history"
	"github.com/theimaginaryfoundation/reverie/pipeline"
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

	store, err := history.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	defer store.Close()

	ctx := context.Background()
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "run-history"})

	if cfg.DeleteID != "" {
		if err := deleteRun(ctx, store, cfg, logger); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return
	}

	runs, err := store.List(ctx, cfg.Limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "no runs recorded")
		return
	}
	for _, run := range runs {
		emotion, _ := pipeline.Dominant(run.Emotions)
		theme, _ := pipeline.Dominant(run.Themes)
		fmt.Fprintf(os.Stdout, "%s  %s  emotion=%s theme=%s\n", run.ID, run.Timestamp.Format(time.RFC3339), emotion, theme)
		fmt.Fprintf(os.Stdout, "  transcript: %s\n", excerpt(run.Transcript, 120))
		fmt.Fprintf(os.Stdout, "  prompt:     %s\n", excerpt(run.Prompt, 120))
		fmt.Fprintf(os.Stdout, "  image:      %s\n", run.ImagePath)
	}
}

// deleteRun removes the record; the image file is removed best-effort. An
// unknown ID and a missing file both finish cleanly.
func deleteRun(ctx context.Context, store *history.Store, cfg Config, logger *log.Logger) error {
	run, found, err := store.Get(ctx, cfg.DeleteID)
	if err != nil {
		return err
	}
	if !found {
		logger.Warn("run not found, nothing to delete", "run_id", cfg.DeleteID)
		return nil
	}
	if err := store.Delete(ctx, run.ID); err != nil {
		return err
	}
	if !cfg.KeepArtifact && run.ImagePath != "" {
		if err := pipeline.NewArtifactStore("").Remove(run.ImagePath); err != nil {
			logger.Warn("could not remove image file", "path", run.ImagePath, "err", err)
		}
	}
	fmt.Fprintf(os.Stdout, "deleted %s\n", run.ID)
	return nil
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
