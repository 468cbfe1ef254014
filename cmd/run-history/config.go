package main

import (
	"errors"
	"flag"
	"os"
)

type Config struct {
	DBPath   string
	Limit    int
	DeleteID string
	// KeepArtifact leaves the image file in place when deleting a run.
	KeepArtifact bool
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("missing -db")
	}
	if c.Limit < 1 {
		return errors.New("-limit must be >= 1")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		DBPath: "audio_to_image_history.db",
		Limit:  10,
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the run-history SQLite database")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "Max runs to list, most recent first")
	fs.StringVar(&cfg.DeleteID, "delete", "", "Delete the run with this ID instead of listing")
	fs.BoolVar(&cfg.KeepArtifact, "keep-artifact", false, "Keep the generated image file when deleting a run")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
