// Package history persists completed pipeline runs in a single SQLite table.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one completed pipeline execution. Records are append-only: once
// persisted the only later mutation is deletion.
type Run struct {
	ID         string
	Timestamp  time.Time
	Transcript string
	Emotions   map[string]float64
	Themes     map[string]float64
	Prompt     string
	ImagePath  string
}

// contentAnalysis is the combined JSON shape stored in the content_analysis
// column. It must round-trip exactly through encode/decode.
type contentAnalysis struct {
	Emotions map[string]float64 `json:"emotions"`
	Themes   map[string]float64 `json:"themes"`
}

// Store provides SQLite-backed persistence for run history. It is the single
// writer of run records; callers only append, list, and delete.
type Store struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS generations (
	id TEXT PRIMARY KEY,
	timestamp TEXT,
	transcribed_text TEXT,
	emotion_analysis TEXT,
	generated_prompt TEXT,
	image_path TEXT,
	content_analysis TEXT
)`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append persists one run record and returns its identifier. A zero ID or
// timestamp is assigned here; each run gets its own generated identifier and
// independent insert, so concurrent appends from independent runs are safe.
func (s *Store) Append(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	emotions, err := json.Marshal(run.Emotions)
	if err != nil {
		return "", fmt.Errorf("append run: marshal emotions: %w", err)
	}
	combined, err := json.Marshal(contentAnalysis{Emotions: run.Emotions, Themes: run.Themes})
	if err != nil {
		return "", fmt.Errorf("append run: marshal content analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO generations
		(id, timestamp, transcribed_text, emotion_analysis, generated_prompt, image_path, content_analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Timestamp.Format(time.RFC3339Nano),
		run.Transcript,
		string(emotions),
		run.Prompt,
		run.ImagePath,
		string(combined),
	)
	if err != nil {
		return "", fmt.Errorf("append run: insert: %w", err)
	}
	return run.ID, nil
}

// List returns at most limit runs, most recent first. Fewer than limit
// records is not an error; an empty store yields an empty slice.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp, transcribed_text, emotion_analysis, generated_prompt, image_path, content_analysis
		FROM generations ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: query: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, max(limit, 0))
	for rows.Next() {
		var run Run
		var ts, emotionJSON, contentJSON string
		if err := rows.Scan(&run.ID, &ts, &run.Transcript, &emotionJSON, &run.Prompt, &run.ImagePath, &contentJSON); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		run.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("list runs: parse timestamp: %w", err)
		}
		if emotionJSON != "" {
			if err := json.Unmarshal([]byte(emotionJSON), &run.Emotions); err != nil {
				return nil, fmt.Errorf("list runs: unmarshal emotions: %w", err)
			}
		}
		if contentJSON != "" {
			var combined contentAnalysis
			if err := json.Unmarshal([]byte(contentJSON), &combined); err != nil {
				return nil, fmt.Errorf("list runs: unmarshal content analysis: %w", err)
			}
			run.Themes = combined.Themes
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given identifier, with found=false for an
// unknown id.
func (s *Store) Get(ctx context.Context, id string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, timestamp, transcribed_text, emotion_analysis, generated_prompt, image_path, content_analysis
		FROM generations WHERE id = ?`, id)

	var run Run
	var ts, emotionJSON, contentJSON string
	err := row.Scan(&run.ID, &ts, &run.Transcript, &emotionJSON, &run.Prompt, &run.ImagePath, &contentJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("get run: scan: %w", err)
	}
	run.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Run{}, false, fmt.Errorf("get run: parse timestamp: %w", err)
	}
	if emotionJSON != "" {
		if err := json.Unmarshal([]byte(emotionJSON), &run.Emotions); err != nil {
			return Run{}, false, fmt.Errorf("get run: unmarshal emotions: %w", err)
		}
	}
	if contentJSON != "" {
		var combined contentAnalysis
		if err := json.Unmarshal([]byte(contentJSON), &combined); err != nil {
			return Run{}, false, fmt.Errorf("get run: unmarshal content analysis: %w", err)
		}
		run.Themes = combined.Themes
	}
	return run, true, nil
}

// Delete removes the record with the given identifier. Deleting an unknown
// identifier is a no-op. The associated artifact is the caller's to remove.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM generations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

// Count returns the number of persisted runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}
