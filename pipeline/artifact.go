package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ArtifactStore keeps generated images as PNG files in a directory, outside
// the history database. Each artifact belongs to exactly one run.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore returns a store rooted at dir. The directory is created on
// first write.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Save writes image bytes for a run and returns the artifact path. The write
// goes through a same-directory temp file and rename so a crashed run never
// leaves a half-written image behind.
func (s *ArtifactStore) Save(runID string, data []byte) (string, error) {
	name := fmt.Sprintf("generated_image_%s_%s.png", time.Now().Format("20060102_150405"), runID)
	path := filepath.Join(s.dir, name)
	if err := writeFileAtomicSameDir(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	return path, nil
}

// Read returns the artifact bytes at path.
func (s *ArtifactStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes an artifact. A missing file is not an error; the owning run
// may have been persisted on another machine or cleaned up by hand.
func (s *ArtifactStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func writeFileAtomicSameDir(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp_image_*.png")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
