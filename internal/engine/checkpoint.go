package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const checkpointFile = "checkpoint.json"

// Checkpoint records run progress so an interrupted scrape can resume
// without re-walking finished categories.
type Checkpoint struct {
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	DoneCategories []string  `json:"done_categories"`
	Products       int       `json:"products"`

	done map[string]bool
}

// NewCheckpoint creates an empty checkpoint for a fresh run.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		StartedAt: time.Now().UTC(),
		done:      make(map[string]bool),
	}
}

// LoadCheckpoint reads a checkpoint from the output directory. A
// missing file yields a fresh checkpoint, not an error.
func LoadCheckpoint(outputDir string) (*Checkpoint, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, checkpointFile))
	if errors.Is(err, os.ErrNotExist) {
		return NewCheckpoint(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("parse checkpoint: %w", err)
	}
	cp.done = make(map[string]bool, len(cp.DoneCategories))
	for _, u := range cp.DoneCategories {
		cp.done[u] = true
	}
	return &cp, nil
}

// Done reports whether a category URL was finished in a prior run.
func (cp *Checkpoint) Done(url string) bool { return cp.done[url] }

// MarkDone records a finished category.
func (cp *Checkpoint) MarkDone(url string) {
	if cp.done[url] {
		return
	}
	cp.done[url] = true
	cp.DoneCategories = append(cp.DoneCategories, url)
}

// Save writes the checkpoint atomically via a temp file and rename.
func (cp *Checkpoint) Save(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	cp.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	path := filepath.Join(outputDir, checkpointFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Clear removes a completed run's checkpoint.
func Clear(outputDir string) error {
	err := os.Remove(filepath.Join(outputDir, checkpointFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
