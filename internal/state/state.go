package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joshharrison/critpath/internal/activity"
	"github.com/joshharrison/critpath/internal/reporter"
)

// DefaultDir is where the CLI keeps its snapshot, relative to the working directory.
const DefaultDir = ".critpath"
const stateFile = "schedule.json"

// Snapshot is the last schedule computed by `critpath analyze --save`.
// Activities are kept so the schedule can be recomputed and redrawn.
type Snapshot struct {
	ID         string                `json:"id"`
	CreatedAt  time.Time             `json:"created_at"`
	Source     string                `json:"source"` // input file the schedule was computed from
	Activities []activity.Descriptor `json:"activities"`
	Schedule   reporter.Payload      `json:"schedule"`
}

// NewSnapshot stamps a snapshot with an ID derived from the current time.
func NewSnapshot(source string, descs []activity.Descriptor, schedule reporter.Payload) *Snapshot {
	now := time.Now()
	return &Snapshot{
		ID:         fmt.Sprintf("cp-%s", now.Format("2006-01-02-150405")),
		CreatedAt:  now,
		Source:     source,
		Activities: descs,
		Schedule:   schedule,
	}
}

// Path returns the snapshot file path inside dir.
func Path(dir string) string {
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, stateFile)
}

// Save persists the snapshot into dir, creating it if needed.
func Save(dir string, snap *Snapshot) error {
	path := Path(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	// Write then rename so a reader never sees a half-written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Load reads an existing snapshot from dir.
func Load(dir string) (*Snapshot, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &s, nil
}

// Exists checks if a snapshot exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(Path(dir))
	return err == nil
}

// Clean removes the state directory.
func Clean(dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	return os.RemoveAll(dir)
}
