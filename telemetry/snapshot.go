package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the full grid state for inspection.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Height int `json:"height"`
	Width  int `json:"width"`

	Tick int64 `json:"tick"`

	Cells []components.Cell `json:"cells"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// NewSnapshot captures the grid's current cells.
func NewSnapshot(g *systems.Grid, seed int64, bookmark *Bookmark) *Snapshot {
	return &Snapshot{
		Version:  SnapshotVersion,
		RNGSeed:  seed,
		Height:   g.Height(),
		Width:    g.Width(),
		Tick:     g.TickCount(),
		Cells:    g.Cells(),
		Bookmark: bookmark,
	}
}

// ByKind returns the cells of one kind, in index order.
func (s *Snapshot) ByKind(kind components.Creature) []components.Cell {
	var out []components.Cell
	for _, c := range s.Cells {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	if len(snapshot.Cells) != snapshot.Height*snapshot.Width {
		return nil, fmt.Errorf("snapshot has %d cells for a %dx%d grid", len(snapshot.Cells), snapshot.Height, snapshot.Width)
	}

	return &snapshot, nil
}
