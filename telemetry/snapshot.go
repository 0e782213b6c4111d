package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the colony state at one tick, for inspection after a run.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	RNGSeed int64  `json:"rng_seed"`

	ArenaWidth  float32 `json:"arena_width"`
	ArenaHeight float32 `json:"arena_height"`

	Tick        int32   `json:"tick"`
	SimTimeSec  float64 `json:"sim_time_sec"`
	FogRevealed float64 `json:"fog_revealed"`

	Ants []AntState  `json:"ants"`
	Food []FoodState `json:"food"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AntState holds one ant's state.
type AntState struct {
	ID     uint32  `json:"id"`
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Health float32 `json:"health"`
	Hunger float32 `json:"hunger"`
	Queen  bool    `json:"queen,omitempty"`
	State  string  `json:"state"`
	Goal   string  `json:"goal"`

	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// FoodState holds one food resource's state.
type FoodState struct {
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Quantity float32 `json:"quantity"`
	Known    bool    `json:"known"`
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
	path := filepath.Join(dir, name+".json")

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

	return &snapshot, nil
}
