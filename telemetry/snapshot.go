package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/ecosys/traits"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a saved world state with the run metadata needed to
// reproduce it.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	RNGSeed int64  `json:"rng_seed"`

	Tick    int32   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	// State is the simulator's own snapshot encoding.
	State json.RawMessage `json:"state"`

	Lifetimes []LifetimeStatsJSON `json:"lifetimes,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	ID          uint32      `json:"id"`
	Kind        traits.Kind `json:"kind"`
	ParentID    uint32      `json:"parent_id,omitempty"`
	BirthTick   int32       `json:"birth_tick"`
	BirthTime   float64     `json:"birth_time"`
	Kills       int         `json:"kills"`
	Conceptions int         `json:"conceptions"`
	Children    int         `json:"children"`
	PeakEnergy  float64     `json:"peak_energy"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON(id uint32) *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		ID:          id,
		Kind:        ls.Kind,
		ParentID:    ls.ParentID,
		BirthTick:   ls.BirthTick,
		BirthTime:   ls.BirthTime,
		Kills:       ls.Kills,
		Conceptions: ls.Conceptions,
		Children:    ls.Children,
		PeakEnergy:  ls.PeakEnergy,
	}
}

// FromJSON converts the JSON form back to LifetimeStats.
func (lsj *LifetimeStatsJSON) FromJSON() *LifetimeStats {
	if lsj == nil {
		return nil
	}
	return &LifetimeStats{
		BirthTick:   lsj.BirthTick,
		BirthTime:   lsj.BirthTime,
		Kind:        lsj.Kind,
		ParentID:    lsj.ParentID,
		Kills:       lsj.Kills,
		Conceptions: lsj.Conceptions,
		Children:    lsj.Children,
		PeakEnergy:  lsj.PeakEnergy,
	}
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

	return &snapshot, nil
}
