package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/drizzle/particles"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot records the active lists of a pool for offline inspection,
// typically after an invariant check failed.
type Snapshot struct {
	Version  int    `json:"version"`
	RunID    string `json:"run_id,omitempty"`
	Seed     int64  `json:"seed"`
	Frame    int64  `json:"frame"`
	Reason   string `json:"reason"`
	Capacity int    `json:"capacity"`
	Free     int    `json:"free"`

	// Error from the invariant check, if any
	Error string `json:"error,omitempty"`

	// Active lists in link order
	Lists map[string][]SlotState `json:"lists"`
	// Truncated names lists whose walk hit the capacity bound (a cycle)
	Truncated []string `json:"truncated,omitempty"`
}

// SlotState is one slot of an active list.
type SlotState struct {
	Index    int32      `json:"index"`
	Owner    string     `json:"owner"`
	Position [3]float32 `json:"position"`
	Velocity [3]float32 `json:"velocity"`
	Color    [3]float32 `json:"color"`
	Life     float32    `json:"life"`
}

var snapshotLists = []particles.List{particles.ListRain, particles.ListFire, particles.ListGeneral}

// NewSnapshot captures the active lists of pool. Each walk is bounded by
// the pool capacity so a corrupted chain cannot loop forever.
func NewSnapshot(pool *particles.Pool, frame, seed int64, reason string) *Snapshot {
	s := &Snapshot{
		Version:  SnapshotVersion,
		Seed:     seed,
		Frame:    frame,
		Reason:   reason,
		Capacity: pool.Capacity(),
		Lists:    make(map[string][]SlotState, len(snapshotLists)),
	}

	free := 0
	for i := pool.Head(particles.ListFree); i != particles.Nil && free < s.Capacity; i = pool.Next(i) {
		free++
	}
	s.Free = free

	for _, l := range snapshotLists {
		var slots []SlotState
		steps := 0
		for i := pool.Head(l); i != particles.Nil; i = pool.Next(i) {
			if steps == s.Capacity {
				s.Truncated = append(s.Truncated, l.String())
				break
			}
			steps++
			pt := pool.At(i)
			slots = append(slots, SlotState{
				Index:    int32(i),
				Owner:    pool.Owner(i).String(),
				Position: pt.Position,
				Velocity: pt.Velocity,
				Color:    pt.Color,
				Life:     pt.Life,
			})
		}
		s.Lists[l.String()] = slots
	}
	return s
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Reason != "" {
		sanitized := strings.ReplaceAll(snapshot.Reason, " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
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

	return &snapshot, nil
}
