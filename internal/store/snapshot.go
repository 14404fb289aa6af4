package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winkeep/internal/topology"
	"github.com/1broseidon/winkeep/internal/x11"
)

// snapshotRecord is the on-disk form of one geometry record. Window ids
// are not stable across server restarts, so a loaded snapshot only helps
// when the daemon itself restarted under a running session.
type snapshotRecord struct {
	Fingerprint string       `json:"fingerprint"`
	Window      uint32       `json:"window"`
	Geometry    x11.Geometry `json:"geometry"`
}

// Save writes all records to path as JSON, creating parent directories.
func (s *Store) Save(path string) error {
	records := make([]snapshotRecord, 0, len(s.records))
	for k, g := range s.records {
		records = append(records, snapshotRecord{
			Fingerprint: string(k.fingerprint),
			Window:      uint32(k.window),
			Geometry:    g,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Fingerprint != records[j].Fingerprint {
			return records[i].Fingerprint < records[j].Fingerprint
		}
		return records[i].Window < records[j].Window
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write state file %q: %w", path, err)
	}
	return nil
}

// Load reads records from path into the store, overwriting duplicates. A
// missing file is not an error.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read state file %q: %w", path, err)
	}

	var records []snapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse state file %q: %w", path, err)
	}

	for _, r := range records {
		s.Remember(topology.Fingerprint(r.Fingerprint), xproto.Window(r.Window), r.Geometry)
	}
	return nil
}
