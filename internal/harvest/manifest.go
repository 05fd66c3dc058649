// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"
	"time"

	"github.com/segmentio/encoding/json"
)

// Manifest records run progress after every completed page. It is
// observational: the status command reads it, but resume authority stays
// with the per-page cursor checkpoint files, so a run whose manifest is
// lost or stale remains resumable.
type Manifest struct {
	Year            int       `json:"year"`
	Filter          string    `json:"filter"`
	LastPage        int       `json:"last_page"`
	NextCursor      string    `json:"next_cursor,omitempty"`
	TotalDownloaded int       `json:"total_downloaded"`
	StartedAt       time.Time `json:"started_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// LoadManifest reads the manifest at path. A missing file returns
// (nil, nil) so callers can distinguish "no run yet" from real errors.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest atomically via a temp file and rename, so a
// crash mid-write never leaves a truncated manifest behind.
func (m *Manifest) Save(path string) error {
	m.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}
