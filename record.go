package abacus

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// record is the on-disk form of one key.
type record struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Checksum  string    `json:"checksum"` // Hash of Value
	UpdatedAt time.Time `json:"updatedAt"`
}

// saveRecord writes a record to path, creating its directory.
func (s *FileStore) saveRecord(path string, r *record) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Write to a sibling file and rename so a crash never leaves half a record.
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace record: %w", err)
	}

	return nil
}

// loadRecord reads and verifies the record at path.
func (s *FileStore) loadRecord(path string) (*record, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	if r.Checksum != s.checksum(r.Value) {
		return nil, fmt.Errorf("%w: checksum mismatch for %s", ErrCorruptRecord, r.Key)
	}

	return &r, nil
}
