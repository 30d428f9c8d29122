package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// Metadata is persisted next to the key files.
type Metadata struct {
	Rounds     uint64    `json:"rounds"`
	Facts      uint64    `json:"facts"`
	Duplicates uint64    `json:"duplicates"`
	Conflicts  uint64    `json:"conflicts"`
	Wins       int       `json:"wins"`
	Draws      int       `json:"draws"`
	RunID      string    `json:"run_id,omitempty"`
	SavedAt    time.Time `json:"saved_at"`
}

func loadMetadata(path string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return meta, nil
		}
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func saveMetadata(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file then rename for atomicity
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}
