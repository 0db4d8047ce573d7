// Package store persists vectorizer snapshots between training and
// inference runs: a single JSON artifact file for the common case, and
// a SQLite-backed store for runs that keep several named snapshots.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/go-nmt-prep/internal/vectorizer"
)

// SaveFile writes a snapshot to path as indented JSON. The JSON object
// holds source_tokens, target_tokens, and max_words.
func SaveFile(path string, snap vectorizer.Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	raw = append(raw, '\n')

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// LoadFile reads a snapshot from a JSON artifact file.
func LoadFile(path string) (vectorizer.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return vectorizer.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap vectorizer.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return vectorizer.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	return snap, nil
}
