// Package cache persists the generation-paired snapshot that
// correlates handheld content-DB indices with opaque Mastodon post
// IDs across sync cycles (SPEC_FULL.md §4.5).
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"github.com/heffalump/conduit/internal/hhrecord"
)

const (
	// NewFileName is the current-generation snapshot, written at the
	// end of a successful sync.
	NewFileName = "heffalump_mastodon_timeline.json"
	// OldFileName is the previous-generation snapshot, consumed at the
	// start of the next sync to resolve handheld writes.
	OldFileName = "heffalump_mastodon_timeline_old.json"
)

// ErrMissing is returned by Load when the requested generation's file
// does not exist.
var ErrMissing = errors.New("cache snapshot missing")

// Snapshot is the persisted (Prefs, post ID list) pair. PostIDs[i] is
// the opaque Mastodon ID that was at on-device content index i the
// sync this snapshot was written.
type Snapshot struct {
	Prefs   hhrecord.Prefs `toml:"prefs"`
	PostIDs []string       `toml:"post_ids"`
}

// Load reads the snapshot at dir/name. It returns ErrMissing (wrapped)
// if the file does not exist.
func Load(dir, name string) (Snapshot, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return Snapshot{}, fmt.Errorf("reading cache %s: %w", path, err)
	}

	var snap Snapshot
	if err := toml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding cache %s: %w", path, err)
	}
	return snap, nil
}

// LoadOld loads the previous-generation snapshot from dir.
func LoadOld(dir string) (Snapshot, error) {
	return Load(dir, OldFileName)
}

// Save writes snap to dir/NewFileName, rotating any existing
// new-generation file to the old-generation path first (overwriting
// whatever was there), then flushing the new file to durable storage.
// This is the only place PostIDs is committed as the device's source
// of truth for the next sync's writes.
func Save(dir string, snap Snapshot) error {
	newPath := filepath.Join(dir, NewFileName)
	oldPath := filepath.Join(dir, OldFileName)

	if _, err := os.Stat(newPath); err == nil {
		if err := os.Rename(newPath, oldPath); err != nil {
			return fmt.Errorf("rotating cache: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking existing cache: %w", err)
	}

	data, err := toml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	f, err := os.Create(newPath)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return f.Sync()
}

// PostAt returns the post ID at index i, or false if i is out of
// range.
func (s Snapshot) PostAt(i int) (string, bool) {
	if i < 0 || i >= len(s.PostIDs) {
		return "", false
	}
	return s.PostIDs[i], true
}
