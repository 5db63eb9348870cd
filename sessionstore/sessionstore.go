// Package sessionstore persists a Segments buffer to disk between CLI
// invocations, guarded by an exclusive file lock so two invocations
// against the same session file never interleave a read and a write.
//
// Grounded on nanostore/store/json_store.go's load/save-with-lock
// pattern and nanostore/store/filelock.go's FileLock abstraction,
// swapping the SQLite-document payload for a YAML Segments snapshot.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/sousuke0422/mozcgo/segment"
)

const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// snapshot is the on-disk representation of a Segments buffer.
type snapshot struct {
	HistoryBoundary        int               `yaml:"history_boundary"`
	MaxHistorySegmentsSize int               `yaml:"max_history_segments_size"`
	Resized                bool              `yaml:"resized"`
	Segments               []segment.Segment `yaml:"segments"`
	RevertEntries          []segment.RevertEntry `yaml:"revert_entries"`
}

// Store persists one Segments buffer at a fixed path.
type Store struct {
	path string
	lock *flock.Flock
}

// New returns a Store backed by the file at path. The file need not
// exist yet; Load returns a fresh empty Segments in that case.
func New(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

func (s *Store) withLock(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	var locked bool
	var err error
	for i := 0; i < lockMaxRetries; i++ {
		locked, err = s.lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("acquiring session lock: %w", err)
		}
		if locked {
			break
		}
	}
	if !locked {
		return fmt.Errorf("acquiring session lock: timed out after %d attempts", lockMaxRetries)
	}
	defer func() { _ = s.lock.Unlock() }()

	return fn()
}

// Load reads the persisted Segments buffer, or returns a fresh empty one
// if the session file does not exist yet.
func (s *Store) Load() (*segment.Segments, error) {
	var result *segment.Segments
	err := s.withLock(func() error {
		segs, err := s.load()
		result = segs
		return err
	})
	return result, err
}

func (s *Store) load() (*segment.Segments, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return segment.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if len(data) == 0 {
		return segment.New(), nil
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	// YAML writes a nil slice as [] and reads [] back as an empty non-nil
	// slice; restore nil so a loaded buffer equals the one that was saved.
	for i := range snap.Segments {
		if len(snap.Segments[i].Candidates) == 0 {
			snap.Segments[i].Candidates = nil
		}
		if len(snap.Segments[i].MetaCandidates) == 0 {
			snap.Segments[i].MetaCandidates = nil
		}
	}
	return segment.FromSnapshot(snap.Segments, snap.HistoryBoundary, snap.MaxHistorySegmentsSize, snap.Resized, snap.RevertEntries), nil
}

// Save writes segs to the session file, locking for the duration and
// writing atomically (temp file + rename).
func (s *Store) Save(segs *segment.Segments) error {
	return s.withLock(func() error { return s.save(segs) })
}

func (s *Store) save(segs *segment.Segments) error {
	snap := snapshot{
		HistoryBoundary:        segs.HistorySegmentsSize(),
		MaxHistorySegmentsSize: segs.MaxHistorySegmentsSize(),
		Resized:                segs.Resized(),
		Segments:               segs.All(),
		RevertEntries:          segs.RevertEntries(),
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling session snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming session file: %w", err)
	}
	return nil
}
