// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/vidstash/vidstash/internal/log"
)

// FileStore keeps the partition map in a single JSON file. Writes are
// atomic and durable (fsync before rename). A file watcher surfaces
// modifications made by other processes; the store's own writes are
// recognized by content hash and suppressed.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu       sync.Mutex
	lastSave [sha256.Size]byte
	haveSave bool

	watcher *fsnotify.Watcher
}

// NewFileStore creates a file store at path. The parent directory is
// created if missing; the file itself appears on first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("post store path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create post store dir: %w", err)
	}
	return &FileStore{
		path:   path,
		logger: log.WithComponent("post-store"),
	}, nil
}

func (s *FileStore) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Load reads the partition file. A missing file or one that fails to
// decode yields an empty map: the storage format is validated here, at
// the boundary, and corrupt content degrades to empty rather than error.
func (s *FileStore) Load() (Partition, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Partition{}, nil
		}
		return nil, fmt.Errorf("read post store: %w", err)
	}

	var p Partition
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.Warn().
			Err(err).
			Str(log.FieldPath, s.path).
			Msg("post store content not decodable, starting empty")
		return Partition{}, nil
	}
	if p == nil {
		p = Partition{}
	}
	return p, nil
}

// Save atomically replaces the partition file.
func (s *FileStore) Save(p Partition) error {
	buf, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post store: %w", err)
	}

	pending, err := renameio.NewPendingFile(s.path)
	if err != nil {
		return fmt.Errorf("create pending post store file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending post store file")
		}
	}()

	if _, err := pending.Write(buf); err != nil {
		return fmt.Errorf("write post store: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace post store: %w", err)
	}

	s.mu.Lock()
	s.lastSave = sha256.Sum256(buf)
	s.haveSave = true
	s.mu.Unlock()
	return nil
}

// Watch observes the partition file for modifications by other writers.
// The parent directory is watched because atomic saves replace the file
// by rename, which would silently detach a watch on the file itself.
func (s *FileStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch post store dir: %w", err)
	}
	s.watcher = watcher

	s.logger.Info().
		Str("event", "post_store.watcher_started").
		Str(log.FieldPath, s.path).
		Msg("watching post store for changes")

	go s.watchLoop(ctx, onChange)
	return nil
}

func (s *FileStore) watchLoop(ctx context.Context, onChange func()) {
	// Debounce so one logical save (write + rename) fires once.
	var debounce *time.Timer
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("event", "post_store.watcher_stopped").Msg("post store watcher stopped")
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				if s.isOwnWrite() {
					return
				}
				onChange()
			})

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn().Err(err).Msg("post store watcher error")
		}
	}
}

// isOwnWrite reports whether the file currently matches the last content
// this store wrote, in which case the change event is our own save.
func (s *FileStore) isOwnWrite() bool {
	s.mu.Lock()
	last := s.lastSave
	have := s.haveSave
	s.mu.Unlock()
	if !have {
		return false
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	return sha256.Sum256(raw) == last
}

// Ensure interface compliance at compile time.
var _ Store = (*FileStore)(nil)
