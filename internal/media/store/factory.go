// SPDX-License-Identifier: MIT

package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Open creates a Store based on the backend configuration. The dir is
// created if missing; memory ignores it.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "memory":
		return NewMemoryStore(), nil
	case "badger", "":
		path := filepath.Join(dir, "media-badger")
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("create media store dir: %w", err)
		}
		return OpenBadgerStore(path)
	case "sqlite":
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create media store dir: %w", err)
		}
		return NewSqliteStore(filepath.Join(dir, "media.sqlite"))
	default:
		return nil, fmt.Errorf("unknown media store backend: %s (supported: badger, sqlite, memory)", backend)
	}
}
