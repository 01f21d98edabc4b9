// SPDX-License-Identifier: MIT

package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/vidstash/vidstash/internal/media/model"
	"github.com/vidstash/vidstash/internal/metrics"
)

// handleMinter materializes local blobs as scratch files so a player can
// consume them by path. Each mint produces a new file; release deletes it.
// Unreleased handles live until the registry is closed.
type handleMinter struct {
	dir string

	mu     sync.Mutex
	active map[string]struct{}
}

func newHandleMinter(dir string) (*handleMinter, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create handle dir: %w", err)
	}
	return &handleMinter{
		dir:    dir,
		active: make(map[string]struct{}),
	}, nil
}

func (h *handleMinter) mint(rec *model.Record, blob []byte) (string, error) {
	path := filepath.Join(h.dir, uuid.NewString()+extensionFor(rec))
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return "", fmt.Errorf("mint playback handle: %w", err)
	}

	h.mu.Lock()
	h.active[path] = struct{}{}
	h.mu.Unlock()
	metrics.HandleMinted()
	return path, nil
}

func (h *handleMinter) release(handle string) {
	h.mu.Lock()
	_, minted := h.active[handle]
	delete(h.active, handle)
	h.mu.Unlock()
	if !minted {
		return
	}

	if err := os.Remove(handle); err != nil && !os.IsNotExist(err) {
		return
	}
	metrics.HandleReleased()
}

// sweep removes every handle that was minted but never released.
func (h *handleMinter) sweep() error {
	h.mu.Lock()
	leftover := make([]string, 0, len(h.active))
	for path := range h.active {
		leftover = append(leftover, path)
	}
	h.active = make(map[string]struct{})
	h.mu.Unlock()

	var firstErr error
	for _, path := range leftover {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
		metrics.HandleReleased()
	}
	return firstErr
}

func extensionFor(rec *model.Record) string {
	if ext := filepath.Ext(rec.FileName); ext != "" {
		return ext
	}
	switch rec.MimeType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ".bin"
	}
}
