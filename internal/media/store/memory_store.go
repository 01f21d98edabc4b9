// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/vidstash/vidstash/internal/media/model"
)

// MemoryStore is an in-memory Store intended for tests and local iteration.
// Not durable; not suitable for production.
type MemoryStore struct {
	mu sync.RWMutex

	records map[string]*model.Record
	blobs   map[string][]byte

	// (userID, originalUrl) -> record id
	urlIndex map[urlKey]string
}

type urlKey struct {
	userID string
	url    string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[string]*model.Record),
		blobs:    make(map[string][]byte),
		urlIndex: make(map[urlKey]string),
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Put(ctx context.Context, rec *model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putLocked(rec)
}

func (m *MemoryStore) PutWithBlob(ctx context.Context, rec *model.Record, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.putLocked(rec); err != nil {
		return err
	}
	buf := make([]byte, len(blob))
	copy(buf, blob)
	m.blobs[rec.ID] = buf
	return nil
}

func (m *MemoryStore) putLocked(rec *model.Record) error {
	cp := rec.Clone()
	cp.Normalize()
	m.records[cp.ID] = cp
	if cp.Source == model.SourceRemote && cp.OriginalURL != "" {
		m.urlIndex[urlKey{cp.UserID, cp.OriginalURL}] = cp.ID
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) FindByOriginalURL(ctx context.Context, userID, url string) (*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.urlIndex[urlKey{userID, url}]
	if !ok {
		return nil, nil
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetBlob(ctx context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[id]
	if !ok {
		return nil, nil
	}
	buf := make([]byte, len(blob))
	copy(buf, blob)
	return buf, nil
}

// Ensure interface compliance at compile time.
var _ Store = (*MemoryStore)(nil)
