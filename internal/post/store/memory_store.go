// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sync"

	"github.com/vidstash/vidstash/internal/post/model"
)

// MemoryStore is an in-memory Store intended for tests. Not durable and
// invisible to other processes, so Watch is a no-op.
type MemoryStore struct {
	mu sync.Mutex
	p  Partition
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{p: Partition{}}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Load() (Partition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clonePartition(m.p), nil
}

func (m *MemoryStore) Save(p Partition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = clonePartition(p)
	return nil
}

func (m *MemoryStore) Watch(ctx context.Context, onChange func()) error {
	return nil
}

func clonePartition(p Partition) Partition {
	out := make(Partition, len(p))
	for user, posts := range p {
		list := make([]model.Record, 0, len(posts))
		for i := range posts {
			list = append(list, *posts[i].Clone())
		}
		out[user] = list
	}
	return out
}

// Ensure interface compliance at compile time.
var _ Store = (*MemoryStore)(nil)
