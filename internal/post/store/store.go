// SPDX-License-Identifier: MIT

// Package store persists the post partition map. The whole structure
// (userID -> ordered post list) is read and written as one unit.
package store

import (
	"context"

	"github.com/vidstash/vidstash/internal/post/model"
)

// Partition maps a normalized user id to that user's ordered post list.
type Partition map[string][]model.Record

// Store is the synchronous backing store for posts.
type Store interface {
	// Load reads the entire partition map. A missing or unreadable
	// structure yields an empty map, never an error caused by shape.
	Load() (Partition, error)

	// Save atomically replaces the entire partition map.
	Save(Partition) error

	// Watch invokes onChange whenever the underlying storage is modified
	// by another writer. Implementations without external visibility may
	// make this a no-op. Watching stops when ctx is done.
	Watch(ctx context.Context, onChange func()) error

	Close() error
}
