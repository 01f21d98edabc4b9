// SPDX-License-Identifier: MIT

// Package store provides the durable backends for media records and
// local upload blobs. Lookups that miss return (nil, nil); errors are
// reserved for storage access failures.
package store

import (
	"context"

	"github.com/vidstash/vidstash/internal/media/model"
)

// Store persists media records plus the binary blobs of local uploads.
type Store interface {
	// Put writes or overwrites a record.
	Put(ctx context.Context, rec *model.Record) error

	// PutWithBlob writes a record together with its binary in one unit.
	PutWithBlob(ctx context.Context, rec *model.Record, blob []byte) error

	// Get returns the record or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*model.Record, error)

	// FindByOriginalURL returns the record matching (userID, url) or (nil, nil).
	FindByOriginalURL(ctx context.Context, userID, url string) (*model.Record, error)

	// List returns every stored record, unfiltered.
	List(ctx context.Context) ([]*model.Record, error)

	// GetBlob returns the stored binary for a local record, or (nil, nil)
	// when no blob exists for the id.
	GetBlob(ctx context.Context, id string) ([]byte, error)

	Close() error
}
