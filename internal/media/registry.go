// SPDX-License-Identifier: MIT

// Package media implements the media registry: it mints, deduplicates,
// mutates and resolves media records, and manages the transient playback
// handles for locally uploaded binaries.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/vidstash/vidstash/internal/log"
	"github.com/vidstash/vidstash/internal/media/model"
	"github.com/vidstash/vidstash/internal/media/store"
	"github.com/vidstash/vidstash/internal/metrics"
)

// ErrBlobMissing indicates a local record exists but its binary is gone,
// distinct from the record itself being absent.
var ErrBlobMissing = errors.New("binary not found for local media")

// LocalUpload describes one locally uploaded file handed in by the caller.
type LocalUpload struct {
	FileName string
	MimeType string
	Data     []byte
}

// Registry coordinates record identity, dedup and blob lifecycle against
// an injected store.
type Registry struct {
	store   store.Store
	handles *handleMinter
	ingest  singleflight.Group
	logger  zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewRegistry creates a registry over the given store. handleDir is the
// scratch directory used for transient playback handles.
func NewRegistry(st store.Store, handleDir string) (*Registry, error) {
	minter, err := newHandleMinter(handleDir)
	if err != nil {
		return nil, err
	}
	return &Registry{
		store:   st,
		handles: minter,
		logger:  log.WithComponent("media"),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}, nil
}

// Close releases every still-minted playback handle. The store itself is
// owned by the caller and stays open.
func (r *Registry) Close() error {
	return r.handles.sweep()
}

func normalizeUserID(userID string) string {
	u := strings.TrimSpace(userID)
	if u == "" {
		return model.GuestUserID
	}
	return u
}

// IngestLocal creates a new record for an uploaded file. Local uploads are
// never deduplicated: the same bytes uploaded twice yield two records.
func (r *Registry) IngestLocal(ctx context.Context, upload LocalUpload, userID string) (*model.Record, error) {
	now := r.now()
	rec := &model.Record{
		ID:        r.newID(),
		Source:    model.SourceLocal,
		Title:     upload.FileName,
		UserID:    normalizeUserID(userID),
		FileName:  upload.FileName,
		MimeType:  upload.MimeType,
		FileSize:  int64(len(upload.Data)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.store.PutWithBlob(ctx, rec, upload.Data); err != nil {
		metrics.RecordMediaIngest("local", "error")
		return nil, fmt.Errorf("ingest local media: %w", err)
	}

	metrics.RecordMediaIngest("local", "created")
	r.logger.Debug().
		Str(log.FieldMediaID, rec.ID).
		Str(log.FieldFileName, rec.FileName).
		Str(log.FieldUserID, rec.UserID).
		Msg("local media ingested")
	return rec, nil
}

// IngestRemote registers a remote URL for a user. The operation is
// idempotent per (userID, url): an existing record is returned unchanged.
// Concurrent identical ingests are collapsed onto one creation.
func (r *Registry) IngestRemote(ctx context.Context, url, userID string) (*model.Record, error) {
	normalized := strings.TrimSpace(url)
	user := normalizeUserID(userID)

	v, err, _ := r.ingest.Do(user+"\x00"+normalized, func() (any, error) {
		existing, err := r.store.FindByOriginalURL(ctx, user, normalized)
		if err != nil {
			metrics.RecordMediaIngest("remote", "error")
			return nil, fmt.Errorf("dedup lookup: %w", err)
		}
		if existing != nil {
			metrics.RecordMediaIngest("remote", "deduplicated")
			return existing, nil
		}

		now := r.now()
		rec := &model.Record{
			ID:          r.newID(),
			Source:      model.SourceRemote,
			Title:       normalized,
			UserID:      user,
			OriginalURL: normalized,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.store.Put(ctx, rec); err != nil {
			metrics.RecordMediaIngest("remote", "error")
			return nil, fmt.Errorf("ingest remote media: %w", err)
		}

		metrics.RecordMediaIngest("remote", "created")
		r.logger.Debug().
			Str(log.FieldMediaID, rec.ID).
			Str(log.FieldURL, rec.OriginalURL).
			Str(log.FieldUserID, rec.UserID).
			Msg("remote media ingested")
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Record), nil
}

// Update patches the whitelisted mutable fields of a record and bumps
// UpdatedAt. Returns (nil, nil) when the record does not exist.
func (r *Registry) Update(ctx context.Context, id string, patch model.Patch) (*model.Record, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	patch.Apply(rec, r.now())
	if err := r.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("update media: %w", err)
	}
	return rec, nil
}

// Get returns the record for id, or (nil, nil) when absent.
func (r *Registry) Get(ctx context.Context, id string) (*model.Record, error) {
	return r.store.Get(ctx, id)
}

// GetBatch resolves ids in caller order, silently skipping ids that do not
// exist. A non-empty userID additionally filters out records owned by a
// different user, so identifiers taken from a share link cannot leak
// another user's media.
func (r *Registry) GetBatch(ctx context.Context, ids []string, userID string) ([]*model.Record, error) {
	var filter string
	if strings.TrimSpace(userID) != "" {
		filter = normalizeUserID(userID)
	}

	out := make([]*model.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := r.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		if filter != "" && rec.UserID != filter {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListAll returns every record in the store, unfiltered. Maintenance use.
func (r *Registry) ListAll(ctx context.Context) ([]*model.Record, error) {
	return r.store.List(ctx)
}

// ResolveSource turns a record into an immediately playable source. Remote
// records resolve to their original URL without I/O. Local records get a
// freshly minted scratch-file handle over the stored binary on every call;
// callers that resolve repeatedly must cache or release each handle.
func (r *Registry) ResolveSource(ctx context.Context, rec *model.Record) (string, error) {
	if rec.Source == model.SourceRemote {
		metrics.RecordMediaResolve("success")
		return rec.OriginalURL, nil
	}

	blob, err := r.store.GetBlob(ctx, rec.ID)
	if err != nil {
		metrics.RecordMediaResolve("error")
		return "", fmt.Errorf("load blob: %w", err)
	}
	if blob == nil {
		metrics.RecordMediaResolve("blob_missing")
		return "", fmt.Errorf("media %s: %w", rec.ID, ErrBlobMissing)
	}

	handle, err := r.handles.mint(rec, blob)
	if err != nil {
		metrics.RecordMediaResolve("error")
		return "", err
	}
	metrics.RecordMediaResolve("success")
	r.logger.Debug().
		Str(log.FieldMediaID, rec.ID).
		Str(log.FieldHandle, handle).
		Msg("playback handle minted")
	return handle, nil
}

// ReleaseSource invalidates a previously minted handle. It is idempotent
// and a no-op for anything that is not a minted handle (remote URLs are
// never released).
func (r *Registry) ReleaseSource(handle string) {
	r.handles.release(handle)
}
