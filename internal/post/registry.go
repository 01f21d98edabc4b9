// SPDX-License-Identifier: MIT

// Package post implements the post registry: named, user-partitioned
// collections of media identifiers with per-item annotations, persisted
// as one unit and broadcasting change notifications.
package post

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vidstash/vidstash/internal/log"
	"github.com/vidstash/vidstash/internal/metrics"
	"github.com/vidstash/vidstash/internal/post/model"
	"github.com/vidstash/vidstash/internal/post/store"
)

// ErrNoMedia rejects post creation without any media identifier.
var ErrNoMedia = errors.New("a post requires at least one media item")

// CreateInput carries the fields for a new post. MediaIDs must contain at
// least one non-empty id after deduplication.
type CreateInput struct {
	UserID      string
	Name        string
	Title       string
	Description string
	MediaIDs    []string
	MediaMeta   []model.MediaMeta
}

// UpdatePatch carries the optional fields of a partial post update. Nil
// pointers leave the current value untouched; a nil MediaMeta keeps the
// existing annotations. Which media a post references cannot change.
type UpdatePatch struct {
	Name        *string
	Title       *string
	Description *string
	MediaMeta   []model.MediaMeta
}

// Registry manages posts against an injected store. Mutations serialize
// through one mutex because the store persists the whole partition map as
// a single unit; cross-process writers remain last-write-wins.
type Registry struct {
	mu       sync.Mutex
	store    store.Store
	notifier *notifier
	logger   zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewRegistry creates a post registry over the given store.
func NewRegistry(st store.Store) *Registry {
	return &Registry{
		store:    st,
		notifier: newNotifier(),
		logger:   log.WithComponent("post"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// StartWatcher begins relaying storage-level changes from other writers
// to subscribers. The writing user is unknown at the storage level, so
// these events fan out to every subscriber.
func (r *Registry) StartWatcher(ctx context.Context) error {
	return r.store.Watch(ctx, r.notifier.notifyAll)
}

// Create validates, persists and announces a new post. The post is
// prepended to its user's partition so the natural read order is
// newest-first.
func (r *Registry) Create(input CreateInput) (*model.Record, error) {
	userID := model.NormalizeUserID(input.UserID)
	mediaIDs := model.SanitizeMediaIDs(input.MediaIDs)
	if len(mediaIDs) == 0 {
		metrics.RecordPostMutation("create", "invalid")
		return nil, ErrNoMedia
	}

	rec := model.Record{
		ID:          r.newID(),
		UserID:      userID,
		Name:        model.SanitizeText(input.Name),
		Title:       model.SanitizeText(input.Title),
		Description: model.SanitizeText(input.Description),
		MediaIDs:    mediaIDs,
		MediaMeta:   model.SanitizeMediaMeta(input.MediaMeta, mediaIDs),
		CreatedAt:   r.now(),
	}

	r.mu.Lock()
	p, err := r.store.Load()
	if err == nil {
		p[userID] = append([]model.Record{rec}, p[userID]...)
		err = r.store.Save(p)
	}
	r.mu.Unlock()
	if err != nil {
		metrics.RecordPostMutation("create", "error")
		return nil, fmt.Errorf("create post: %w", err)
	}

	metrics.RecordPostMutation("create", "success")
	r.logger.Debug().
		Str(log.FieldPostID, rec.ID).
		Str(log.FieldUserID, userID).
		Int("media_count", len(mediaIDs)).
		Msg("post created")
	r.notifier.notifyUser(userID)
	return rec.Clone(), nil
}

// List returns the user's posts newest-first, each with its annotations
// re-projected against the current media ids.
func (r *Registry) List(userID string) ([]model.Record, error) {
	normalized := model.NormalizeUserID(userID)

	r.mu.Lock()
	p, err := r.store.Load()
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := p[normalized]
	out := make([]model.Record, 0, len(posts))
	for i := range posts {
		rec := *posts[i].Clone()
		rec.MediaMeta = model.SanitizeMediaMeta(rec.MediaMeta, rec.MediaIDs)
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update applies a partial update to one post. Returns (nil, nil) when no
// post with that id exists in the user's partition. Annotations are
// sanitized against the existing media ids; membership never changes.
func (r *Registry) Update(userID, postID string, patch UpdatePatch) (*model.Record, error) {
	normalized := model.NormalizeUserID(userID)

	r.mu.Lock()
	p, err := r.store.Load()
	if err != nil {
		r.mu.Unlock()
		metrics.RecordPostMutation("update", "error")
		return nil, fmt.Errorf("update post: %w", err)
	}

	posts := p[normalized]
	idx := -1
	for i := range posts {
		if posts[i].ID == postID {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.mu.Unlock()
		return nil, nil
	}

	rec := &posts[idx]
	if patch.Name != nil {
		rec.Name = model.SanitizeText(*patch.Name)
	}
	if patch.Title != nil {
		rec.Title = model.SanitizeText(*patch.Title)
	}
	if patch.Description != nil {
		rec.Description = model.SanitizeText(*patch.Description)
	}
	if patch.MediaMeta != nil {
		rec.MediaMeta = model.SanitizeMediaMeta(patch.MediaMeta, rec.MediaIDs)
	}

	p[normalized] = posts
	err = r.store.Save(p)
	updated := rec.Clone()
	r.mu.Unlock()
	if err != nil {
		metrics.RecordPostMutation("update", "error")
		return nil, fmt.Errorf("update post: %w", err)
	}

	metrics.RecordPostMutation("update", "success")
	r.notifier.notifyUser(normalized)
	return updated, nil
}

// Delete removes a post if present. Deleting an absent post is a no-op:
// nothing is persisted and no notification fires.
func (r *Registry) Delete(userID, postID string) error {
	normalized := model.NormalizeUserID(userID)

	r.mu.Lock()
	p, err := r.store.Load()
	if err != nil {
		r.mu.Unlock()
		metrics.RecordPostMutation("delete", "error")
		return fmt.Errorf("delete post: %w", err)
	}

	posts := p[normalized]
	next := posts[:0:0]
	for i := range posts {
		if posts[i].ID != postID {
			next = append(next, posts[i])
		}
	}
	if len(next) == len(posts) {
		r.mu.Unlock()
		return nil
	}

	p[normalized] = next
	err = r.store.Save(p)
	r.mu.Unlock()
	if err != nil {
		metrics.RecordPostMutation("delete", "error")
		return fmt.Errorf("delete post: %w", err)
	}

	metrics.RecordPostMutation("delete", "success")
	r.logger.Debug().
		Str(log.FieldPostID, postID).
		Str(log.FieldUserID, normalized).
		Msg("post deleted")
	r.notifier.notifyUser(normalized)
	return nil
}

// Subscribe registers fn for change notifications scoped to the user and
// returns an unsubscribe function. A subscriber for one user is never
// invoked for another user's mutation in this process; storage-level
// events from other writers fan out to all subscribers.
func (r *Registry) Subscribe(userID string, fn func()) func() {
	return r.notifier.subscribe(userID, fn)
}
