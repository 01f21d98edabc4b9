// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstash/vidstash/internal/media/model"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	backends := make(map[string]Store)
	for _, name := range []string{"memory", "badger", "sqlite"} {
		s, err := Open(name, t.TempDir())
		require.NoError(t, err, "open %s backend", name)
		t.Cleanup(func() { _ = s.Close() })
		backends[name] = s
	}
	return backends
}

func remoteRecord(id, userID, url string) *model.Record {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.Record{
		ID:          id,
		Source:      model.SourceRemote,
		Title:       url,
		UserID:      userID,
		OriginalURL: url,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := remoteRecord("m1", "alice", "https://a/v1.mp4")
			require.NoError(t, s.Put(ctx, rec))

			got, err := s.Get(ctx, "m1")
			require.NoError(t, err)
			require.NotNil(t, got)
			if diff := cmp.Diff(rec, got); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetMissingReturnsNilNil(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Get(context.Background(), "nope")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestFindByOriginalURLScopedToUser(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, remoteRecord("m1", "alice", "https://a/v1.mp4")))
			require.NoError(t, s.Put(ctx, remoteRecord("m2", "bob", "https://a/v1.mp4")))

			got, err := s.FindByOriginalURL(ctx, "alice", "https://a/v1.mp4")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "m1", got.ID)

			got, err = s.FindByOriginalURL(ctx, "carol", "https://a/v1.mp4")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestBlobRoundTrip(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Millisecond)
			rec := &model.Record{
				ID:        "local1",
				Source:    model.SourceLocal,
				Title:     "clip.mp4",
				UserID:    "alice",
				FileName:  "clip.mp4",
				MimeType:  "video/mp4",
				FileSize:  4,
				CreatedAt: now,
				UpdatedAt: now,
			}
			require.NoError(t, s.PutWithBlob(ctx, rec, []byte{0, 1, 2, 3}))

			blob, err := s.GetBlob(ctx, "local1")
			require.NoError(t, err)
			assert.Equal(t, []byte{0, 1, 2, 3}, blob)

			blob, err = s.GetBlob(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, blob)
		})
	}
}

func TestGuestNormalizationOnRead(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := remoteRecord("m1", "", "https://a/v1.mp4")
			require.NoError(t, s.Put(ctx, rec))

			got, err := s.Get(ctx, "m1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, model.GuestUserID, got.UserID)
		})
	}
}

func TestListReturnsEveryRecord(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Put(ctx, remoteRecord("m1", "alice", "https://a/1.mp4")))
			require.NoError(t, s.Put(ctx, remoteRecord("m2", "bob", "https://b/2.mp4")))

			list, err := s.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 2)
		})
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open("bolt", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown media store backend")
}
