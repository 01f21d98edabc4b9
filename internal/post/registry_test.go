// SPDX-License-Identifier: MIT

package post

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstash/vidstash/internal/post/model"
	"github.com/vidstash/vidstash/internal/post/store"
)

// newTestRegistry returns a registry with a deterministic clock and id
// sequence over the requested backend.
func newTestRegistry(t *testing.T, backend string) *Registry {
	t.Helper()
	st, err := store.Open(backend, filepath.Join(t.TempDir(), "posts.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	reg := NewRegistry(st)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	seq := 0
	reg.newID = func() string {
		seq++
		return fmt.Sprintf("post-%d", seq)
	}
	return reg
}

func backends(t *testing.T, fn func(t *testing.T, reg *Registry)) {
	for _, backend := range []string{"memory", "file"} {
		t.Run(backend, func(t *testing.T) {
			fn(t, newTestRegistry(t, backend))
		})
	}
}

func TestCreateRequiresMedia(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		_, err := reg.Create(CreateInput{UserID: "u1"})
		require.ErrorIs(t, err, ErrNoMedia)

		_, err = reg.Create(CreateInput{UserID: "u1", MediaIDs: []string{"", "  "}})
		require.ErrorIs(t, err, ErrNoMedia, "ids that sanitize away do not count")
	})
}

func TestCreateDeduplicatesMediaIDs(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		rec, err := reg.Create(CreateInput{
			UserID:   "u1",
			MediaIDs: []string{"x", "x", "y"},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"x", "y"}, rec.MediaIDs)
		require.Len(t, rec.MediaMeta, 2)
		assert.Equal(t, "x", rec.MediaMeta[0].ID)
		assert.Equal(t, "y", rec.MediaMeta[1].ID)
	})
}

func TestListNewestFirstAndPartitioned(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		older, err := reg.Create(CreateInput{UserID: "Alice", Name: "first", MediaIDs: []string{"a"}})
		require.NoError(t, err)
		newer, err := reg.Create(CreateInput{UserID: "alice", Name: "second", MediaIDs: []string{"b"}})
		require.NoError(t, err)
		_, err = reg.Create(CreateInput{UserID: "bob", Name: "intruder", MediaIDs: []string{"c"}})
		require.NoError(t, err)

		posts, err := reg.List("ALICE")
		require.NoError(t, err)
		require.Len(t, posts, 2, "bob's post must not leak into alice's partition")
		assert.Equal(t, newer.ID, posts[0].ID)
		assert.Equal(t, older.ID, posts[1].ID)
	})
}

func TestUpdatePatchesAndReprojectsMeta(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		rec, err := reg.Create(CreateInput{
			UserID:   "u1",
			Name:     "trip",
			MediaIDs: []string{"m1", "m2"},
			MediaMeta: []model.MediaMeta{
				{ID: "m1", Title: "keep me"},
			},
		})
		require.NoError(t, err)

		title := "  Summer trip  "
		updated, err := reg.Update("u1", rec.ID, UpdatePatch{Title: &title})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Summer trip", updated.Title)
		assert.Equal(t, "trip", updated.Name, "unpatched fields survive")

		posts, err := reg.List("u1")
		require.NoError(t, err)
		require.Len(t, posts, 1)
		require.Len(t, posts[0].MediaMeta, 2, "one meta entry per media id")
		assert.Equal(t, "keep me", posts[0].MediaMeta[0].Title, "existing entries preserved")
		assert.Empty(t, posts[0].MediaMeta[1].Title, "missing entries backfilled empty")
	})
}

func TestUpdateCannotChangeMediaMembership(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		rec, err := reg.Create(CreateInput{UserID: "u1", MediaIDs: []string{"m1"}})
		require.NoError(t, err)

		updated, err := reg.Update("u1", rec.ID, UpdatePatch{
			MediaMeta: []model.MediaMeta{
				{ID: "m1", Title: "annotated"},
				{ID: "smuggled", Title: "should vanish"},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, []string{"m1"}, updated.MediaIDs)
		require.Len(t, updated.MediaMeta, 1)
		assert.Equal(t, "annotated", updated.MediaMeta[0].Title)
	})
}

func TestUpdateMissingReturnsNilNil(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		name := "x"
		rec, err := reg.Update("u1", "ghost", UpdatePatch{Name: &name})
		require.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestUpdateScopedToUser(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		rec, err := reg.Create(CreateInput{UserID: "alice", MediaIDs: []string{"m1"}})
		require.NoError(t, err)

		name := "hijack"
		got, err := reg.Update("bob", rec.ID, UpdatePatch{Name: &name})
		require.NoError(t, err)
		assert.Nil(t, got, "another user's partition cannot be updated")
	})
}

func TestDeleteIdempotent(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		rec, err := reg.Create(CreateInput{UserID: "u1", MediaIDs: []string{"m1"}})
		require.NoError(t, err)

		require.NoError(t, reg.Delete("u1", rec.ID))
		require.NoError(t, reg.Delete("u1", rec.ID), "second delete is a no-op")

		posts, err := reg.List("u1")
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestNotificationScoping(t *testing.T) {
	backends(t, func(t *testing.T, reg *Registry) {
		var aliceCalls, bobCalls int
		unsubAlice := reg.Subscribe("alice", func() { aliceCalls++ })
		unsubBob := reg.Subscribe("bob", func() { bobCalls++ })
		defer unsubAlice()
		defer unsubBob()

		_, err := reg.Create(CreateInput{UserID: "alice", MediaIDs: []string{"m1"}})
		require.NoError(t, err)

		assert.Equal(t, 1, aliceCalls)
		assert.Zero(t, bobCalls, "bob must not see alice's mutation")

		// Deleting an absent post emits nothing.
		require.NoError(t, reg.Delete("alice", "ghost"))
		assert.Equal(t, 1, aliceCalls)

		unsubAlice()
		_, err = reg.Create(CreateInput{UserID: "alice", MediaIDs: []string{"m2"}})
		require.NoError(t, err)
		assert.Equal(t, 1, aliceCalls, "unsubscribed callbacks stay silent")
	})
}
