// SPDX-License-Identifier: MIT

// Package integration exercises both registries together the way the UI
// layer does: ingest a batch of URLs, assemble a post from the resulting
// ids, and read it back through the other registry.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstash/vidstash/internal/media"
	mediastore "github.com/vidstash/vidstash/internal/media/store"
	"github.com/vidstash/vidstash/internal/post"
	poststore "github.com/vidstash/vidstash/internal/post/store"
)

func TestIngestAndPublishScenario(t *testing.T) {
	for _, backend := range []string{"badger", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			st, err := mediastore.Open(backend, dir)
			require.NoError(t, err)
			defer func() { _ = st.Close() }()

			mediaReg, err := media.NewRegistry(st, filepath.Join(dir, "handles"))
			require.NoError(t, err)
			defer func() { _ = mediaReg.Close() }()

			pst, err := poststore.NewFileStore(filepath.Join(dir, "posts.json"))
			require.NoError(t, err)
			defer func() { _ = pst.Close() }()
			postReg := post.NewRegistry(pst)

			// Paste three URLs, one of them a duplicate.
			urls := []string{"https://a/v1.mp4", "https://a/v1.mp4", "https://b/v2.mp4"}
			ids := make([]string, 0, len(urls))
			for _, u := range urls {
				rec, err := mediaReg.IngestRemote(ctx, u, "u1")
				require.NoError(t, err)
				ids = append(ids, rec.ID)
			}

			resolved, err := mediaReg.GetBatch(ctx, ids, "u1")
			require.NoError(t, err)
			unique := make(map[string]struct{})
			for _, rec := range resolved {
				unique[rec.ID] = struct{}{}
			}
			assert.Len(t, unique, 2, "duplicate URL collapses to one record")

			created, err := postReg.Create(post.CreateInput{
				UserID:   "u1",
				Name:     "trip",
				MediaIDs: ids,
			})
			require.NoError(t, err)

			posts, err := postReg.List("u1")
			require.NoError(t, err)
			require.Len(t, posts, 1)
			assert.Equal(t, created.ID, posts[0].ID)
			assert.Len(t, posts[0].MediaIDs, 2)
			assert.Len(t, posts[0].MediaMeta, 2)

			// Every referenced media resolves to a playable source.
			for _, id := range posts[0].MediaIDs {
				rec, err := mediaReg.Get(ctx, id)
				require.NoError(t, err)
				require.NotNil(t, rec)
				src, err := mediaReg.ResolveSource(ctx, rec)
				require.NoError(t, err)
				assert.NotEmpty(t, src)
			}
		})
	}
}
