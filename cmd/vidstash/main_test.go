// SPDX-License-Identifier: MIT

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstash/vidstash/internal/post"
	poststore "github.com/vidstash/vidstash/internal/post/store"
)

func TestRunUsageErrors(t *testing.T) {
	t.Setenv("VIDSTASH_DATA_DIR", t.TempDir())

	assert.Equal(t, 2, run(nil), "missing command is a usage error")
	assert.Equal(t, 2, run([]string{"frobnicate", "all"}))
	assert.Equal(t, 0, run([]string{"-version"}))
}

func TestRunPostLifecycle(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIDSTASH_DATA_DIR", dir)
	t.Setenv("VIDSTASH_MEDIA_BACKEND", "sqlite")

	require.Equal(t, 0, run([]string{"-user", "alice", "post", "create", "-name", "trip", "m1", "m2"}))
	require.Equal(t, 1, run([]string{"post", "create"}), "post without media must fail")

	st, err := poststore.NewFileStore(dir + "/posts.json")
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	posts, err := post.NewRegistry(st).List("alice")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "trip", posts[0].Name)
	assert.Equal(t, []string{"m1", "m2"}, posts[0].MediaIDs)

	assert.Equal(t, 0, run([]string{"-user", "alice", "post", "delete", posts[0].ID}))
}

func TestRunMediaIngestURL(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIDSTASH_DATA_DIR", dir)
	t.Setenv("VIDSTASH_MEDIA_BACKEND", "sqlite")

	require.Equal(t, 0, run([]string{"-user", "u1", "media", "ingest-url", "https://a/v1.mp4", "https://a/v1.mp4"}))
	require.Equal(t, 2, run([]string{"media", "ingest-url"}))
	require.Equal(t, 0, run([]string{"media", "list"}))
}
