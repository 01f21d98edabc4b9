// SPDX-License-Identifier: MIT

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUserID(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUserID("  Alice "))
	assert.Equal(t, GuestUserID, NormalizeUserID(""))
	assert.Equal(t, GuestUserID, NormalizeUserID("   "))
}

func TestSanitizeMediaIDs(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, SanitizeMediaIDs([]string{"x", "x", "y"}))
	assert.Equal(t, []string{"b", "a"}, SanitizeMediaIDs([]string{"b", "", "a", "b"}))
	assert.Empty(t, SanitizeMediaIDs([]string{"", "  "}))
}

func TestSanitizeMediaMetaProjection(t *testing.T) {
	mediaIDs := []string{"m1", "m2", "m3"}
	meta := []MediaMeta{
		{ID: "m2", Title: "  two  ", Subtitle: "sub"},
		{ID: "ghost", Title: "orphaned"},
	}

	out := SanitizeMediaMeta(meta, mediaIDs)

	assert.Len(t, out, 3, "exactly one entry per media id")
	assert.Equal(t, "m1", out[0].ID)
	assert.Empty(t, out[0].Title, "missing entries are backfilled empty")
	assert.Equal(t, "two", out[1].Title, "text fields are trimmed")
	assert.Equal(t, "sub", out[1].Subtitle)
	assert.Equal(t, "m3", out[2].ID)
	for _, entry := range out {
		assert.NotEqual(t, "ghost", entry.ID, "unknown ids are pruned")
	}
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Trip", DisplayLabel(&Record{Title: " Trip "}, "Untitled post"))
	assert.Equal(t, "trip", DisplayLabel(&Record{Name: "trip"}, "Untitled post"))
	assert.Equal(t, "Untitled post", DisplayLabel(&Record{}, "Untitled post"))
}
