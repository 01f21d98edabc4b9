// SPDX-License-Identifier: MIT

// Package model defines post records and their sanitation rules.
package model

import (
	"strings"
	"time"
)

// GuestUserID is the partition used when no authenticated user is present.
const GuestUserID = "guest"

// MediaMeta is the per-media editorial annotation inside a post. There is
// exactly one entry per referenced media id after every read.
type MediaMeta struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Subtitle    string `json:"subtitle"`
	PostFact    string `json:"postFact"`
}

// Record is one user-authored collection of media identifiers.
type Record struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	MediaIDs    []string    `json:"mediaIds"`
	MediaMeta   []MediaMeta `json:"mediaMeta"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.MediaIDs = append([]string(nil), r.MediaIDs...)
	out.MediaMeta = append([]MediaMeta(nil), r.MediaMeta...)
	return &out
}

// NormalizeUserID trims and lowercases a user id, defaulting to guest.
func NormalizeUserID(userID string) string {
	u := strings.ToLower(strings.TrimSpace(userID))
	if u == "" {
		return GuestUserID
	}
	return u
}

// SanitizeText trims free-text input.
func SanitizeText(v string) string {
	return strings.TrimSpace(v)
}

// SanitizeMediaIDs drops empty ids and removes duplicates while keeping
// first-occurrence order.
func SanitizeMediaIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SanitizeMediaMeta projects annotations onto the current media ids:
// entries for unknown ids are pruned, text fields trimmed, and missing
// entries backfilled empty, preserving the order of mediaIDs.
func SanitizeMediaMeta(meta []MediaMeta, mediaIDs []string) []MediaMeta {
	byID := make(map[string]MediaMeta, len(meta))
	for _, entry := range meta {
		if entry.ID == "" {
			continue
		}
		if _, dup := byID[entry.ID]; dup {
			continue
		}
		byID[entry.ID] = entry
	}

	out := make([]MediaMeta, 0, len(mediaIDs))
	for _, id := range mediaIDs {
		entry, ok := byID[id]
		if !ok {
			out = append(out, MediaMeta{ID: id})
			continue
		}
		out = append(out, MediaMeta{
			ID:          id,
			Title:       SanitizeText(entry.Title),
			Description: SanitizeText(entry.Description),
			Subtitle:    SanitizeText(entry.Subtitle),
			PostFact:    SanitizeText(entry.PostFact),
		})
	}
	return out
}

// DisplayLabel returns the human-facing label for a post: title, else
// name, else the fallback.
func DisplayLabel(r *Record, fallback string) string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	if n := strings.TrimSpace(r.Name); n != "" {
		return n
	}
	return fallback
}
