// SPDX-License-Identifier: MIT

// Package model defines the canonical media record types.
package model

import (
	"strings"
	"time"
)

// Source distinguishes locally uploaded binaries from remote URL references.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// GuestUserID is the partition used when no authenticated user is present.
// Records written before user partitioning existed carry no userId at all;
// they are normalized to this value on read.
const GuestUserID = "guest"

// Record is the canonical entity for one piece of video content.
// The binary blob of a local upload is stored alongside the record but
// never serialized into the record JSON itself.
type Record struct {
	ID          string   `json:"id"`
	Source      Source   `json:"source"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TrimStart   float64  `json:"trimStart"`
	TrimEnd     *float64 `json:"trimEnd"`
	UserID      string   `json:"userId"`

	// Remote only. Dedup key together with UserID.
	OriginalURL string `json:"originalUrl,omitempty"`

	// Local only, immutable descriptive metadata.
	FileName string `json:"fileName,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize enforces read-side invariants on a stored record.
func (r *Record) Normalize() {
	if strings.TrimSpace(r.UserID) == "" {
		r.UserID = GuestUserID
	}
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.TrimEnd != nil {
		v := *r.TrimEnd
		out.TrimEnd = &v
	}
	return &out
}

// Patch carries the whitelisted mutable fields of a record. Nil pointers
// leave the current value untouched. ClearTrimEnd resets TrimEnd to the
// untrimmed state and takes precedence over TrimEnd.
type Patch struct {
	Title        *string
	Description  *string
	TrimStart    *float64
	TrimEnd      *float64
	ClearTrimEnd bool
}

// Apply merges the patch into the record and refreshes UpdatedAt.
func (p Patch) Apply(r *Record, now time.Time) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.TrimStart != nil {
		r.TrimStart = *p.TrimStart
	}
	switch {
	case p.ClearTrimEnd:
		r.TrimEnd = nil
	case p.TrimEnd != nil:
		v := *p.TrimEnd
		r.TrimEnd = &v
	}
	r.UpdatedAt = now
}
