// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	FieldEvent     = "event"
	FieldComponent = "component"

	// Identity fields
	FieldMediaID = "media_id"
	FieldPostID  = "post_id"
	FieldUserID  = "user_id"

	// Media fields
	FieldSource   = "source"
	FieldURL      = "url"
	FieldFileName = "file_name"
	FieldMimeType = "mime_type"
	FieldHandle   = "handle"

	// Path fields
	FieldPath    = "path"
	FieldBackend = "backend"
)
