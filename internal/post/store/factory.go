// SPDX-License-Identifier: MIT

package store

import "fmt"

// Open creates a Store. backend "file" (default) persists to path;
// "memory" is for tests.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "file", "":
		return NewFileStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown post store backend: %s (supported: file, memory)", backend)
	}
}
