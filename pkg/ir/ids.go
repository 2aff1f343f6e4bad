// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// hashID hashes the given parts, joined with a NUL-byte separator, and
// prefixes the result the way the teacher's schema.go prefixes entity IDs
// (e.g. "file:", "fld:", "impl:", "imp:", "typ:").
func hashID(prefix string, parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return prefix + hex.EncodeToString(h.Sum(nil))[:16]
}

// NodeID computes the stable node ID per spec §3:
// id = hash(kind, fqn, file_path, span_start).
func NodeID(kind NodeKind, fqn, filePath string, span Span) string {
	return hashID("node:", string(kind), fqn, filePath, fmt.Sprintf("%d:%d", span.StartLine, span.StartCol))
}

// FileID computes the stable ID for a file node.
func FileID(path string) string {
	return hashID("file:", path)
}

// ImportID computes the stable ID for an import statement.
func ImportID(filePath, importPath string) string {
	return hashID("imp:", filePath, importPath)
}
