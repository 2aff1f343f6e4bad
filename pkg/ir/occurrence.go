// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

// ReferenceKind classifies an identifier occurrence.
type ReferenceKind string

const (
	RefDef   ReferenceKind = "def"
	RefRead  ReferenceKind = "read"
	RefWrite ReferenceKind = "write"
)

// Occurrence records one textual appearance of an identifier.
type Occurrence struct {
	Identifier string
	Line       int
	Col        int
	SymbolID   string // set once L5/C5 resolves the identifier; empty until then
	Reference  ReferenceKind
}

// OccurrenceIndex maps identifier text to its occurrences within one file.
// Owned by IRDocument; may be borrowed read-only by symbol-search callers.
type OccurrenceIndex map[string][]Occurrence

// Add appends an occurrence for the given identifier, preserving insertion
// order (callers insert in source-scan order, so the index lists occurrences
// line-by-line).
func (idx OccurrenceIndex) Add(identifier string, occ Occurrence) {
	idx[identifier] = append(idx[identifier], occ)
}
