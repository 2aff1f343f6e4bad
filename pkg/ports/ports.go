// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ports declares the boundary interfaces through which the core
// engine talks to external collaborators: storage backends, LSP-style type
// services, call-graph sinks, and taint-analysis I/O. Spec §6 places every
// concrete implementation of these interfaces out of core scope — vector
// stores, SQL/graph databases, retrieval orchestration, and LLM arbitration
// are consumed only through the interfaces declared here, never imported
// directly by any Cn component.
package ports

import (
	"context"
	"time"
)

// KVStore is the minimal storage port: get/put/delete on opaque byte
// blobs keyed by string. A concrete KVStore might be backed by an
// embedded graph database, a key-value store, or plain files — the core
// engine never knows which.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// FileHashStore persists the last-seen content hash of each file path, the
// substrate the VCS-less change detector (C1) uses to compute a delta
// without git. Implementations may be backed by KVStore, a local file, or
// an external database.
type FileHashStore interface {
	// LoadHashes returns every known path -> content-hash pair.
	LoadHashes(ctx context.Context) (map[string]string, error)
	// SaveHashes persists the given path -> content-hash pairs, replacing
	// any previously stored hash for the same path.
	SaveHashes(ctx context.Context, hashes map[string]string) error
}

// HoverResult is the subset of an LSP hover response the type-service port
// exposes to L3 (LSP Enrichment).
type HoverResult struct {
	Type          string
	Documentation string
}

// DefinitionResult is the subset of an LSP go-to-definition response the
// type-service port exposes to L3/L9.
type DefinitionResult struct {
	FilePath string
	Line     int
	Col      int
}

// TypeService is the external language-server-protocol collaborator L3
// queries for type and definition information. Calls are cache-keyed on
// file_path + content_hash + line + col by the caller, so a TypeService
// implementation need not memoize itself.
type TypeService interface {
	Hover(ctx context.Context, filePath string, line, col int) (HoverResult, error)
	Definition(ctx context.Context, filePath string, line, col int) (DefinitionResult, error)
}

// CallGraphEdge is one projected call-graph edge handed to an external
// call-graph sink by C7 (Symbol Graph Projector).
type CallGraphEdge struct {
	CallerID string
	CalleeID string
	FilePath string
	Line     int
}

// CallGraphSink receives the projected call graph for external storage or
// indexing; the core engine never queries it back.
type CallGraphSink interface {
	WriteEdges(ctx context.Context, edges []CallGraphEdge) error
}

// TaintInput is the MessagePack-encoded blob contract C8 reads its atom
// catalog (sources/sinks/sanitizers/propagators) from.
type TaintInput interface {
	LoadAtoms(ctx context.Context) ([]byte, error)
}

// TaintOutput is the MessagePack-encoded blob contract C8 writes its
// discovered taint paths to.
type TaintOutput interface {
	WritePaths(ctx context.Context, encoded []byte) error
}

// Clock abstracts wall-clock reads so callers that stamp CacheEntry.StoredAt
// or pipeline run timestamps can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
