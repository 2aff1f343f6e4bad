// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package changeset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/ports"
)

// FileInfo describes one file discovered on disk during a VCS-less scan.
type FileInfo struct {
	Path     string // repo-relative
	FullPath string
}

// HashDetector detects changes by comparing current file content hashes
// against hashes stored from the previous run. Works without git — the
// only detection strategy available for an unversioned tree (spec §4.1).
type HashDetector struct {
	logger *slog.Logger
	store  ports.FileHashStore
}

// NewHashDetector creates a hash-based change detector backed by store.
func NewHashDetector(store ports.FileHashStore, logger *slog.Logger) *HashDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &HashDetector{logger: logger, store: store}
}

// Detect compares currentFiles against previously stored hashes and returns
// the resulting ChangeSet. Renames are not detected directly here — call
// DetectRenames on the result to promote Added/Deleted pairs with
// sufficiently similar paths and close sizes into Renamed entries.
func (hd *HashDetector) Detect(ctx context.Context, currentFiles []FileInfo) (*ir.ChangeSet, error) {
	stored, err := hd.store.LoadHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored hashes: %w", err)
	}

	current := make(map[string]string, len(currentFiles))
	cs := ir.NewChangeSet()

	for _, f := range currentFiles {
		hash, err := hashFile(f.FullPath)
		if err != nil {
			hd.logger.Warn("changeset.hash.read_failed", "path", f.Path, "err", err)
			continue
		}
		current[f.Path] = hash

		storedHash, existed := stored[f.Path]
		switch {
		case !existed:
			cs.MarkAdded(f.Path)
		case storedHash != hash:
			cs.MarkModified(f.Path)
		}
	}

	for path := range stored {
		if _, stillPresent := current[path]; !stillPresent {
			cs.MarkDeleted(path)
		}
	}

	if err := hd.store.SaveHashes(ctx, current); err != nil {
		return nil, fmt.Errorf("save hashes: %w", err)
	}

	hd.logger.Info("changeset.hash.detect",
		"added", len(cs.Added), "modified", len(cs.Modified), "deleted", len(cs.Deleted),
	)
	return cs, nil
}

func hashFile(fullPath string) (string, error) {
	content, err := os.ReadFile(fullPath) //nolint:gosec // G304: path supplied by repository scan
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}
