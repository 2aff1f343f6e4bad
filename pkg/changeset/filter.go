// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package changeset implements the Change Detector (C1): it produces an
// ir.ChangeSet describing what changed between two repository states,
// either from git history or, when no VCS is present, from stored content
// hashes, and filters the result against exclude globs, max file size, and
// a binary-content sniff (spec §4.1).
package changeset

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/ccf/pkg/ir"
)

// FilterConfig bounds which changed paths are eligible for ingestion.
type FilterConfig struct {
	ExcludeGlobs []string
	MaxFileSize  int64 // 0 = no limit
	RepoPath     string
}

// FilterChangeSet drops paths matching an exclude glob, exceeding
// MaxFileSize, or sniffed as binary. A rename whose new path is filtered
// out degrades to a deletion of the old path, mirroring the teacher's
// delta-filtering behavior for renames (spec's supplemented-features
// section).
func FilterChangeSet(cs *ir.ChangeSet, cfg FilterConfig) *ir.ChangeSet {
	out := ir.NewChangeSet()

	for p := range cs.Added {
		if eligible(p, cfg) {
			out.MarkAdded(p)
		}
	}
	for p := range cs.Modified {
		if eligible(p, cfg) {
			out.MarkModified(p)
		}
	}
	for p := range cs.Deleted {
		if included(p, cfg.ExcludeGlobs) {
			out.MarkDeleted(p)
		}
	}
	for oldPath, newPath := range cs.Renamed {
		if eligible(newPath, cfg) {
			out.MarkAsRenamed(oldPath, newPath)
			continue
		}
		if included(oldPath, cfg.ExcludeGlobs) {
			out.MarkDeleted(oldPath)
		}
	}
	return out
}

func eligible(path string, cfg FilterConfig) bool {
	if !included(path, cfg.ExcludeGlobs) {
		return false
	}
	return checkFileEligible(path, cfg)
}

func included(path string, excludeGlobs []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range excludeGlobs {
		if matchesGlob(normalized, pattern) {
			return false
		}
	}
	return true
}

func checkFileEligible(path string, cfg FilterConfig) bool {
	fullPath := filepath.Join(cfg.RepoPath, path)
	info, err := os.Lstat(fullPath)
	if err != nil {
		// Deleted-on-disk-but-still-listed is handled by later stages.
		return true
	}
	if info.Mode()&os.ModeSymlink != 0 || info.IsDir() {
		return false
	}
	if cfg.MaxFileSize > 0 && info.Size() > cfg.MaxFileSize {
		return false
	}
	return !isBinaryFile(fullPath)
}

// isBinaryFile sniffs the first 8KiB of a file for a NUL byte.
func isBinaryFile(fullPath string) bool {
	f, err := os.Open(fullPath) //nolint:gosec // G304: path validated by caller
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	const sniff = 8192
	buf := make([]byte, sniff)
	n, _ := io.ReadFull(f, buf)
	if n <= 0 {
		return false
	}
	return bytes.IndexByte(buf[:n], 0x00) >= 0
}

// matchesGlob matches path against a pattern that may contain "**" to mean
// "any number of path segments". filepath.Match does not support "**", so
// patterns are split on "**" and each segment matched independently.
func matchesGlob(path, pattern string) bool {
	if !strings.Contains(pattern, "**") {
		ok, err := filepath.Match(pattern, path)
		return err == nil && ok
	}
	segments := strings.Split(pattern, "**")
	rest := path
	for i, seg := range segments {
		seg = strings.Trim(seg, "/")
		if seg == "" {
			continue
		}
		idx := strings.Index(rest, seg)
		if idx < 0 {
			return false
		}
		if i == 0 && idx != 0 {
			// leading segment must anchor at the start
			ok, _ := filepath.Match(seg+"*", rest)
			if !ok {
				return false
			}
		}
		rest = rest[idx+len(seg):]
	}
	return true
}
