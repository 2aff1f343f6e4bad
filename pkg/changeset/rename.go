// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package changeset

import (
	"os"
	"strings"

	"github.com/kraklabs/ccf/pkg/ir"
)

// RenameSimilarityThreshold is the minimum Jaccard similarity, over path
// component sets, for an Added/Deleted pair to be promoted to a rename
// when no VCS rename signal is available (Open Question decision recorded
// in DESIGN.md).
const RenameSimilarityThreshold = 0.85

// sizePreFilterRatio is the minimum min(size)/max(size) ratio an
// Added/Deleted pair must clear before path-component similarity is even
// computed (spec §4.1 step 3's "optional ±10% size pre-filter"; mirrors
// original_source's "size_ratio < 0.90 -> skip").
const sizePreFilterRatio = 0.90

// DetectRenames promotes Added/Deleted pairs in cs into Renamed entries
// when their paths are similar enough and their sizes are close. This is
// the fallback used by the VCS-less detection path, which — unlike git —
// has no native rename signal to report (spec §4.1 step 3: Jaccard
// similarity on path components, gated by a ±10% size pre-filter).
//
// repoRoot joins with each repo-relative path to read file content; a
// deleted path's content is read from the previous snapshot directory via
// readDeleted, since the file no longer exists at repoRoot.
func DetectRenames(cs *ir.ChangeSet, repoRoot string, readDeleted func(path string) ([]byte, error)) *ir.ChangeSet {
	if len(cs.Added) == 0 || len(cs.Deleted) == 0 {
		return cs
	}

	addedSizes := make(map[string]int, len(cs.Added))
	for path := range cs.Added {
		content, err := os.ReadFile(joinRepoPath(repoRoot, path)) //nolint:gosec // G304: path from change set
		if err != nil {
			continue
		}
		addedSizes[path] = len(content)
	}

	deletedSizes := make(map[string]int, len(cs.Deleted))
	for path := range cs.Deleted {
		content, err := readDeleted(path)
		if err != nil {
			continue
		}
		deletedSizes[path] = len(content)
	}

	matched := make(map[string]bool) // deleted paths already consumed
	for addedPath, addedSize := range addedSizes {
		addedParts := pathComponents(addedPath)
		bestPath := ""
		bestScore := 0.0
		for deletedPath, deletedSize := range deletedSizes {
			if matched[deletedPath] {
				continue
			}
			if !withinSizeRatio(addedSize, deletedSize) {
				continue
			}
			score := jaccard(addedParts, pathComponents(deletedPath))
			if score > bestScore {
				bestScore = score
				bestPath = deletedPath
			}
		}
		if bestPath != "" && bestScore >= RenameSimilarityThreshold {
			cs.MarkAsRenamed(bestPath, addedPath)
			matched[bestPath] = true
		}
	}
	return cs
}

func joinRepoPath(root, path string) string {
	if root == "" {
		return path
	}
	return root + string(os.PathSeparator) + path
}

// withinSizeRatio reports whether the smaller of a, b is at least
// sizePreFilterRatio of the larger. A zero-size file (or either size
// unknown) skips the pre-filter entirely, since the ratio is meaningless.
func withinSizeRatio(a, b int) bool {
	if a <= 0 || b <= 0 {
		return true
	}
	small, big := a, b
	if small > big {
		small, big = big, small
	}
	return float64(small)/float64(big) >= sizePreFilterRatio
}

// pathComponents tokenizes a repo-relative path into the set of its
// distinct path components (spec §4.1 step 3's "Jaccard similarity on
// path components"; grounded on original_source's
// `_filename_similarity`, which does `set(Path(path).parts)`).
func pathComponents(path string) map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			set[part] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
