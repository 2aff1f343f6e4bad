// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package changeset

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/kraklabs/ccf/pkg/ir"
)

// GitDetector detects changes between two git revisions using
// `git diff --name-status -M`, which reports renames directly whenever git's
// own similarity heuristic finds one.
type GitDetector struct {
	logger   *slog.Logger
	repoPath string
}

// NewGitDetector creates a git-based change detector rooted at repoPath.
func NewGitDetector(repoPath string, logger *slog.Logger) *GitDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitDetector{logger: logger, repoPath: repoPath}
}

// emptyTreeSHA is git's well-known hash of the empty tree, used as the base
// when comparing against a repository's very first commit.
const emptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Detect computes the ChangeSet between baseRef and headRef. An empty
// baseRef compares against the empty tree (every file is Added); an empty
// headRef defaults to HEAD.
func (g *GitDetector) Detect(baseRef, headRef string) (*ir.ChangeSet, error) {
	if headRef == "" {
		headRef = "HEAD"
	}
	resolvedHead, err := g.resolveRef(headRef)
	if err != nil {
		return nil, fmt.Errorf("resolve head ref: %w", err)
	}

	resolvedBase := emptyTreeSHA
	if baseRef != "" {
		resolvedBase, err = g.resolveRef(baseRef)
		if err != nil {
			return nil, fmt.Errorf("resolve base ref: %w", err)
		}
	}

	out, err := g.runDiff(resolvedBase, resolvedHead)
	if err != nil {
		return nil, fmt.Errorf("run git diff: %w", err)
	}

	cs := ir.NewChangeSet()
	if err := parseNameStatus(out, cs); err != nil {
		return nil, fmt.Errorf("parse diff output: %w", err)
	}

	g.logger.Info("changeset.git.detect",
		"base", resolvedBase, "head", resolvedHead,
		"added", len(cs.Added), "modified", len(cs.Modified),
		"deleted", len(cs.Deleted), "renamed", len(cs.Renamed),
	)
	return cs, nil
}

func (g *GitDetector) resolveRef(ref string) (string, error) {
	cmd := exec.Command("git", "rev-parse", ref)
	cmd.Dir = g.repoPath
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git rev-parse %s: %s", ref, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("git rev-parse %s: %w", ref, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (g *GitDetector) runDiff(base, head string) ([]byte, error) {
	cmd := exec.Command("git", "diff", "--name-status", "-M", base, head) //nolint:gosec // G204: args are resolved SHAs
	cmd.Dir = g.repoPath
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git diff: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("git diff: %w", err)
	}
	return out, nil
}

// IsGitRepository reports whether repoPath is inside a git working tree.
func (g *GitDetector) IsGitRepository() bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = g.repoPath
	return cmd.Run() == nil
}

func parseNameStatus(out []byte, cs *ir.ChangeSet) error {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		status, paths := splitNameStatusLine(line)
		if status == "" || len(paths) == 0 {
			continue
		}
		switch status[0] {
		case 'A':
			cs.MarkAdded(paths[0])
		case 'M':
			cs.MarkModified(paths[0])
		case 'D':
			cs.MarkDeleted(paths[0])
		case 'R':
			if len(paths) >= 2 {
				cs.MarkAsRenamed(paths[0], paths[1])
			}
		case 'C':
			if len(paths) >= 2 {
				cs.MarkAdded(paths[1])
			}
		}
	}
	return scanner.Err()
}

func splitNameStatusLine(line string) (status string, paths []string) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return "", nil
	}
	status = parts[0]
	paths = parts[1:]
	for i, p := range paths {
		paths[i] = unquoteGitPath(p)
	}
	return status, paths
}

func unquoteGitPath(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		u := path[1 : len(path)-1]
		u = strings.ReplaceAll(u, "\\n", "\n")
		u = strings.ReplaceAll(u, "\\t", "\t")
		u = strings.ReplaceAll(u, "\\\\", "\\")
		u = strings.ReplaceAll(u, "\\\"", "\"")
		return u
	}
	return path
}
