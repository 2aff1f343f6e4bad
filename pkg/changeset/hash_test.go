// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package changeset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memHashStore is an in-memory ports.FileHashStore for tests.
type memHashStore struct {
	hashes map[string]string
}

func (m *memHashStore) LoadHashes(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.hashes))
	for k, v := range m.hashes {
		out[k] = v
	}
	return out, nil
}

func (m *memHashStore) SaveHashes(ctx context.Context, hashes map[string]string) error {
	m.hashes = hashes
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestHashDetector_FirstRunMarksEverythingAdded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a")

	store := &memHashStore{hashes: map[string]string{}}
	hd := NewHashDetector(store, nil)
	cs, err := hd.Detect(context.Background(), []FileInfo{{Path: "a.go", FullPath: filepath.Join(dir, "a.go")}})
	require.NoError(t, err)
	assert.True(t, cs.Added["a.go"])
}

func TestHashDetector_UnchangedFileProducesNoEvent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a")

	store := &memHashStore{hashes: map[string]string{}}
	hd := NewHashDetector(store, nil)
	files := []FileInfo{{Path: "a.go", FullPath: path}}

	_, err := hd.Detect(context.Background(), files)
	require.NoError(t, err)

	cs, err := hd.Detect(context.Background(), files)
	require.NoError(t, err)
	assert.False(t, cs.Added["a.go"])
	assert.False(t, cs.Modified["a.go"])
}

func TestHashDetector_ContentChangeMarksModified(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a")
	store := &memHashStore{hashes: map[string]string{}}
	hd := NewHashDetector(store, nil)
	files := []FileInfo{{Path: "a.go", FullPath: path}}
	_, err := hd.Detect(context.Background(), files)
	require.NoError(t, err)

	writeFile(t, dir, "a.go", "package a\nfunc f() {}")
	cs, err := hd.Detect(context.Background(), files)
	require.NoError(t, err)
	assert.True(t, cs.Modified["a.go"])
}

func TestHashDetector_RemovedFileMarksDeleted(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a")
	store := &memHashStore{hashes: map[string]string{}}
	hd := NewHashDetector(store, nil)
	_, err := hd.Detect(context.Background(), []FileInfo{{Path: "a.go", FullPath: path}})
	require.NoError(t, err)

	cs, err := hd.Detect(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, cs.Deleted["a.go"])
}
