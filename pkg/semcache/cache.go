// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package semcache implements the Semantic Cache (C2): a content-addressed,
// rename-tolerant disk cache of IRDocument results. A cache key is derived
// from a file's content hash, struct hash, and the run's config hash —
// never its file path — so a file that is renamed without being edited
// still hits the cache (spec §4.2).
package semcache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kraklabs/ccf/pkg/ccferrors"
	"github.com/kraklabs/ccf/pkg/ir"
)

// schemaVersion is bumped whenever CacheEntry's on-disk encoding changes
// incompatibly. A mismatched CACHE_VERSION file forces a full cache wipe on
// next open rather than risking silent corruption.
const schemaVersion = 1

// Stats tracks cache effectiveness for a single process lifetime.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Cache is a disk-backed, content-addressed store of IRDocument results.
// Layout under root:
//
//	root/CACHE_VERSION          schema version marker
//	root/entries/<pfx>/<hash>.bin  gob-encoded CacheEntry, pfx = hash[:2]
//	root/tmp/                   scratch dir for atomic writes
//
// Cache is safe for concurrent use by multiple goroutines within one
// process; cross-process coordination is out of scope (spec §4.2 notes the
// cache is per-run, not a shared service).
type Cache struct {
	root     string
	maxBytes int64 // 0 = unbounded

	mu    sync.Mutex
	stats Stats
	// lru tracks entry keys in most-recently-used order for eviction.
	lru       []string
	sizeBytes int64
}

// Open prepares (creating if necessary) a semantic cache rooted at root.
// maxBytes bounds total on-disk entry size; 0 means unbounded. If the
// stored schema version does not match schemaVersion, Open wipes the cache
// directory and starts fresh rather than risk reading stale entries.
func Open(root string, maxBytes int64) (*Cache, error) {
	if err := os.MkdirAll(filepath.Join(root, "entries"), 0750); err != nil {
		return nil, fmt.Errorf("create cache entries dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "tmp"), 0750); err != nil {
		return nil, fmt.Errorf("create cache tmp dir: %w", err)
	}

	versionPath := filepath.Join(root, "CACHE_VERSION")
	needsWipe := false
	if data, err := os.ReadFile(versionPath); err == nil { //nolint:gosec // G304: fixed path under root
		if string(bytes.TrimSpace(data)) != fmt.Sprintf("%d", schemaVersion) {
			needsWipe = true
		}
	} else if os.IsNotExist(err) {
		needsWipe = true
	} else {
		return nil, fmt.Errorf("read cache version: %w", err)
	}

	c := &Cache{root: root, maxBytes: maxBytes}
	if needsWipe {
		if err := c.wipeEntries(); err != nil {
			return nil, err
		}
		if err := os.WriteFile(versionPath, []byte(fmt.Sprintf("%d", schemaVersion)), 0600); err != nil {
			return nil, fmt.Errorf("write cache version: %w", err)
		}
	}
	return c, nil
}

func (c *Cache) wipeEntries() error {
	entriesDir := filepath.Join(c.root, "entries")
	if err := os.RemoveAll(entriesDir); err != nil {
		return fmt.Errorf("wipe cache entries: %w", err)
	}
	return os.MkdirAll(entriesDir, 0750)
}

func (c *Cache) entryPath(key string) string {
	hash := key
	if i := strings.LastIndexByte(hash, ':'); i >= 0 {
		hash = hash[i+1:]
	}
	prefix := hash
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return filepath.Join(c.root, "entries", prefix, hash+".bin")
}

// Get looks up a cache entry by key (see ir.CacheKey). A returned ok=false
// means a miss; a returned error wraps ccferrors.CacheCorruption and should
// be treated as a miss by the caller, not a fatal condition.
func (c *Cache) Get(key string) (*ir.CacheEntry, bool, error) {
	path := c.entryPath(key)
	data, err := os.ReadFile(path) //nolint:gosec // G304: key is a hash, path derived deterministically
	if err != nil {
		if os.IsNotExist(err) {
			c.recordMiss()
			return nil, false, nil
		}
		return nil, false, &ccferrors.CacheCorruption{Key: key, Err: err}
	}

	var entry ir.CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		c.recordMiss()
		return nil, false, &ccferrors.CacheCorruption{Key: key, Err: err}
	}

	c.recordHit(key)
	return &entry, true, nil
}

// Put stores entry under key, writing via a temp file + rename for
// atomicity, matching the teacher's manifest-persistence idiom.
func (c *Cache) Put(key string, entry *ir.CacheEntry) error {
	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create cache entry dir: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Join(c.root, "tmp"), "entry-*.bin")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write cache temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename cache entry into place: %w", err)
	}

	c.mu.Lock()
	c.sizeBytes += int64(buf.Len())
	c.lru = append(c.lru, key)
	c.mu.Unlock()

	return c.evictIfNeeded()
}

func (c *Cache) recordHit(key string) {
	c.mu.Lock()
	c.stats.Hits++
	c.touchLocked(key)
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

// touchLocked moves key to the most-recently-used end of c.lru. Caller
// must hold c.mu.
func (c *Cache) touchLocked(key string) {
	for i, k := range c.lru {
		if k == key {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			break
		}
	}
	c.lru = append(c.lru, key)
}

// evictIfNeeded removes least-recently-used entries until sizeBytes is
// within maxBytes. A maxBytes of 0 disables eviction.
func (c *Cache) evictIfNeeded() error {
	if c.maxBytes <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.sizeBytes > c.maxBytes && len(c.lru) > 0 {
		oldest := c.lru[0]
		c.lru = c.lru[1:]
		path := c.entryPath(oldest)
		info, statErr := os.Stat(path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("evict cache entry %s: %w", oldest, err)
		}
		if statErr == nil {
			c.sizeBytes -= info.Size()
		}
		c.stats.Evictions++
	}
	return nil
}

// Stats returns a snapshot of the cache's effectiveness counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
