// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeID_DeterministicAndSensitiveToEveryInput(t *testing.T) {
	base := NodeID(KindFunction, "pkg.Foo", "pkg/foo.go", Span{StartLine: 1, StartCol: 0})
	again := NodeID(KindFunction, "pkg.Foo", "pkg/foo.go", Span{StartLine: 1, StartCol: 0})
	assert.Equal(t, base, again, "NodeID must be a pure function of its inputs")

	assert.NotEqual(t, base, NodeID(KindMethod, "pkg.Foo", "pkg/foo.go", Span{StartLine: 1, StartCol: 0}))
	assert.NotEqual(t, base, NodeID(KindFunction, "pkg.Bar", "pkg/foo.go", Span{StartLine: 1, StartCol: 0}))
	assert.NotEqual(t, base, NodeID(KindFunction, "pkg.Foo", "pkg/bar.go", Span{StartLine: 1, StartCol: 0}))
	assert.NotEqual(t, base, NodeID(KindFunction, "pkg.Foo", "pkg/foo.go", Span{StartLine: 2, StartCol: 0}))
}

func TestNodeID_IgnoresSpanEndAndText(t *testing.T) {
	a := NodeID(KindFunction, "pkg.Foo", "pkg/foo.go", Span{StartLine: 1, StartCol: 0, EndLine: 5, EndCol: 1})
	b := NodeID(KindFunction, "pkg.Foo", "pkg/foo.go", Span{StartLine: 1, StartCol: 0, EndLine: 99, EndCol: 9})
	assert.Equal(t, a, b, "only span start participates in node identity")
}

func TestFileID_Deterministic(t *testing.T) {
	assert.Equal(t, FileID("a/b.go"), FileID("a/b.go"))
	assert.NotEqual(t, FileID("a/b.go"), FileID("a/c.go"))
}

func TestImportID_Deterministic(t *testing.T) {
	assert.Equal(t, ImportID("a.go", "fmt"), ImportID("a.go", "fmt"))
	assert.NotEqual(t, ImportID("a.go", "fmt"), ImportID("a.go", "os"))
}

func TestCacheKey_ExcludesFilePath(t *testing.T) {
	k1 := CacheKey("content1", "struct1", "config1")
	k2 := CacheKey("content1", "struct1", "config1")
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, CacheKey("content2", "struct1", "config1"))
	assert.NotEqual(t, k1, CacheKey("content1", "struct2", "config1"))
	assert.NotEqual(t, k1, CacheKey("content1", "struct1", "config2"))
}
