// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package symgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ccf/pkg/ir"
)

func TestProject_SymbolsAndRankingSignals(t *testing.T) {
	doc := ir.NewIRDocument("pkg/foo.go", "go")
	doc.AddNode(ir.Node{ID: "fn1", Kind: ir.KindFunction, FQN: "pkg.Foo", Name: "Foo"})
	doc.AddNode(ir.Node{ID: "fn2", Kind: ir.KindFunction, FQN: "pkg.bar", Name: "bar"})
	doc.AddNode(ir.Node{ID: "imp1", Kind: ir.KindImport, FQN: "pkg.foo.imports.0"})
	doc.AddEdge(ir.Edge{SourceID: "fn2", TargetID: "fn1", Kind: ir.EdgeCalls})
	doc.AddEdge(ir.Edge{SourceID: "fn2", TargetID: "fn1", Kind: ir.EdgeImports})
	doc.AddEdge(ir.Edge{SourceID: "fn2", TargetID: "fn1", Kind: ir.EdgeReferences})

	g := NewGraph()
	Project(g, doc, "repo1", "snap1", nil)

	require.Contains(t, g.Symbols, "fn1")
	require.Contains(t, g.Symbols, "fn2")
	assert.NotContains(t, g.Symbols, "imp1", "import nodes are not projectable symbols")

	foo := g.Symbols["fn1"]
	assert.Equal(t, 1, foo.CallCount)
	assert.Equal(t, 1, foo.ReferenceCount)
	assert.Equal(t, "repo1", foo.RepoID)
	assert.Equal(t, "snap1", foo.SnapshotID)
	assert.True(t, foo.IsPublic, "Go capitalized name is public")

	bar := g.Symbols["fn2"]
	assert.False(t, bar.IsPublic, "Go lowercase name is not public")
	assert.Equal(t, 1, bar.ImportCount)

	assert.Len(t, g.Relations, 3)
}

func TestProject_PythonVisibilityConvention(t *testing.T) {
	doc := ir.NewIRDocument("pkg/foo.py", "python")
	doc.AddNode(ir.Node{ID: "f1", Kind: ir.KindFunction, FQN: "foo.public_fn", Name: "public_fn"})
	doc.AddNode(ir.Node{ID: "f2", Kind: ir.KindFunction, FQN: "foo._private_fn", Name: "_private_fn"})

	g := NewGraph()
	Project(g, doc, "", "", nil)

	assert.True(t, g.Symbols["f1"].IsPublic)
	assert.False(t, g.Symbols["f2"].IsPublic)
}

func TestProject_ExplicitExportMapOverridesHeuristic(t *testing.T) {
	doc := ir.NewIRDocument("pkg/foo.go", "go")
	doc.AddNode(ir.Node{ID: "f1", Kind: ir.KindFunction, FQN: "pkg.Foo", Name: "Foo"})

	g := NewGraph()
	Project(g, doc, "", "", ExportMap{"pkg.Foo": false})

	assert.False(t, g.Symbols["f1"].IsExported, "an explicit export map always wins over the heuristic")
}

func TestProject_ConservativeExportHeuristic(t *testing.T) {
	doc := ir.NewIRDocument("pkg/foo.go", "go")
	doc.AddNode(ir.Node{ID: "f1", Kind: ir.KindFunction, FQN: "pkg.Foo", Name: "Foo"})
	doc.AddNode(ir.Node{ID: "f2", Kind: ir.KindVariable, FQN: "pkg.x", Name: "x"})

	g := NewGraph()
	Project(g, doc, "", "", nil)

	assert.True(t, g.Symbols["f1"].IsExported, "top-level public function is conservatively exported")
	assert.False(t, g.Symbols["f2"].IsExported, "variables are never exported under the conservative heuristic")
}

func TestProject_MergesAcrossMultipleDocuments(t *testing.T) {
	doc1 := ir.NewIRDocument("a.go", "go")
	doc1.AddNode(ir.Node{ID: "a1", Kind: ir.KindFunction, FQN: "a.Foo", Name: "Foo"})
	doc2 := ir.NewIRDocument("b.go", "go")
	doc2.AddNode(ir.Node{ID: "b1", Kind: ir.KindFunction, FQN: "b.Bar", Name: "Bar"})
	doc2.AddEdge(ir.Edge{SourceID: "b1", TargetID: "a1", Kind: ir.EdgeCalls})

	g := NewGraph()
	Project(g, doc1, "", "", nil)
	Project(g, doc2, "", "", nil)

	assert.Len(t, g.Symbols, 2)
	assert.Equal(t, 1, g.Symbols["a1"].CallCount, "cross-document call edges still update the shared graph's ranking signals")
}
