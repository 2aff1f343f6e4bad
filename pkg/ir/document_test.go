// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRDocument_NodeByID(t *testing.T) {
	doc := NewIRDocument("a.go", "go")
	doc.AddNode(Node{ID: "n1", Kind: KindFunction, Name: "Foo"})
	n, ok := doc.NodeByID("n1")
	require.True(t, ok)
	assert.Equal(t, "Foo", n.Name)

	_, ok = doc.NodeByID("missing")
	assert.False(t, ok)
}

func TestIRDocument_NodeByID_InvalidatesOnAppend(t *testing.T) {
	doc := NewIRDocument("a.go", "go")
	doc.AddNode(Node{ID: "n1", Name: "Foo"})
	_, _ = doc.NodeByID("n1") // force the lazy index to build
	doc.AddNode(Node{ID: "n2", Name: "Bar"})
	n, ok := doc.NodeByID("n2")
	require.True(t, ok, "a node added after the lazy index was built must still be found")
	assert.Equal(t, "Bar", n.Name)
}

func TestIRDocument_FunctionsOf(t *testing.T) {
	doc := NewIRDocument("a.go", "go")
	doc.AddNode(Node{ID: "c1", Kind: KindClass, Name: "C"})
	doc.AddNode(Node{ID: "f1", Kind: KindFunction, Name: "F"})
	doc.AddNode(Node{ID: "m1", Kind: KindMethod, Name: "M"})

	fns := doc.FunctionsOf()
	assert.Len(t, fns, 2)
}

func TestIRDocument_EdgesFrom(t *testing.T) {
	doc := NewIRDocument("a.go", "go")
	doc.AddEdge(Edge{SourceID: "a", TargetID: "b", Kind: EdgeCalls})
	doc.AddEdge(Edge{SourceID: "a", TargetID: "c", Kind: EdgeReads})
	doc.AddEdge(Edge{SourceID: "x", TargetID: "b", Kind: EdgeCalls})

	calls := doc.EdgesFrom("a", EdgeCalls)
	require.Len(t, calls, 1)
	assert.Equal(t, "b", calls[0].TargetID)
}

func TestDedupeEdges_FoldsParallelEdgesWithFrequency(t *testing.T) {
	edges := []Edge{
		{SourceID: "a", TargetID: "b", Kind: EdgeCalls},
		{SourceID: "a", TargetID: "b", Kind: EdgeCalls},
		{SourceID: "a", TargetID: "b", Kind: EdgeCalls},
		{SourceID: "a", TargetID: "c", Kind: EdgeCalls},
	}
	out := DedupeEdges(edges)
	require.Len(t, out, 2)
	for _, e := range out {
		if e.TargetID == "b" {
			assert.Equal(t, 3, e.Attrs["frequency"])
		}
	}
}

func TestOccurrenceIndex_PreservesInsertionOrder(t *testing.T) {
	idx := make(OccurrenceIndex)
	idx.Add("x", Occurrence{Identifier: "x", Line: 1, Reference: RefDef})
	idx.Add("x", Occurrence{Identifier: "x", Line: 3, Reference: RefRead})
	idx.Add("x", Occurrence{Identifier: "x", Line: 2, Reference: RefWrite})

	require.Len(t, idx["x"], 3)
	assert.Equal(t, 1, idx["x"][0].Line)
	assert.Equal(t, 3, idx["x"][1].Line)
	assert.Equal(t, 2, idx["x"][2].Line)
}
