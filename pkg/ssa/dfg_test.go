// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ccf/pkg/ir"
)

func TestBuildDFG_SimpleChain(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{
			{Writes: []string{"a"}},
			{Reads: []string{"a"}, Writes: []string{"b"}},
		}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	ctx := RenameVariables(cfg, dom, nil)

	edges := BuildDFG(ctx, "fn1")
	require.NotEmpty(t, edges)

	var sawWriteA, sawReadA bool
	for _, e := range edges {
		if e.Kind == ir.EdgeWrites && e.TargetID == "fn1:def:a#1" {
			sawWriteA = true
		}
		if e.Kind == ir.EdgeReads && e.SourceID == "fn1:def:a#1" {
			sawReadA = true
		}
	}
	assert.True(t, sawWriteA, "instruction 0's write of a must produce an EdgeWrites to its def site")
	assert.True(t, sawReadA, "instruction 1's read of a must produce an EdgeReads from a's def site")
}

func TestBuildDFG_PhiEdges(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{{Writes: []string{"x"}}}, Successors: []BlockID{1, 2}},
		{ID: 1, Instructions: []Instruction{{Writes: []string{"x"}}}, Successors: []BlockID{3}},
		{ID: 2, Successors: []BlockID{3}},
		{ID: 3, Instructions: []Instruction{{Reads: []string{"x"}}}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	df := ComputeDominanceFrontier(cfg, dom)
	phis := PlacePhis(cfg, df, map[BlockID]map[string]bool{0: {"x": true}, 1: {"x": true}})
	ctx := RenameVariables(cfg, dom, phis)

	edges := BuildDFG(ctx, "fn1")
	var phiEdgeCount int
	for _, e := range edges {
		if e.Kind == ir.EdgePhi {
			phiEdgeCount++
		}
	}
	assert.Equal(t, 2, phiEdgeCount, "one EdgePhi per phi operand (2 predecessors)")
}

func TestBuildDFG_DeterministicAcrossCalls(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{{Writes: []string{"a"}}}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	ctx := RenameVariables(cfg, dom, nil)

	edges1 := BuildDFG(ctx, "fn1")
	edges2 := BuildDFG(ctx, "fn1")
	assert.Equal(t, len(edges1), len(edges2), "BuildDFG must be deterministic across repeated calls")
}
