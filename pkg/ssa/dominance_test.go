// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamondCFG builds 0 -> 1, 2 ; 1 -> 3 ; 2 -> 3, the textbook shape for
// dominance + phi-placement tests.
func diamondCFG(t *testing.T) *CFG {
	t.Helper()
	cfg, err := BuildCFG([]BlockSpec{
		{ID: 0, Successors: []BlockID{1, 2}},
		{ID: 1, Successors: []BlockID{3}},
		{ID: 2, Successors: []BlockID{3}},
		{ID: 3},
	}, 0)
	require.NoError(t, err)
	return cfg
}

// loopCFG builds 0 -> 1 ; 1 -> 2, 1 (self-loop back-edge) ; 2 is the exit.
func loopCFG(t *testing.T) *CFG {
	t.Helper()
	cfg, err := BuildCFG([]BlockSpec{
		{ID: 0, Successors: []BlockID{1}},
		{ID: 1, Successors: []BlockID{1, 2}},
		{ID: 2},
	}, 0)
	require.NoError(t, err)
	return cfg
}

func TestComputeDominators_Diamond(t *testing.T) {
	cfg := diamondCFG(t)
	dom := ComputeDominators(cfg)

	assert.Equal(t, BlockID(0), dom.Idom[0])
	assert.Equal(t, BlockID(0), dom.Idom[1])
	assert.Equal(t, BlockID(0), dom.Idom[2])
	assert.Equal(t, BlockID(0), dom.Idom[3]) // 3's idom is the join point's common ancestor, 0

	assert.True(t, dom.Dominates(0, 3))
	assert.False(t, dom.Dominates(1, 3))
	assert.False(t, dom.Dominates(2, 3))
	assert.True(t, dom.Dominates(0, 0))
}

func TestComputeDominators_Loop(t *testing.T) {
	cfg := loopCFG(t)
	dom := ComputeDominators(cfg)

	assert.Equal(t, BlockID(0), dom.Idom[1])
	assert.Equal(t, BlockID(1), dom.Idom[2])
	assert.True(t, dom.Dominates(1, 1)) // header dominates itself despite the back-edge
}

func TestComputeDominators_UnreachableExcluded(t *testing.T) {
	cfg, err := BuildCFG([]BlockSpec{
		{ID: 0, Successors: []BlockID{1}},
		{ID: 1},
		{ID: 2},
	}, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	_, ok := dom.Idom[2]
	assert.False(t, ok, "unreachable block must not appear in the dominator tree")
}

func TestDominatorTree_ChildrenAndPreOrder(t *testing.T) {
	cfg := diamondCFG(t)
	dom := ComputeDominators(cfg)

	children := dom.Children(0)
	assert.Equal(t, []BlockID{1, 2, 3}, children)

	order := dom.PreOrder(0)
	assert.Equal(t, BlockID(0), order[0])
	assert.Len(t, order, 4)
}
