// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenameVariables_Diamond builds:
//
//	b0: x = 1
//	b0 -> b1, b2
//	b1: x = 2
//	b2: (no write)
//	b1, b2 -> b3
//	b3: y = x   (phi(x) expected here)
func TestRenameVariables_Diamond(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{{Writes: []string{"x"}}}, Successors: []BlockID{1, 2}},
		{ID: 1, Instructions: []Instruction{{Writes: []string{"x"}}}, Successors: []BlockID{3}},
		{ID: 2, Successors: []BlockID{3}},
		{ID: 3, Instructions: []Instruction{{Reads: []string{"x"}, Writes: []string{"y"}}}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)

	dom := ComputeDominators(cfg)
	df := ComputeDominanceFrontier(cfg, dom)
	defs := map[BlockID]map[string]bool{0: {"x": true}, 1: {"x": true}}
	phis := PlacePhis(cfg, df, defs)
	require.Len(t, phis, 1)
	assert.Equal(t, "x", phis[0].Var)
	assert.Equal(t, BlockID(3), phis[0].Block)

	ctx := RenameVariables(cfg, dom, phis)

	require.Len(t, ctx.Phis, 1)
	phi := ctx.Phis[0]
	require.Len(t, phi.Operands, 2, "phi(x) at b3 must have one operand per predecessor")
	// Operands are ordered by predecessor block id (1 then 2).
	assert.Equal(t, BlockID(1), phi.Operands[0].Pred)
	assert.Equal(t, BlockID(2), phi.Operands[1].Pred)
	assert.Equal(t, "x#2", phi.Operands[0].SSAName, "b1 redefines x to version 2 before reaching b3")
	assert.Equal(t, "x#1", phi.Operands[1].SSAName, "b2 never redefines x, so it carries b0's version 1")

	// b3's read of x resolves to the phi's own result, not either branch directly.
	b3 := ctx.Blocks[3]
	require.Len(t, b3, 1)
	require.Len(t, b3[0].Reads, 1)
	assert.Equal(t, phi.Result, b3[0].Reads[0])
}

// TestRenameVariables_SelfLoop exercises the back-edge phi-operand path:
//
//	b0: i = 0
//	b0 -> b1
//	b1: i = i + 1   (phi(i) at b1, fed by b0 and by b1 itself)
//	b1 -> b1, b2
func TestRenameVariables_SelfLoop(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{{Writes: []string{"i"}}}, Successors: []BlockID{1}},
		{ID: 1, Instructions: []Instruction{{Reads: []string{"i"}, Writes: []string{"i"}}}, Successors: []BlockID{1, 2}},
		{ID: 2},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)

	dom := ComputeDominators(cfg)
	df := ComputeDominanceFrontier(cfg, dom)
	defs := map[BlockID]map[string]bool{0: {"i": true}, 1: {"i": true}}
	phis := PlacePhis(cfg, df, defs)
	require.Len(t, phis, 1)
	assert.Equal(t, BlockID(1), phis[0].Block)

	ctx := RenameVariables(cfg, dom, phis)
	phi := ctx.Phis[0]
	require.Len(t, phi.Operands, 2)
	assert.Equal(t, BlockID(0), phi.Operands[0].Pred)
	assert.Equal(t, BlockID(1), phi.Operands[1].Pred)
	assert.Equal(t, "i#1", phi.Operands[0].SSAName, "entry defines i#1 before the loop")

	// b1's own instruction reads the phi result, then writes a fresh version
	// that the back-edge operand must carry forward.
	b1 := ctx.Blocks[1]
	require.Len(t, b1, 1)
	assert.Equal(t, phi.Result, b1[0].Reads[0])
	assert.Equal(t, b1[0].Writes[0].String(), phi.Operands[1].SSAName, "the back-edge phi operand is the loop body's own new definition")
}

func TestRenameVariables_UndefinedReadIsParameter(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{{Reads: []string{"arg"}, Writes: []string{"y"}}}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	ctx := RenameVariables(cfg, dom, nil)

	b0 := ctx.Blocks[0]
	assert.Equal(t, 0, b0[0].Reads[0].Version, "a read with no reaching definition stays at the undefined/parameter version")
}
