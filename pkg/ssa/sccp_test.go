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

func constEval(v int) func([]ir.ConstantValue) ir.ConstantValue {
	return func(_ []ir.ConstantValue) ir.ConstantValue { return ir.Const(v) }
}

func addEval(inputs []ir.ConstantValue) ir.ConstantValue {
	sum := 0
	for _, in := range inputs {
		v, ok := in.Value()
		if !ok {
			return ir.Bottom
		}
		n, ok := v.(int)
		if !ok {
			return ir.Bottom
		}
		sum += n
	}
	return ir.Const(sum)
}

func TestPropagateConstants_StraightLine(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{
			{Writes: []string{"a"}, Eval: constEval(2)},
			{Reads: []string{"a"}, Writes: []string{"b"}, Eval: addEval},
		}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	ctx := RenameVariables(cfg, dom, nil)

	values := PropagateConstants(ctx)
	a, ok := values["a#1"].Value()
	require.True(t, ok)
	assert.Equal(t, 2, a)
	b, ok := values["b#1"].Value()
	require.True(t, ok)
	assert.Equal(t, 2, b)
}

func TestPropagateConstants_NoEvalIsBottom(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{
			{Writes: []string{"r"}}, // a call — no Eval
		}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	ctx := RenameVariables(cfg, dom, nil)

	values := PropagateConstants(ctx)
	assert.True(t, values["r#1"].IsBottom())
}

func TestPropagateConstants_PhiMeetsEqualConstants(t *testing.T) {
	// Both branches assign x = 5; the phi should resolve to Const(5), not Bottom.
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{{Writes: []string{"x"}, Eval: constEval(5)}}, Successors: []BlockID{1, 2}},
		{ID: 1, Instructions: []Instruction{{Writes: []string{"x"}, Eval: constEval(5)}}, Successors: []BlockID{3}},
		{ID: 2, Successors: []BlockID{3}},
		{ID: 3, Instructions: []Instruction{{Reads: []string{"x"}, Writes: []string{"y"}, Eval: addEval}}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	df := ComputeDominanceFrontier(cfg, dom)
	phis := PlacePhis(cfg, df, map[BlockID]map[string]bool{0: {"x": true}, 1: {"x": true}})
	ctx := RenameVariables(cfg, dom, phis)

	values := PropagateConstants(ctx)
	y, ok := values["y#1"].Value()
	require.True(t, ok, "y must resolve to a known constant once its phi input converges on 5")
	assert.Equal(t, 5, y)
}

func TestPropagateConstants_PhiMeetsDifferentConstantsIsBottom(t *testing.T) {
	blocks := []BlockSpec{
		{ID: 0, Instructions: []Instruction{{Writes: []string{"x"}, Eval: constEval(1)}}, Successors: []BlockID{1, 2}},
		{ID: 1, Instructions: []Instruction{{Writes: []string{"x"}, Eval: constEval(2)}}, Successors: []BlockID{3}},
		{ID: 2, Successors: []BlockID{3}},
		{ID: 3, Instructions: []Instruction{{Reads: []string{"x"}, Writes: []string{"y"}, Eval: addEval}}},
	}
	cfg, err := BuildCFG(blocks, 0)
	require.NoError(t, err)
	dom := ComputeDominators(cfg)
	df := ComputeDominanceFrontier(cfg, dom)
	phis := PlacePhis(cfg, df, map[BlockID]map[string]bool{0: {"x": true}, 1: {"x": true}})
	ctx := RenameVariables(cfg, dom, phis)

	values := PropagateConstants(ctx)
	// The phi's own SSA name should resolve to Bottom (1 != 2).
	phiName := ctx.Phis[0].Result.String()
	assert.True(t, values[phiName].IsBottom())
}
