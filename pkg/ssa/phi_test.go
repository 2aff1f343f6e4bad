// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacePhis_Diamond(t *testing.T) {
	cfg := diamondCFG(t)
	dom := ComputeDominators(cfg)
	df := ComputeDominanceFrontier(cfg, dom)

	// x is defined in both branches (1 and 2); y only in block 1. Placement
	// follows the iterated dominance frontier, so both get a phi at 3.
	defs := map[BlockID]map[string]bool{
		1: {"x": true, "y": true},
		2: {"x": true},
	}

	phis := PlacePhis(cfg, df, defs)
	require := func(v string, b BlockID) bool {
		for _, p := range phis {
			if p.Var == v && p.Block == b {
				return true
			}
		}
		return false
	}
	assert.True(t, require("x", 3), "x is defined on both incoming paths, needs a phi at the join")
	assert.True(t, require("y", 3), "3 is in the dominance frontier of y's defining block 1, so y gets a phi there too (its other operand is the undefined version), as i does at the loop header in TestPlacePhis_LoopHeader")
}

func TestPlacePhis_LoopHeader(t *testing.T) {
	cfg := loopCFG(t)
	dom := ComputeDominators(cfg)
	df := ComputeDominanceFrontier(cfg, dom)

	// i is defined only in the loop header (1), but 1 is its own
	// dominance frontier member (back-edge), so it needs a phi.
	defs := map[BlockID]map[string]bool{1: {"i": true}}
	phis := PlacePhis(cfg, df, defs)
	require.Len(t, phis, 1)
	assert.Equal(t, "i", phis[0].Var)
	assert.Equal(t, BlockID(1), phis[0].Block)
}
