// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ssa

// PhiPlacement records that variable Var needs a phi node at Block. Operands
// is filled in during renaming: predecessor block ID -> the SSA name of
// the reaching definition from that predecessor, in predecessor-ID order
// (spec §4.4: "phi sources are ordered by predecessor block id").
type PhiPlacement struct {
	Var      string
	Block    BlockID
	Operands []PhiOperand
	// Result is the SSA name assigned to this phi's own definition. It is
	// the zero value until RenameVariables fills it in.
	Result SSAName
}

// PhiOperand is one predecessor-bound source of a phi node.
type PhiOperand struct {
	Pred   BlockID
	SSAName string
}

// PlacePhis computes minimal phi placement for every variable using the
// standard iterated-dominance-frontier algorithm: a phi for v is placed at
// block b only if b is in the dominance frontier of some block that
// defines v (spec invariant: phi minimality, §8 property 6).
//
// defsPerBlock maps each block to the set of variables it defines anywhere
// in its instruction list (order within the block does not matter here —
// only whether a definition exists).
func PlacePhis(cfg *CFG, df DominanceFrontier, defsPerBlock map[BlockID]map[string]bool) []PhiPlacement {
	// defBlocks: variable -> blocks that define it.
	defBlocks := make(map[string]map[BlockID]bool)
	for b, vars := range defsPerBlock {
		if !cfg.Reachable[b] {
			continue
		}
		for v := range vars {
			if defBlocks[v] == nil {
				defBlocks[v] = make(map[BlockID]bool)
			}
			defBlocks[v][b] = true
		}
	}

	var placements []PhiPlacement
	vars := sortedKeys(defBlocks)
	for _, v := range vars {
		hasPhi := make(map[BlockID]bool)
		onWorklist := make(map[BlockID]bool)
		var worklist []BlockID
		for b := range defBlocks[v] {
			worklist = append(worklist, b)
			onWorklist[b] = true
		}
		sortBlockIDs(worklist)

		for len(worklist) > 0 {
			b := worklist[0]
			worklist = worklist[1:]
			for _, d := range df.Of(b) {
				if hasPhi[d] {
					continue
				}
				hasPhi[d] = true
				placements = append(placements, PhiPlacement{Var: v, Block: d})
				if !onWorklist[d] {
					onWorklist[d] = true
					worklist = append(worklist, d)
					sortBlockIDs(worklist)
				}
			}
		}
	}

	// Deterministic order: by block, then by variable name.
	sortPlacements(placements)
	return placements
}

func sortedKeys(m map[string]map[BlockID]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func sortPlacements(p []PhiPlacement) {
	for i := 1; i < len(p); i++ {
		for j := i; j > 0 && greater(p[j-1], p[j]); j-- {
			p[j-1], p[j] = p[j], p[j-1]
		}
	}
}

// greater reports whether a sorts after b under (Block asc, Var asc).
func greater(a, b PhiPlacement) bool {
	if a.Block != b.Block {
		return a.Block > b.Block
	}
	return a.Var > b.Var
}
