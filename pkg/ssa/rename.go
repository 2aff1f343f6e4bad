// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ssa

import "fmt"

// SSAName is one versioned occurrence of a source variable.
type SSAName struct {
	Var     string
	Version int
}

func (n SSAName) String() string { return fmt.Sprintf("%s#%d", n.Var, n.Version) }

// RenamedInstruction is Instruction after SSA renaming: every read and
// write has been resolved to a specific SSAName.
type RenamedInstruction struct {
	Reads  []SSAName
	Writes []SSAName
}

// SSAContext is the full output of build_ssa: the CFG and dominator tree
// it was computed over, the phi placements (with operands filled), the
// renamed instruction stream per block, and the full record of every
// version ever assigned to each variable.
type SSAContext struct {
	CFG           *CFG
	Dom           *DominatorTree
	Phis          []PhiPlacement
	Blocks        map[BlockID][]RenamedInstruction
	VersioningMap map[string][]int
}

// undefinedVersion is used as the SSA version of a read that has no
// reaching definition within the function (an implicit parameter/global).
const undefinedVersion = 0

// RenameVariables performs one pre-order dominator-tree traversal of cfg,
// assigning a fresh SSA version to every definition (including phi
// placements) and binding every read to the version currently live on
// that variable's stack, per spec §4.4's "one pass in pre-order of the
// dominance tree" / "per-variable version stack" / "phi operands assigned
// by scanning successors".
func RenameVariables(cfg *CFG, dom *DominatorTree, phis []PhiPlacement) *SSAContext {
	ctx := &SSAContext{
		CFG:           cfg,
		Dom:           dom,
		Blocks:        make(map[BlockID][]RenamedInstruction),
		VersioningMap: make(map[string][]int),
	}

	phisByBlock := make(map[BlockID][]*PhiPlacement)
	ctx.Phis = make([]PhiPlacement, len(phis))
	copy(ctx.Phis, phis)
	for i := range ctx.Phis {
		p := &ctx.Phis[i]
		phisByBlock[p.Block] = append(phisByBlock[p.Block], p)
	}

	stacks := make(map[string][]int)
	counters := make(map[string]int)

	nextVersion := func(v string) int {
		counters[v]++
		ver := counters[v]
		ctx.VersioningMap[v] = append(ctx.VersioningMap[v], ver)
		return ver
	}
	push := func(v string, ver int) { stacks[v] = append(stacks[v], ver) }
	top := func(v string) int {
		s := stacks[v]
		if len(s) == 0 {
			return undefinedVersion
		}
		return s[len(s)-1]
	}
	pop := func(v string) { stacks[v] = stacks[v][:len(stacks[v])-1] }

	var renameBlock func(b BlockID)
	renameBlock = func(b BlockID) {
		var pushedVars []string

		// 1. phi definitions at this block get a fresh version first.
		blockPhis := phisByBlock[b]
		sortPhiPtrs(blockPhis)
		for _, p := range blockPhis {
			ver := nextVersion(p.Var)
			push(p.Var, ver)
			pushedVars = append(pushedVars, p.Var)
			p.Result = SSAName{Var: p.Var, Version: ver}
		}

		// 2. the block's own instructions, in program order.
		spec := cfg.Blocks[b]
		renamed := make([]RenamedInstruction, len(spec.Instructions))
		for i, instr := range spec.Instructions {
			ri := RenamedInstruction{}
			for _, r := range instr.Reads {
				ri.Reads = append(ri.Reads, SSAName{Var: r, Version: top(r)})
			}
			for _, w := range instr.Writes {
				ver := nextVersion(w)
				push(w, ver)
				pushedVars = append(pushedVars, w)
				ri.Writes = append(ri.Writes, SSAName{Var: w, Version: ver})
			}
			renamed[i] = ri
		}
		ctx.Blocks[b] = renamed

		// 3. bind phi operands for every successor (including a
		// self-loop back to b), using the version live right now.
		succs := append([]BlockID(nil), spec.Successors...)
		sortBlockIDs(succs)
		for _, s := range succs {
			for _, p := range phisByBlock[s] {
				p.Operands = append(p.Operands, PhiOperand{
					Pred:    b,
					SSAName: SSAName{Var: p.Var, Version: top(p.Var)}.String(),
				})
			}
		}

		// 4. recurse into dominator-tree children.
		for _, c := range dom.Children(b) {
			renameBlock(c)
		}

		// 5. restore the stacks to this block's entry state.
		for i := len(pushedVars) - 1; i >= 0; i-- {
			pop(pushedVars[i])
		}
	}

	renameBlock(cfg.Entry)

	// Phi operand lists were appended in traversal order but the
	// traversal visits predecessors in no particular order relative to
	// each other; sort each phi's operands by predecessor ID for the
	// determinism invariant (spec §4.4).
	for i := range ctx.Phis {
		sortOperands(ctx.Phis[i].Operands)
	}

	return ctx
}

func sortPhiPtrs(p []*PhiPlacement) {
	for i := 1; i < len(p); i++ {
		for j := i; j > 0 && p[j-1].Var > p[j].Var; j-- {
			p[j-1], p[j] = p[j], p[j-1]
		}
	}
}

func sortOperands(ops []PhiOperand) {
	for i := 1; i < len(ops); i++ {
		for j := i; j > 0 && ops[j-1].Pred > ops[j].Pred; j-- {
			ops[j-1], ops[j] = ops[j], ops[j-1]
		}
	}
}
