// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ssa implements the SSA/CFG/DFG Engine (C6): control-flow graph
// construction, dominance (iterative Cooper-Harvey-Kennedy), iterated
// dominance frontiers, phi placement, SSA renaming, and SCCP constant
// propagation. Every exported entry point owns its input and output
// graphs outright — there is no package-level mutable state — so calls
// from concurrent per-file pipeline workers never interfere with each
// other (spec §4.6).
package ssa

import (
	"fmt"
	"sort"

	"github.com/kraklabs/ccf/pkg/ir"
)

// BlockID identifies a basic block within one function's CFG.
type BlockID int

// Instruction is one data-flow-relevant operation inside a basic block: a
// set of variable reads followed by (at most) one variable write, in
// program order. Non-assignment statements (a bare call, a return with no
// bound name) have an empty Writes.
type Instruction struct {
	Reads  []string
	Writes []string // 0 or 1 entries; >1 reserved for tuple-assignment languages
	// Eval computes this instruction's constant contribution for SCCP
	// from its reads' current lattice values, in Reads order. Left nil
	// for instructions with no compile-time-evaluable semantics (a call,
	// an I/O op) — those always resolve to ir.Bottom once reached, per
	// L7's per-language evaluation rules supplied by the IR builder.
	Eval func(inputs []ir.ConstantValue) ir.ConstantValue
}

// BlockSpec is the caller-supplied description of one basic block: its
// instructions in program order and its successor blocks. L5 (CFG layer)
// constructs a BlockSpec per extracted basic block from the AST.
type BlockSpec struct {
	ID           BlockID
	Instructions []Instruction
	Successors   []BlockID
}

// CFG is a function's control-flow graph: a fixed set of basic blocks
// reachable (or not) from Entry, plus a computed predecessor map.
type CFG struct {
	Entry       BlockID
	Blocks      map[BlockID]*BlockSpec
	Order       []BlockID // declaration order, for deterministic iteration
	Preds       map[BlockID][]BlockID
	Reachable   map[BlockID]bool
}

// BuildCFG validates and wraps a caller-supplied block list into a CFG,
// computing predecessors and reachability from entry. Successors that
// reference an unknown block ID are an error — every block must be
// described by a BlockSpec.
func BuildCFG(blocks []BlockSpec, entry BlockID) (*CFG, error) {
	cfg := &CFG{
		Entry:  entry,
		Blocks: make(map[BlockID]*BlockSpec, len(blocks)),
		Preds:  make(map[BlockID][]BlockID),
	}
	for i := range blocks {
		b := blocks[i]
		if _, exists := cfg.Blocks[b.ID]; exists {
			return nil, fmt.Errorf("duplicate block id %d", b.ID)
		}
		cfg.Blocks[b.ID] = &b
		cfg.Order = append(cfg.Order, b.ID)
	}
	if _, ok := cfg.Blocks[entry]; !ok {
		return nil, fmt.Errorf("entry block %d not present", entry)
	}
	for _, b := range cfg.Blocks {
		for _, succ := range b.Successors {
			if _, ok := cfg.Blocks[succ]; !ok {
				return nil, fmt.Errorf("block %d has unknown successor %d", b.ID, succ)
			}
			cfg.Preds[succ] = append(cfg.Preds[succ], b.ID)
		}
	}
	for _, preds := range cfg.Preds {
		sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })
	}
	cfg.Reachable = reachableFrom(cfg, entry)
	return cfg, nil
}

func reachableFrom(cfg *CFG, entry BlockID) map[BlockID]bool {
	seen := map[BlockID]bool{entry: true}
	stack := []BlockID{entry}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, succ := range cfg.Blocks[cur].Successors {
			if !seen[succ] {
				seen[succ] = true
				stack = append(stack, succ)
			}
		}
	}
	return seen
}

// ReversePostorder returns cfg's reachable blocks in reverse postorder from
// Entry — the traversal order the dominance computation and SCCP worklist
// both rely on for fast convergence.
func (cfg *CFG) ReversePostorder() []BlockID {
	visited := make(map[BlockID]bool)
	var postorder []BlockID
	var visit func(BlockID)
	visit = func(b BlockID) {
		if visited[b] {
			return
		}
		visited[b] = true
		succs := append([]BlockID(nil), cfg.Blocks[b].Successors...)
		sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
		for _, s := range succs {
			visit(s)
		}
		postorder = append(postorder, b)
	}
	visit(cfg.Entry)

	rpo := make([]BlockID, len(postorder))
	for i, b := range postorder {
		rpo[len(postorder)-1-i] = b
	}
	return rpo
}
