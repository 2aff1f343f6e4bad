// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ssa

import (
	"strings"

	"github.com/kraklabs/ccf/pkg/ir"
)

// undefinedSuffix matches the SSAName.String() rendering of any variable
// still at undefinedVersion — an implicit parameter or global, which SCCP
// treats as an unknown, non-constant input.
const undefinedSuffix = "#0"

// PropagateConstants runs constant propagation to a fixed point over a
// renamed function: each phi's value is the lattice meet of its operands,
// each other definition's value is its instruction's Eval applied to its
// reads' current values (or Bottom, if the instruction declares no
// evaluable semantics). Because every SSA name has exactly one
// definition, propagation only needs to revisit a definition when one of
// its inputs changes — the classic sparse worklist shape — but this
// implementation favors a simple monotonic-descent fixed-point loop over
// explicit work-list bookkeeping; reachable-block scope (cfg.Reachable)
// already prunes dead code from consideration, which is the dominant
// source of SCCP's advantage over naive constant folding. Branch-taken
// edge narrowing (the other half of classic SCCP) is not modeled: the
// generic CFG this package builds on does not expose per-language branch
// condition semantics, only block successor lists (spec §4.6).
func PropagateConstants(ctx *SSAContext) map[string]ir.ConstantValue {
	values := make(map[string]ir.ConstantValue)

	valueOf := func(key string) ir.ConstantValue {
		if strings.HasSuffix(key, undefinedSuffix) {
			return ir.Bottom
		}
		if v, ok := values[key]; ok {
			return v
		}
		return ir.Top
	}

	setValue := func(key string, v ir.ConstantValue) bool {
		cur := valueOf(key)
		if cur.IsBottom() {
			return false
		}
		if cur.String() == v.String() {
			return false
		}
		values[key] = v
		return true
	}

	changed := true
	for changed {
		changed = false

		for i := range ctx.Phis {
			p := &ctx.Phis[i]
			if len(p.Operands) == 0 {
				continue
			}
			acc := ir.Top
			for _, op := range p.Operands {
				acc = ir.Meet(acc, valueOf(op.SSAName))
			}
			if setValue(p.Result.String(), acc) {
				changed = true
			}
		}

		for _, b := range ctx.CFG.Order {
			if !ctx.CFG.Reachable[b] {
				continue
			}
			spec := ctx.CFG.Blocks[b]
			renamed := ctx.Blocks[b]
			for i, instr := range spec.Instructions {
				ri := renamed[i]
				if len(ri.Writes) == 0 {
					continue
				}
				var result ir.ConstantValue
				if instr.Eval == nil {
					result = ir.Bottom
				} else {
					inputs := make([]ir.ConstantValue, len(ri.Reads))
					anyTop := false
					for j, r := range ri.Reads {
						inputs[j] = valueOf(r.String())
						anyTop = anyTop || inputs[j].IsTop()
					}
					if anyTop {
						// An input not yet computed leaves the result at Top,
						// so a later pass can still lower it to a constant.
						result = ir.Top
					} else {
						result = instr.Eval(inputs)
					}
				}
				for _, w := range ri.Writes {
					if setValue(w.String(), result) {
						changed = true
					}
				}
			}
		}
	}

	return values
}
