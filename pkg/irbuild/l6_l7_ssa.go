// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import (
	"fmt"

	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/ssa"
)

// funcSSA is what L6/L7 compute for one function, kept around so L8's
// cyclomatic-complexity count can reuse the CFG instead of rebuilding it.
type funcSSA struct {
	CFG    *ssa.CFG
	Consts map[string]ir.ConstantValue
}

// BuildL6L7 runs the CFG through dominance, iterated dominance frontier,
// phi placement, SSA renaming, DFG edge emission, and SCCP constant
// propagation (spec §4.4 L6/L7). A LayerInternalError on any step falls
// back to an empty CFG/SSA for this function, flags the document
// degraded, and records a diagnostic rather than aborting the build
// (spec §7).
func BuildL6L7(doc *ir.IRDocument, funcID string, cfg *ssa.CFG, defsPerBlock map[ssa.BlockID]map[string]bool) *funcSSA {
	result := &funcSSA{CFG: cfg}

	defer func() {
		if r := recover(); r != nil {
			doc.Degraded = true
			doc.AddDiagnostic("L6", "error", fmt.Sprintf("ssa construction panicked: %v", r))
			result.CFG = &ssa.CFG{Entry: cfg.Entry, Blocks: map[ssa.BlockID]*ssa.BlockSpec{}, Reachable: map[ssa.BlockID]bool{}}
			result.Consts = map[string]ir.ConstantValue{}
		}
	}()

	dom := ssa.ComputeDominators(cfg)
	df := ssa.ComputeDominanceFrontier(cfg, dom)
	phis := ssa.PlacePhis(cfg, df, defsPerBlock)
	ssaCtx := ssa.RenameVariables(cfg, dom, phis)

	for _, e := range ssa.BuildDFG(ssaCtx, funcID) {
		doc.AddEdge(e)
	}
	for _, p := range ssaCtx.Phis {
		for _, op := range p.Operands {
			doc.AddEdge(ir.Edge{
				SourceID: fmt.Sprintf("%s:def:%s", funcID, op.SSAName),
				TargetID: fmt.Sprintf("%s:phi:b%d:%s", funcID, p.Block, p.Var),
				Kind:     ir.EdgePhi,
			})
		}
	}

	result.Consts = ssa.PropagateConstants(ssaCtx)

	if fn, ok := doc.NodeByID(funcID); ok {
		if fn.Attrs == nil {
			fn.Attrs = map[string]any{}
		}
		constSummary := map[string]string{}
		for k, v := range result.Consts {
			if v.IsConst() {
				val, _ := v.Value()
				constSummary[k] = fmt.Sprintf("%v", val)
			}
		}
		fn.Attrs["constants"] = constSummary
	}

	return result
}
