// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ssa

import (
	"fmt"

	"github.com/kraklabs/ccf/pkg/ir"
)

// defSiteID returns the node ID standing in for one SSA definition: the
// instruction (or phi) that produced it. idPrefix scopes the ID to the
// enclosing function, matching the ID convention the rest of L6 uses.
func defSiteID(idPrefix string, name SSAName) string {
	if name.Version == undefinedVersion {
		return fmt.Sprintf("%s:param:%s", idPrefix, name.Var)
	}
	return fmt.Sprintf("%s:def:%s", idPrefix, name.String())
}

func instrID(idPrefix string, b BlockID, i int) string {
	return fmt.Sprintf("%s:b%d:i%d", idPrefix, b, i)
}

func phiID(idPrefix string, b BlockID, v string) string {
	return fmt.Sprintf("%s:phi:b%d:%s", idPrefix, b, v)
}

// BuildDFG emits the def-use edge set for a renamed function: EdgeWrites
// from each instruction (or phi) to the SSA name it defines, EdgeReads
// from each SSA name's def site to every instruction that reads it, and
// EdgePhi from each phi's operand def sites to the phi's own definition
// (spec §4.6 "build_dfg").
func BuildDFG(ctx *SSAContext, idPrefix string) []ir.Edge {
	var edges []ir.Edge

	for _, p := range ctx.Phis {
		pid := phiID(idPrefix, p.Block, p.Var)
		edges = append(edges, ir.Edge{
			SourceID: pid,
			TargetID: defSiteID(idPrefix, p.Result),
			Kind:     ir.EdgeWrites,
		})
		for _, op := range p.Operands {
			edges = append(edges, ir.Edge{
				SourceID: fmt.Sprintf("%s:def:%s", idPrefix, op.SSAName),
				TargetID: pid,
				Kind:     ir.EdgePhi,
			})
		}
	}

	for _, b := range ctx.CFG.Order {
		if !ctx.CFG.Reachable[b] {
			continue
		}
		for i, ri := range ctx.Blocks[b] {
			iid := instrID(idPrefix, b, i)
			for _, r := range ri.Reads {
				edges = append(edges, ir.Edge{
					SourceID: defSiteID(idPrefix, r),
					TargetID: iid,
					Kind:     ir.EdgeReads,
				})
			}
			for _, w := range ri.Writes {
				edges = append(edges, ir.Edge{
					SourceID: iid,
					TargetID: defSiteID(idPrefix, w),
					Kind:     ir.EdgeWrites,
				})
			}
		}
	}

	return ir.DedupeEdges(edges)
}
