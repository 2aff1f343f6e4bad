// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import (
	"strings"

	"github.com/kraklabs/ccf/pkg/ir"
)

// BuildL8 computes per-function cyclomatic complexity, LOC, and a
// side-effect flag from its CFG (spec §4.4 L8). Cyclomatic complexity
// uses the standard McCabe formula E - N + 2 over the reachable subgraph.
func BuildL8(doc *ir.IRDocument, funcID string, fs *funcSSA) {
	fn, ok := doc.NodeByID(funcID)
	if !ok || fs == nil || fs.CFG == nil {
		return
	}

	edges, nodes := 0, 0
	for b, reachable := range fs.CFG.Reachable {
		if !reachable {
			continue
		}
		nodes++
		if spec, ok := fs.CFG.Blocks[b]; ok {
			edges += len(spec.Successors)
		}
	}
	complexity := edges - nodes + 2
	if complexity < 1 {
		complexity = 1
	}

	// An L4 CALL expression node anywhere in this function's expression
	// tree marks it as side-effecting; cross-file resolution of which
	// callee it targets happens later (C5) and does not change this flag.
	hasCalls := false
	prefix := fn.FQN + "."
	for _, n := range doc.Nodes {
		if n.Kind != ir.KindExpr || n.FilePath != doc.FilePath {
			continue
		}
		if op, _ := n.Attrs["expr_op"].(string); op == string(ir.ExprCall) && strings.HasPrefix(n.FQN, prefix) {
			hasCalls = true
			break
		}
	}

	fn.ControlFlowSummary = &ir.ControlFlowSummary{
		CyclomaticComplexity: complexity,
		LOC:                  fn.Span.EndLine - fn.Span.StartLine + 1,
		HasSideEffects:       hasCalls,
	}
}
