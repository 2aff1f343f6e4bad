// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/ccf/pkg/ir"
)

// BuildL4 walks each function's body and emits a typed expression tree
// (ASSIGN, CALL, BIN_OP, LITERAL, NAME_LOAD) with parent/child Contains
// edges rooted at the function node (spec §4.4 L4). Only nodes with
// data-flow or call-graph relevance are materialized; surrounding syntax
// (braces, keywords, parens) is skipped.
func BuildL4(doc *ir.IRDocument, res *l1Result, rules LanguageRules, source []byte) {
	for funcID, fnNode := range res.FuncNodes {
		fn, ok := doc.NodeByID(funcID)
		if !ok {
			continue
		}
		walkExpr(doc, rules, source, fnNode, funcID, fn.FQN, 0)
	}
}

func walkExpr(doc *ir.IRDocument, rules LanguageRules, source []byte, n *sitter.Node, parentID, fqnPrefix string, seq int) int {
	if n == nil {
		return seq
	}
	t := n.Type()

	var op ir.ExprOp
	switch {
	case rules.AssignTypes[t]:
		op = ir.ExprAssign
	case rules.CallTypes[t]:
		op = ir.ExprCall
	case rules.BinOpTypes[t]:
		op = ir.ExprBinOp
	case rules.LiteralTypes[t]:
		op = ir.ExprLiteral
	case rules.IdentTypes[t]:
		op = ir.ExprNameLoad
	default:
		for i := 0; i < int(n.ChildCount()); i++ {
			seq = walkExpr(doc, rules, source, n.Child(i), parentID, fqnPrefix, seq)
		}
		return seq
	}

	seq++
	id := ir.NodeID(ir.KindExpr, fqnFor(fqnPrefix, seq), doc.FilePath, span(n))
	doc.AddNode(ir.Node{
		ID: id, Kind: ir.KindExpr, FQN: fqnFor(fqnPrefix, seq), Name: n.Content(source),
		FilePath: doc.FilePath, Span: span(n), ParentID: parentID,
		Attrs: map[string]any{"expr_op": string(op)},
	})
	doc.AddEdge(ir.Edge{SourceID: parentID, TargetID: id, Kind: ir.EdgeContains})

	// LITERAL and NAME_LOAD are leaves; everything else recurses so
	// operands become children of this expression node.
	if op == ir.ExprLiteral || op == ir.ExprNameLoad {
		return seq
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		seq = walkExpr(doc, rules, source, n.Child(i), id, fqnPrefix, seq)
	}
	return seq
}

func fqnFor(prefix string, seq int) string {
	return prefix + ".expr" + strconv.Itoa(seq)
}
