// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/langparse"
)

// BuildL2 scans every identifier leaf under root and records it in the
// document's occurrence index, classifying it def/write/read by its
// syntactic position (spec §4.4 L2). A name on the left of an assignment
// node, or the declaration name field of a function/class, is def/write;
// everything else is a read.
func BuildL2(doc *ir.IRDocument, pr *langparse.ParseResult, lang langparse.Language) {
	rules, ok := RulesFor(lang)
	if !ok || pr.Tree == nil {
		return
	}
	source := pr.Source

	declNames := make(map[*sitter.Node]bool)
	var markDecls func(n *sitter.Node)
	markDecls = func(n *sitter.Node) {
		if n == nil {
			return
		}
		t := n.Type()
		if rules.FunctionTypes[t] || rules.MethodTypes[t] || rules.ClassTypes[t] {
			if nm := n.ChildByFieldName(rules.NameField); nm != nil {
				declNames[nm] = true
			}
		}
		if rules.AssignTypes[t] {
			if lhs := n.ChildByFieldName("left"); lhs != nil {
				declNames[lhs] = true
				// A single target wrapped in a list node (Go's expression_list
				// on := and =) is itself the assigned name.
				if lhs.NamedChildCount() == 1 {
					declNames[lhs.NamedChild(0)] = true
				}
			}
			if nm := n.ChildByFieldName("name"); nm != nil {
				declNames[nm] = true
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			markDecls(n.Child(i))
		}
	}
	markDecls(pr.Tree.RootNode())

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if rules.IdentTypes[n.Type()] {
			kind := ir.RefRead
			if declNames[n] {
				kind = ir.RefDef
			}
			s := span(n)
			doc.Occurrences.Add(n.Content(source), ir.Occurrence{
				Identifier: n.Content(source),
				Line:       s.StartLine,
				Col:        s.StartCol,
				Reference:  kind,
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(pr.Tree.RootNode())
}
