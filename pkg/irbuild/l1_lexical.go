// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/langparse"
)

// ImportToken is one raw import statement captured by L1, left unresolved
// until C5 maps it to an in-repo module path.
type ImportToken struct {
	NodeID     string
	RawText    string
	Span       ir.Span
}

// l1Result carries L1's output plus the bookkeeping later layers need
// without re-walking the tree.
type l1Result struct {
	ModulePath string
	Imports    []ImportToken
	FuncNodes  map[string]*sitter.Node // node ID -> its AST node, for L4/L5/L8
}

// ModuleFQN derives a node's module-path FQN prefix from its file path
// (spec Scenario A: a/x.go -> "a.x"), stripping the extension and
// replacing path separators with dots.
func ModuleFQN(filePath string) string {
	trimmed := filePath
	if i := strings.LastIndex(trimmed, "."); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.TrimSuffix(trimmed, "/")
	return strings.ReplaceAll(trimmed, "/", ".")
}

func span(n *sitter.Node) ir.Span {
	return ir.Span{
		StartLine: int(n.StartPoint().Row) + 1,
		StartCol:  int(n.StartPoint().Column) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		EndCol:    int(n.EndPoint().Column) + 1,
	}
}

func nodeName(n *sitter.Node, field string, source []byte) string {
	if field == "" {
		return ""
	}
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return c.Content(source)
}

// BuildL1 walks the parsed tree, emitting File/Module/Class/Function/Method
// nodes with Contains/Defines edges and raw import tokens (spec §4.4 L1).
// It never fails: a node type unrecognized by this language's
// LanguageRules is simply not extracted as an entity, but its children are
// still visited so nested declarations are not lost.
func BuildL1(doc *ir.IRDocument, pr *langparse.ParseResult, lang langparse.Language) *l1Result {
	rules, ok := RulesFor(lang)
	res := &l1Result{
		ModulePath: ModuleFQN(doc.FilePath),
		FuncNodes:  make(map[string]*sitter.Node),
	}
	if !ok || pr.Tree == nil {
		return res
	}

	fileID := ir.FileID(doc.FilePath)
	doc.AddNode(ir.Node{
		ID:       fileID,
		Kind:     ir.KindFile,
		FQN:      res.ModulePath,
		Name:     res.ModulePath,
		FilePath: doc.FilePath,
		Span:     span(pr.Tree.RootNode()),
	})

	source := pr.Source
	var walk func(n *sitter.Node, parentID, fqnPrefix string, inClass bool)
	walk = func(n *sitter.Node, parentID, fqnPrefix string, inClass bool) {
		if n == nil {
			return
		}
		t := n.Type()

		switch {
		case rules.ImportTypes[t]:
			res.Imports = append(res.Imports, ImportToken{
				NodeID:  ir.NodeID(ir.KindImport, "", doc.FilePath, span(n)),
				RawText: n.Content(source),
				Span:    span(n),
			})
			return

		case rules.ClassTypes[t]:
			name := nodeName(n, rules.NameField, source)
			if name == "" {
				break
			}
			fqn := fqnPrefix + name
			id := ir.NodeID(ir.KindClass, fqn, doc.FilePath, span(n))
			doc.AddNode(ir.Node{
				ID: id, Kind: ir.KindClass, FQN: fqn, Name: name,
				FilePath: doc.FilePath, Span: span(n), ParentID: parentID,
			})
			doc.AddEdge(ir.Edge{SourceID: parentID, TargetID: id, Kind: ir.EdgeContains})
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i), id, fqn+".", true)
			}
			return

		case rules.MethodTypes[t]:
			addFunctionNode(doc, res, rules, n, source, parentID, fqnPrefix, ir.KindMethod)
			return

		case rules.FunctionTypes[t]:
			kind := ir.KindFunction
			if inClass {
				kind = ir.KindMethod
			}
			addFunctionNode(doc, res, rules, n, source, parentID, fqnPrefix, kind)
			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), parentID, fqnPrefix, inClass)
		}
	}

	modulePrefix := ""
	if res.ModulePath != "" {
		modulePrefix = res.ModulePath + "."
	}
	walk(pr.Tree.RootNode(), fileID, modulePrefix, false)
	return res
}

func addFunctionNode(doc *ir.IRDocument, res *l1Result, rules LanguageRules, n *sitter.Node, source []byte, parentID, fqnPrefix string, kind ir.NodeKind) {
	name := nodeName(n, rules.NameField, source)
	if name == "" {
		return
	}
	fqn := fqnPrefix + name
	if kind == ir.KindMethod && rules.ReceiverField != "" {
		if recv := n.ChildByFieldName(rules.ReceiverField); recv != nil {
			recvType := strings.TrimSpace(recv.Content(source))
			recvType = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(recvType, "("), ")"))
			recvType = strings.TrimPrefix(recvType, "*")
			if i := strings.IndexByte(recvType, ' '); i >= 0 {
				recvType = recvType[i+1:]
			}
			recvType = strings.TrimPrefix(recvType, "*")
			if recvType != "" {
				fqn = fqnPrefix + recvType + "." + name
			}
		}
	}
	id := ir.NodeID(kind, fqn, doc.FilePath, span(n))
	node := ir.Node{
		ID: id, Kind: kind, FQN: fqn, Name: name,
		FilePath: doc.FilePath, Span: span(n), ParentID: parentID,
	}
	doc.AddNode(node)
	doc.AddEdge(ir.Edge{SourceID: parentID, TargetID: id, Kind: ir.EdgeDefines})
	res.FuncNodes[id] = n
}
