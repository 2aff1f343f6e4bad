// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package symgraph implements the Symbol Graph Projector (C7): it walks
// IRDocuments into a lightweight Symbol/Relation graph suitable for
// downstream indexing, the same shape the teacher's pkg/ingestion
// datalog.go projects its IR into CozoDB relations, kept here as an
// in-memory struct instead of a datalog/CozoDB sink per the
// storage-is-an-external-port boundary (spec §4.7, §6).
package symgraph

import (
	"strings"

	"github.com/kraklabs/ccf/pkg/ir"
)

// Symbol is one projected entity: a file, class, function, method, field,
// or variable, carrying the ranking signals downstream search/ranking
// consumers need without re-walking the IR.
type Symbol struct {
	ID             string
	Kind           string
	FQN            string
	Name           string
	RepoID         string
	SnapshotID     string
	ParentID       string
	Span           ir.Span
	IsPublic       bool
	IsExported     bool
	CallCount      int
	ImportCount    int
	ReferenceCount int
}

// RelationKind mirrors ir.EdgeKind but is scoped to this package's output
// contract so callers are not coupled to the IR layer's edge vocabulary.
type RelationKind string

// Relation is one directed edge between two projected symbols.
type Relation struct {
	ID       string
	Kind     RelationKind
	SourceID string
	TargetID string
}

// Graph is the full projection of one or more IRDocuments.
type Graph struct {
	Symbols   map[string]*Symbol
	Relations []Relation
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Symbols: make(map[string]*Symbol)}
}

// ExportMap optionally supplies an explicit module-export set
// (fqn -> exported) for is_exported; when nil, a conservative heuristic
// (top-level public class/function) is used instead (spec §4.7).
type ExportMap map[string]bool

// Project walks doc and merges its symbols/relations into g. repoID and
// snapshotID are stamped onto every symbol produced from this document.
func Project(g *Graph, doc *ir.IRDocument, repoID, snapshotID string, exports ExportMap) {
	for _, n := range doc.Nodes {
		if !isProjectable(n.Kind) {
			continue
		}
		sym := &Symbol{
			ID: n.ID, Kind: string(n.Kind), FQN: n.FQN, Name: n.Name,
			RepoID: repoID, SnapshotID: snapshotID, ParentID: n.ParentID,
			Span: n.Span,
		}
		sym.IsPublic = isPublic(doc.Language, n.Name)
		sym.IsExported = isExported(n, doc.Language, exports)
		g.Symbols[sym.ID] = sym
	}

	for _, e := range doc.Edges {
		g.Relations = append(g.Relations, Relation{
			ID: relationID(e), Kind: RelationKind(e.Kind),
			SourceID: e.SourceID, TargetID: e.TargetID,
		})
		switch e.Kind {
		case ir.EdgeCalls:
			if s, ok := g.Symbols[e.TargetID]; ok {
				s.CallCount++
			}
		case ir.EdgeImports:
			if s, ok := g.Symbols[e.SourceID]; ok {
				s.ImportCount++
			}
		case ir.EdgeReferences, ir.EdgeReads, ir.EdgeWrites:
			if s, ok := g.Symbols[e.TargetID]; ok {
				s.ReferenceCount++
			}
		}
	}
}

func relationID(e ir.Edge) string {
	return string(e.Kind) + ":" + e.SourceID + ":" + e.TargetID
}

func isProjectable(k ir.NodeKind) bool {
	switch k {
	case ir.KindFile, ir.KindModule, ir.KindClass, ir.KindFunction, ir.KindMethod, ir.KindField, ir.KindVariable:
		return true
	default:
		return false
	}
}

// isPublic applies the name-based visibility conventions of Python (a
// leading underscore is private) and Go (only a leading capital letter is
// public); every other language defaults to true (visibility
// there is modifier-driven, not name-driven, and the IR does not carry
// modifiers as first-class data yet).
func isPublic(language, name string) bool {
	if name == "" {
		return false
	}
	switch language {
	case "python":
		return !strings.HasPrefix(name, "_")
	case "go":
		return name[0] >= 'A' && name[0] <= 'Z'
	default:
		return true
	}
}

func isExported(n ir.Node, language string, exports ExportMap) bool {
	if exports != nil {
		return exports[n.FQN]
	}
	// Conservative heuristic: a top-level (no parent class) public
	// function/class is exported; nested/private symbols are not.
	if n.Kind != ir.KindClass && n.Kind != ir.KindFunction {
		return false
	}
	return !strings.Contains(n.FQN, "..") && isPublic(language, n.Name) && n.Name[0] != '_'
}
