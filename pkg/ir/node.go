// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

// NodeKind is the closed set of IR node kinds.
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindModule    NodeKind = "module"
	KindClass     NodeKind = "class"
	KindFunction  NodeKind = "function"
	KindMethod    NodeKind = "method"
	KindField     NodeKind = "field"
	KindParameter NodeKind = "parameter"
	KindVariable  NodeKind = "variable"
	KindLambda    NodeKind = "lambda"
	KindImport    NodeKind = "import"
	KindExpr      NodeKind = "expr"
)

// ExprOp is the closed set of L4 expression-tree node shapes.
type ExprOp string

const (
	ExprAssign   ExprOp = "ASSIGN"
	ExprCall     ExprOp = "CALL"
	ExprBinOp    ExprOp = "BIN_OP"
	ExprLiteral  ExprOp = "LITERAL"
	ExprNameLoad ExprOp = "NAME_LOAD"
)

// EdgeKind is the closed set of IR edge kinds.
type EdgeKind string

const (
	EdgeContains   EdgeKind = "contains"
	EdgeDefines    EdgeKind = "defines"
	EdgeCalls      EdgeKind = "calls"
	EdgeReads      EdgeKind = "reads"
	EdgeWrites     EdgeKind = "writes"
	EdgeImports    EdgeKind = "imports"
	EdgeInherits   EdgeKind = "inherits"
	EdgeReferences EdgeKind = "references"
	EdgeDFG        EdgeKind = "dfg"
	EdgeCFG        EdgeKind = "cfg"
	EdgePhi        EdgeKind = "phi"
)

// ControlFlowSummary holds per-function summary metrics produced by L8.
type ControlFlowSummary struct {
	CyclomaticComplexity int
	LOC                  int
	HasSideEffects       bool
}

// Node is a single entity in the layered IR: a file, module, class,
// function, field, parameter, variable, lambda, or import.
//
// Node.ID is stable across rebuilds: hash(Kind, FQN, FilePath, Span.Start).
// A node restored from the semantic cache keeps its original ID even if
// other nodes in the same document were re-numbered, since the ID formula
// never depends on sibling ordering.
type Node struct {
	ID                  string
	Kind                NodeKind
	FQN                 string
	Name                string
	FilePath            string
	Span                Span
	ParentID            string // empty if root
	Attrs               map[string]any
	ControlFlowSummary  *ControlFlowSummary
}

// Edge connects two nodes by ID. No parallel duplicate edges of the same
// (Source, Target, Kind) are permitted unless Attrs carries a "frequency"
// counter (see DedupeEdges).
type Edge struct {
	SourceID string
	TargetID string
	Kind     EdgeKind
	Attrs    map[string]any
}

// key returns the (source, target, kind) identity used for de-duplication.
func (e Edge) key() [3]string {
	return [3]string{e.SourceID, e.TargetID, string(e.Kind)}
}

// DedupeEdges removes parallel duplicates, folding them into a single edge
// carrying a "frequency" attribute equal to the duplicate count.
func DedupeEdges(edges []Edge) []Edge {
	order := make([]string, 0, len(edges))
	byKey := make(map[string]*Edge, len(edges))
	freq := make(map[string]int, len(edges))

	for _, e := range edges {
		k := e.key()
		ks := k[0] + "\x00" + k[1] + "\x00" + k[2]
		if existing, ok := byKey[ks]; ok {
			freq[ks]++
			if existing.Attrs == nil {
				existing.Attrs = map[string]any{}
			}
			existing.Attrs["frequency"] = freq[ks]
			continue
		}
		cp := e
		byKey[ks] = &cp
		freq[ks] = 1
		order = append(order, ks)
	}

	out := make([]Edge, 0, len(order))
	for _, ks := range order {
		out = append(out, *byKey[ks])
	}
	return out
}
