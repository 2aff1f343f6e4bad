// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

// Diagnostic records a non-fatal problem encountered while building a
// layer of the IR for one file. Diagnostics never abort a build; they are
// surfaced in the per-file build report (spec §7).
type Diagnostic struct {
	Layer    string // e.g. "L5", "L6", "resolver"
	Severity string // "info", "warn", "error"
	Message  string
}

// IRDocument is the per-file layered intermediate representation produced
// by the Layered IR Builder (C4). It exclusively owns its nodes and edges;
// children reference parents (and vice versa) by ID only, resolved through
// NodeByID — the document is the arena, there are no cyclic pointers.
type IRDocument struct {
	FilePath   string
	Language   string
	Nodes      []Node
	Edges      []Edge
	Diagnostics []Diagnostic

	// OccurrenceIndex is populated by L2 and enriched by later layers.
	Occurrences OccurrenceIndex

	// Degraded is set when any layer L5-L7 hit a LayerInternalError and had
	// to fall back to Bottom-like defaults (spec §7).
	Degraded bool

	// Incomplete is set when a stage was cancelled or timed out (spec §5).
	Incomplete bool

	// Overlay marks nodes sourced from an uncommitted working-tree file
	// under the Overlay strategy (spec §4.9).
	Overlay bool

	nodeIndex map[string]*Node // lazily built by NodeByID
}

// NewIRDocument creates an empty document for one file.
func NewIRDocument(filePath, language string) *IRDocument {
	return &IRDocument{
		FilePath:    filePath,
		Language:    language,
		Occurrences: make(OccurrenceIndex),
	}
}

// AddNode appends a node and invalidates the lazy index.
func (d *IRDocument) AddNode(n Node) {
	d.Nodes = append(d.Nodes, n)
	d.nodeIndex = nil
}

// AddEdge appends an edge.
func (d *IRDocument) AddEdge(e Edge) {
	d.Edges = append(d.Edges, e)
}

// NodeByID resolves a node reference within this document's arena.
func (d *IRDocument) NodeByID(id string) (*Node, bool) {
	if d.nodeIndex == nil {
		d.nodeIndex = make(map[string]*Node, len(d.Nodes))
		for i := range d.Nodes {
			d.nodeIndex[d.Nodes[i].ID] = &d.Nodes[i]
		}
	}
	n, ok := d.nodeIndex[id]
	return n, ok
}

// AddDiagnostic records a non-fatal per-layer problem.
func (d *IRDocument) AddDiagnostic(layer, severity, message string) {
	d.Diagnostics = append(d.Diagnostics, Diagnostic{Layer: layer, Severity: severity, Message: message})
}

// FunctionsOf returns all Function/Method nodes in the document, in the
// order they were added (deterministic given deterministic layer output).
func (d *IRDocument) FunctionsOf() []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Kind == KindFunction || n.Kind == KindMethod {
			out = append(out, n)
		}
	}
	return out
}

// EdgesFrom returns edges of the given kind originating at sourceID.
func (d *IRDocument) EdgesFrom(sourceID string, kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.SourceID == sourceID && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
