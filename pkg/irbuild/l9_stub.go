// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import "github.com/kraklabs/ccf/pkg/ir"

// BuildL9 materializes one Import node per raw import token captured by
// L1 and an EdgeImports from the file node, leaving the target module
// path unresolved — C5 (cross-file resolver) is the layer that turns
// these into real file-to-file edges (spec §4.4 L9).
func BuildL9(doc *ir.IRDocument, res *l1Result) {
	fileID := ir.FileID(doc.FilePath)
	for _, tok := range res.Imports {
		id := ir.ImportID(doc.FilePath, tok.RawText)
		doc.AddNode(ir.Node{
			ID:       id,
			Kind:     ir.KindImport,
			FQN:      tok.RawText,
			Name:     tok.RawText,
			FilePath: doc.FilePath,
			Span:     tok.Span,
			ParentID: fileID,
			Attrs:    map[string]any{"resolved": false},
		})
		doc.AddEdge(ir.Edge{SourceID: fileID, TargetID: id, Kind: ir.EdgeImports})
	}
}
