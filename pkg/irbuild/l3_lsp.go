// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import (
	"context"
	"log/slog"

	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/ports"
)

// BuildL3 enriches every def-site node with hover/type text and a
// go-to-definition target, consulting the cached TypeService port (spec
// §4.4 L3, §4.11). ts may be nil — LSP enrichment is an optional layer;
// when absent, L3 is a no-op rather than an error, matching the teacher's
// general rule that an absent optional collaborator degrades gracefully.
func BuildL3(ctx context.Context, doc *ir.IRDocument, ts ports.TypeService, logger *slog.Logger) {
	if ts == nil {
		return
	}
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.Kind != ir.KindFunction && n.Kind != ir.KindMethod && n.Kind != ir.KindVariable && n.Kind != ir.KindField {
			continue
		}
		hover, err := ts.Hover(ctx, doc.FilePath, n.Span.StartLine, n.Span.StartCol)
		if err != nil {
			logger.Warn("irbuild.l3.hover_failed", "file", doc.FilePath, "node", n.ID, "err", err)
			doc.AddDiagnostic("L3", "warn", err.Error())
			continue
		}
		def, err := ts.Definition(ctx, doc.FilePath, n.Span.StartLine, n.Span.StartCol)
		if err != nil {
			logger.Warn("irbuild.l3.definition_failed", "file", doc.FilePath, "node", n.ID, "err", err)
			doc.AddDiagnostic("L3", "warn", err.Error())
			continue
		}
		if n.Attrs == nil {
			n.Attrs = map[string]any{}
		}
		n.Attrs["hover_type"] = hover.Type
		n.Attrs["hover_doc"] = hover.Documentation
		n.Attrs["definition_file"] = def.FilePath
		n.Attrs["definition_line"] = def.Line
		n.Attrs["definition_col"] = def.Col
	}
}
