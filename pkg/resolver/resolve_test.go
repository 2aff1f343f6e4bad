// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"testing"

	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_QualifiedCallThroughImportAlias(t *testing.T) {
	g := NewGlobalContext()
	g.RegisterPackagePath("internal/widgets", "widgets")
	g.AddImport("main.go", "widgets", "example.com/mod/internal/widgets")
	g.AddSymbol("internal/widgets", &Symbol{ID: "widgets.New", Name: "New", Qualified: "New", Exported: true})

	edges := g.Resolve([]UnresolvedCall{
		{CallerID: "main.run", CalleeName: "widgets.New", FilePath: "main.go", Language: "go"},
	})
	require.Len(t, edges, 1)
	assert.Equal(t, "widgets.New", edges[0].TargetID)
	assert.Equal(t, ir.EdgeCalls, edges[0].Kind)
}

func TestResolve_UnexportedSymbolIsNotResolved(t *testing.T) {
	g := NewGlobalContext()
	g.RegisterPackagePath("internal/widgets", "widgets")
	g.AddImport("main.go", "widgets", "example.com/mod/internal/widgets")
	g.AddSymbol("internal/widgets", &Symbol{ID: "widgets.new", Name: "new", Exported: false})

	edges := g.Resolve([]UnresolvedCall{
		{CallerID: "main.run", CalleeName: "widgets.new", FilePath: "main.go", Language: "go"},
	})
	assert.Empty(t, edges)
}

func TestResolve_DotImportFallsBackToUnqualifiedLookup(t *testing.T) {
	g := NewGlobalContext()
	g.RegisterPackagePath("internal/widgets", "widgets")
	g.AddImport("main.go", ".", "example.com/mod/internal/widgets")
	g.AddSymbol("internal/widgets", &Symbol{ID: "widgets.New", Name: "New", Exported: true})

	edges := g.Resolve([]UnresolvedCall{
		{CallerID: "main.run", CalleeName: "New", FilePath: "main.go", Language: "go"},
	})
	require.Len(t, edges, 1)
	assert.Equal(t, "widgets.New", edges[0].TargetID)
}

func TestResolve_UnresolvableCallIsSilentlyDropped(t *testing.T) {
	g := NewGlobalContext()
	edges := g.Resolve([]UnresolvedCall{
		{CallerID: "main.run", CalleeName: "nonexistent.Thing", FilePath: "main.go", Language: "go"},
	})
	assert.Empty(t, edges)
}

func TestResolve_DeduplicatesRepeatedCallSites(t *testing.T) {
	g := NewGlobalContext()
	g.RegisterPackagePath("internal/widgets", "widgets")
	g.AddImport("main.go", "widgets", "example.com/mod/internal/widgets")
	g.AddSymbol("internal/widgets", &Symbol{ID: "widgets.New", Name: "New", Exported: true})

	calls := []UnresolvedCall{
		{CallerID: "main.run", CalleeName: "widgets.New", FilePath: "main.go", Language: "go"},
		{CallerID: "main.run", CalleeName: "widgets.New", FilePath: "main.go", Language: "go"},
	}
	// The resolver's own seen-set collapses same (caller, callee) call sites
	// before DedupeEdges even runs, so a repeated call site yields exactly
	// one edge rather than one edge carrying a frequency count.
	edges := g.Resolve(calls)
	require.Len(t, edges, 1)
	assert.Equal(t, "widgets.New", edges[0].TargetID)
}

func TestResolve_ParallelPathMatchesSequentialPathResults(t *testing.T) {
	g := NewGlobalContext()
	g.RegisterPackagePath("internal/widgets", "widgets")
	g.AddImport("main.go", "widgets", "example.com/mod/internal/widgets")
	g.AddSymbol("internal/widgets", &Symbol{ID: "widgets.New", Name: "New", Exported: true})

	calls := make([]UnresolvedCall, parallelThreshold+1)
	for i := range calls {
		calls[i] = UnresolvedCall{CallerID: "main.run", CalleeName: "widgets.New", FilePath: "main.go", Language: "go"}
	}
	edges := g.Resolve(calls)
	require.Len(t, edges, 1)
	assert.Equal(t, "widgets.New", edges[0].TargetID)
}
