// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"strings"
	"sync"

	"github.com/kraklabs/ccf/pkg/ir"
)

// UnresolvedCall is a call site whose callee could not be determined
// within its own file by L4/L5 and is handed to the cross-file resolver.
type UnresolvedCall struct {
	CallerID   string
	CallerName string // qualified name of the enclosing function, for interface dispatch
	CalleeName string
	FilePath   string
	Language   string
}

// parallelThreshold matches the teacher's own cutover point between
// sequential and worker-pool call resolution.
const parallelThreshold = 1000

// Resolve resolves a batch of unresolved calls against g, producing Calls
// edges. Call sites that cannot be resolved to a known symbol are silently
// dropped — C5 never fails a build over an unresolved call, it just leaves
// the corresponding Edge absent (spec §4.5 edge case).
func (g *GlobalContext) Resolve(calls []UnresolvedCall) []ir.Edge {
	if len(calls) < parallelThreshold {
		return g.resolveSequential(calls)
	}
	return g.resolveParallel(calls)
}

func (g *GlobalContext) resolveSequential(calls []UnresolvedCall) []ir.Edge {
	var edges []ir.Edge
	seen := make(map[[2]string]bool)
	for _, call := range calls {
		for _, e := range g.resolveOne(call) {
			key := [2]string{e.SourceID, e.TargetID}
			if !seen[key] {
				seen[key] = true
				edges = append(edges, e)
			}
		}
	}
	return ir.DedupeEdges(edges)
}

func (g *GlobalContext) resolveParallel(calls []UnresolvedCall) []ir.Edge {
	const maxWorkers = 8
	workers := maxWorkers
	if len(calls) < workers {
		workers = len(calls)
	}

	jobs := make(chan int, len(calls))
	results := make(chan ir.Edge, len(calls))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				for _, e := range g.resolveOne(calls[idx]) {
					results <- e
				}
			}
		}()
	}
	for i := range calls {
		jobs <- i
	}
	close(jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	var edges []ir.Edge
	for e := range results {
		edges = append(edges, e)
	}
	return ir.DedupeEdges(edges)
}

func (g *GlobalContext) resolveOne(call UnresolvedCall) []ir.Edge {
	if strings.Contains(call.CalleeName, ".") {
		if target := g.resolveQualifiedCall(call); target != "" {
			return []ir.Edge{{SourceID: call.CallerID, TargetID: target, Kind: ir.EdgeCalls}}
		}
	}
	if target := g.resolveDotImportCall(call); target != "" {
		return []ir.Edge{{SourceID: call.CallerID, TargetID: target, Kind: ir.EdgeCalls}}
	}
	return g.resolveInterfaceCall(call)
}

// resolveQualifiedCall resolves "alias.Name(...)" calls by looking the
// alias up in the file's resolved imports and the name up in the target
// module's symbol table.
func (g *GlobalContext) resolveQualifiedCall(call UnresolvedCall) string {
	parts := strings.SplitN(call.CalleeName, ".", 2)
	alias, name := parts[0], parts[1]
	if strings.Contains(name, ".") {
		name = name[strings.LastIndex(name, ".")+1:]
	}

	imports, ok := g.ResolvedImports[call.FilePath]
	if !ok {
		return ""
	}
	importPath, ok := imports[alias]
	if !ok {
		return ""
	}
	modPath := g.ResolveModulePath(call.Language, call.FilePath, importPath)
	if modPath == "" {
		return ""
	}
	if syms, ok := g.SymbolTable[modPath]; ok {
		if sym, ok := syms[name]; ok && sym.Exported {
			return sym.ID
		}
	}
	return ""
}

// resolveDotImportCall resolves calls reached via a dot/wildcard import
// (Go's `import . "pkg"`; Python's `from pkg import *`).
func (g *GlobalContext) resolveDotImportCall(call UnresolvedCall) string {
	imports, ok := g.ResolvedImports[call.FilePath]
	if !ok {
		return ""
	}
	for alias, importPath := range imports {
		if alias != "." && alias != "*" {
			continue
		}
		modPath := g.ResolveModulePath(call.Language, call.FilePath, importPath)
		if modPath == "" {
			continue
		}
		if syms, ok := g.SymbolTable[modPath]; ok {
			if sym, ok := syms[call.CalleeName]; ok {
				return sym.ID
			}
		}
	}
	return ""
}
