// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package irbuild

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/ccf/pkg/config"
	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/langparse"
	"github.com/kraklabs/ccf/pkg/ports"
	"github.com/kraklabs/ccf/pkg/semcache"
)

// Builder runs the nine ordered IR layers over one parsed file, consulting
// the semantic cache before any layer L >= L4 and writing back the result
// on a miss (spec §4.4's "per-file budget & caching").
type Builder struct {
	Cache  *semcache.Cache
	Types  ports.TypeService
	Logger *slog.Logger
}

// New creates a Builder. cache and ts may both be nil (no caching, no LSP
// enrichment); logger must not be nil.
func New(cache *semcache.Cache, ts ports.TypeService, logger *slog.Logger) *Builder {
	return &Builder{Cache: cache, Types: ts, Logger: logger}
}

// StructHash hashes the tree's shape (node type and child count at every
// position) but never its text, so a file that is renamed or has only its
// identifiers changed keeps the same struct hash (spec §3's rename- and
// cosmetic-change tolerant cache key).
func StructHash(root *sitter.Node) string {
	h := sha256.New()
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		fmt.Fprintf(h, "%s(%d)", n.Type(), n.ChildCount())
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return hex.EncodeToString(h.Sum(nil))
}

// Build produces the IRDocument for pr under cfg. On a parser failure
// (pr.Tree == nil) it returns a document containing nothing but a
// diagnostic, per spec §7's "ParserError never propagates" contract.
func (b *Builder) Build(ctx context.Context, pr *langparse.ParseResult, cfg config.Config) (*ir.IRDocument, error) {
	doc := ir.NewIRDocument(pr.FilePath, string(pr.Language))
	for _, d := range pr.Diagnostics {
		doc.AddDiagnostic("L1", "warn", d.Message)
	}
	if pr.Tree == nil {
		doc.AddDiagnostic("L1", "error", "no parse tree available")
		return doc, nil
	}

	lang := pr.Language

	// L1-L3 always run; they are cheap relative to L4-L9 and are needed
	// for cache-key computation (struct hash) regardless of cache state.
	l1 := BuildL1(doc, pr, lang)
	BuildL2(doc, pr, lang)
	BuildL3(ctx, doc, b.Types, b.Logger)

	configHash, err := cfg.Hash()
	if err != nil {
		return doc, fmt.Errorf("config hash: %w", err)
	}
	structHash := StructHash(pr.Tree.RootNode())
	key := ir.CacheKey(pr.ContentHash, structHash, configHash)

	if b.Cache != nil {
		if entry, hit, err := b.Cache.Get(key); err == nil && hit {
			return rebind(entry.Result, doc.FilePath), nil
		}
	}

	rules, _ := RulesFor(lang)
	if cfg.Layers.ExpressionTrees {
		BuildL4(doc, l1, rules, pr.Source)
	}

	if cfg.Layers.ControlFlow || cfg.Layers.DataFlowSSA || cfg.Layers.ConstantPropagation {
		for funcID, fnNode := range l1.FuncNodes {
			cfgGraph, defs, err := BuildL5(fnNode, rules, pr.Source)
			if err != nil {
				doc.Degraded = true
				doc.AddDiagnostic("L5", "error", err.Error())
				continue
			}
			var fs *funcSSA
			if cfg.Layers.DataFlowSSA || cfg.Layers.ConstantPropagation {
				fs = BuildL6L7(doc, funcID, cfgGraph, defs)
			} else {
				fs = &funcSSA{CFG: cfgGraph}
			}
			BuildL8(doc, funcID, fs)
		}
	}

	if cfg.Layers.CrossFileStub {
		BuildL9(doc, l1)
	}

	if b.Cache != nil {
		_ = b.Cache.Put(key, &ir.CacheEntry{
			Key: key, Result: doc, ContentHash: pr.ContentHash,
			StructHash: structHash, ConfigHash: configHash,
		})
	}

	return doc, nil
}

// rebind returns a copy of cached retargeted at filePath — cache hits are
// keyed off content+struct+config only (spec §3), so the same cached
// layers can serve a renamed file, but every FQN derived from the old
// module path (ModuleFQN) and every node ID (which embeds both FQN and
// FilePath) must be recomputed, or the renamed file would keep stale
// identity under its new path. Edges and ParentID references are
// remapped through the old-ID-to-new-ID table built while rewriting
// nodes.
func rebind(cached *ir.IRDocument, filePath string) *ir.IRDocument {
	if cached.FilePath == filePath {
		return cached
	}

	oldPrefix := ModuleFQN(cached.FilePath)
	newPrefix := ModuleFQN(filePath)

	idMap := make(map[string]string, len(cached.Nodes))
	nodes := make([]ir.Node, len(cached.Nodes))
	for i, n := range cached.Nodes {
		newFQN := rebindFQN(n.FQN, oldPrefix, newPrefix)

		nodes[i] = n
		nodes[i].FQN = newFQN
		nodes[i].FilePath = filePath
		switch n.Kind {
		case ir.KindFile:
			nodes[i].ID = ir.FileID(filePath)
			nodes[i].Name = newFQN
		case ir.KindImport:
			// Import nodes key off (filePath, raw import text), not FQN+span.
			nodes[i].ID = ir.ImportID(filePath, n.FQN)
		default:
			nodes[i].ID = ir.NodeID(n.Kind, newFQN, filePath, n.Span)
		}
		idMap[n.ID] = nodes[i].ID
	}
	for i := range nodes {
		if mapped, ok := idMap[nodes[i].ParentID]; ok {
			nodes[i].ParentID = mapped
		}
	}

	edges := make([]ir.Edge, len(cached.Edges))
	for i, e := range cached.Edges {
		edges[i] = e
		if mapped, ok := idMap[e.SourceID]; ok {
			edges[i].SourceID = mapped
		}
		if mapped, ok := idMap[e.TargetID]; ok {
			edges[i].TargetID = mapped
		}
	}

	clone := ir.NewIRDocument(filePath, cached.Language)
	clone.Diagnostics = cached.Diagnostics
	clone.Occurrences = cached.Occurrences
	clone.Degraded = cached.Degraded
	clone.Incomplete = cached.Incomplete
	clone.Overlay = cached.Overlay
	clone.Nodes = nodes
	clone.Edges = edges
	return clone
}

// rebindFQN rewrites the leading module-path component of fqn from
// oldPrefix to newPrefix, leaving everything after it (class/function
// names, .exprN suffixes) untouched.
func rebindFQN(fqn, oldPrefix, newPrefix string) string {
	if fqn == oldPrefix {
		return newPrefix
	}
	if rest, ok := strings.CutPrefix(fqn, oldPrefix+"."); ok {
		return newPrefix + "." + rest
	}
	return fqn
}
