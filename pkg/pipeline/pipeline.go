// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline implements the Pipeline Orchestrator (C9): it chooses
// among the five strategies spec §4.9 names and drives C1-C8 over a file
// set, grounded on the teacher's LocalPipeline (pkg/ingestion/local_pipeline.go)
// for the overall shape (progress callback, per-run result summary,
// worker-pool fan-out) and on erigon's errgroup-based fan-out for the
// Parallel strategy's concurrency control.
package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/ccf/pkg/config"
	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/irbuild"
	"github.com/kraklabs/ccf/pkg/langparse"
	"github.com/kraklabs/ccf/pkg/ports"
	"github.com/kraklabs/ccf/pkg/resolver"
	"github.com/kraklabs/ccf/pkg/semcache"
	"github.com/kraklabs/ccf/pkg/symgraph"
)

// Strategy is the closed set of orchestration strategies (spec §4.9).
// Strategy selection is injected at construction; the orchestrator never
// chooses implicitly.
type Strategy string

const (
	StrategyDefault     Strategy = "default"
	StrategyIncremental Strategy = "incremental"
	StrategyParallel    Strategy = "parallel"
	StrategyOverlay     Strategy = "overlay"
	StrategyQuick       Strategy = "quick"
)

// ProgressFunc reports current/total file counts during a build.
type ProgressFunc func(current, total int, phase string)

// FileStatus is one file's outcome in the per-file build report (spec §7
// "A build always produces a report listing per-file status").
type FileStatus string

const (
	StatusOK       FileStatus = "ok"
	StatusDegraded FileStatus = "degraded"
	StatusFailed   FileStatus = "failed"
)

// Result is the full outcome of one orchestrator run. RunID is a
// non-deterministic identifier for correlating this run's log lines and
// metrics — never used for node/document IDs, which stay content-hash
// based (pkg/ir/ids.go).
type Result struct {
	RunID         string
	Documents     map[string]*ir.IRDocument
	FileStatuses  map[string]FileStatus
	SymbolGraph   *symgraph.Graph
	CacheStats    semcache.Stats
	ResolverEdges int
}

// SourceFile is one file handed to the orchestrator: its path, detected
// language, and content.
type SourceFile struct {
	Path     string
	Language langparse.Language
	Content  []byte
	Overlay  bool // from an uncommitted working-tree file (spec §4.9 Overlay)
}

// Orchestrator drives C1-C8 over a file set under one injected Strategy.
type Orchestrator struct {
	Strategy Strategy
	Config   config.Config
	Parser   *langparse.Parser
	Cache    *semcache.Cache
	Types    ports.TypeService
	Logger   *slog.Logger

	// incrementalCache holds L1+ results across calls for the Incremental
	// strategy, protected by mu (spec §5 "Incremental builder caches:
	// protected by a single mutex per cache").
	mu               sync.Mutex
	incrementalCache map[string]*ir.IRDocument
}

// New creates an Orchestrator for one strategy.
func New(strategy Strategy, cfg config.Config, parser *langparse.Parser, cache *semcache.Cache, ts ports.TypeService, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		Strategy: strategy, Config: cfg, Parser: parser, Cache: cache, Types: ts, Logger: logger,
		incrementalCache: make(map[string]*ir.IRDocument),
	}
}

// Run builds every file in files under the orchestrator's strategy,
// resolves each document's import paths against the file set, and
// projects the symbol graph. The taint engine (C8) is not run here.
func (o *Orchestrator) Run(ctx context.Context, files []SourceFile, changed map[string]bool, progress ProgressFunc) (*Result, error) {
	effectiveCfg := o.Config
	if o.Strategy == StrategyQuick {
		effectiveCfg.Layers = config.LayerToggles{} // L1-L3 only: every toggleable layer (L4-L9) off
	}

	toBuild := files
	if o.Strategy == StrategyIncremental {
		toBuild = o.selectIncremental(files, changed)
	}

	builder := irbuild.New(o.Cache, o.Types, o.Logger)

	result := &Result{
		RunID:        uuid.NewString(),
		Documents:    make(map[string]*ir.IRDocument),
		FileStatuses: make(map[string]FileStatus),
		SymbolGraph:  symgraph.NewGraph(),
	}

	var buildErr error
	switch o.Strategy {
	case StrategyParallel:
		buildErr = o.runParallel(ctx, toBuild, effectiveCfg, builder, result, progress)
	default:
		buildErr = o.runSequential(ctx, toBuild, effectiveCfg, builder, result, progress)
	}
	if buildErr != nil {
		return result, buildErr
	}

	if o.Strategy == StrategyIncremental {
		o.mu.Lock()
		for path, doc := range result.Documents {
			o.incrementalCache[path] = doc
		}
		for path, doc := range o.incrementalCache {
			if _, ok := result.Documents[path]; !ok {
				result.Documents[path] = doc
			}
		}
		o.mu.Unlock()
	}

	if effectiveCfg.Layers.CrossFileStub {
		o.resolveCrossFile(result)
	}

	for _, doc := range result.Documents {
		symgraph.Project(result.SymbolGraph, doc, "", "", nil)
	}

	if o.Cache != nil {
		result.CacheStats = o.Cache.Stats()
	}

	return result, nil
}

func (o *Orchestrator) selectIncremental(files []SourceFile, changed map[string]bool) []SourceFile {
	if changed == nil {
		return files
	}
	var out []SourceFile
	for _, f := range files {
		if changed[f.Path] {
			out = append(out, f)
		}
	}
	return out
}

func (o *Orchestrator) runSequential(ctx context.Context, files []SourceFile, cfg config.Config, builder *irbuild.Builder, result *Result, progress ProgressFunc) error {
	for i, f := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		doc := o.buildOne(ctx, f, cfg, builder, result)
		result.Documents[f.Path] = doc
		if progress != nil {
			progress(i+1, len(files), "build")
		}
	}
	return nil
}

func (o *Orchestrator) runParallel(ctx context.Context, files []SourceFile, cfg config.Config, builder *irbuild.Builder, result *Result, progress ProgressFunc) error {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if o.Config.Concurrency.BuildWorkers > 0 {
		workers = o.Config.Concurrency.BuildWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	var done int
	for _, f := range files {
		f := f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			doc := o.buildOne(gctx, f, cfg, builder, result)
			mu.Lock()
			result.Documents[f.Path] = doc
			done++
			if progress != nil {
				progress(done, len(files), "build")
			}
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (o *Orchestrator) buildOne(ctx context.Context, f SourceFile, cfg config.Config, builder *irbuild.Builder, result *Result) *ir.IRDocument {
	pr, err := o.Parser.ParseFile(ctx, f.Path, f.Language, f.Content)
	if err != nil {
		doc := ir.NewIRDocument(f.Path, string(f.Language))
		doc.AddDiagnostic("L1", "error", err.Error())
		recordStatus(result, f.Path, StatusFailed)
		return doc
	}

	doc, err := builder.Build(ctx, pr, cfg)
	if err != nil {
		recordStatus(result, f.Path, StatusFailed)
		return doc
	}
	doc.Overlay = f.Overlay

	switch {
	case doc.Degraded:
		recordStatus(result, f.Path, StatusDegraded)
	case doc.Incomplete:
		recordStatus(result, f.Path, StatusDegraded)
	default:
		recordStatus(result, f.Path, StatusOK)
	}
	return doc
}

func recordStatus(result *Result, path string, status FileStatus) {
	result.FileStatuses[path] = status
}

// qualifiedName strips the module-path prefix irbuild.ModuleFQN attaches to
// every L1 node's FQN, recovering the bare "Type.Method" / "Name" form the
// resolver's Symbol.Qualified contract expects.
func qualifiedName(fqn, filePath string) string {
	prefix := irbuild.ModuleFQN(filePath)
	if prefix == "" {
		return fqn
	}
	if rest, ok := strings.CutPrefix(fqn, prefix+"."); ok {
		return rest
	}
	return fqn
}

// resolveCrossFile builds the global symbol context from every document's
// L1 function and method nodes, then resolves each Import node's module
// path against the file set and records it in the node's
// "resolved_module" attribute (C5, run once after the per-file barrier).
// ResolverEdges counts the resolved imports; call sites are not resolved
// here.
func (o *Orchestrator) resolveCrossFile(result *Result) {
	gctx := resolver.NewGlobalContext()
	var paths []string
	for p := range result.Documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		doc := result.Documents[path]
		for _, n := range doc.Nodes {
			if n.Kind != ir.KindFunction && n.Kind != ir.KindMethod {
				continue
			}
			gctx.AddSymbol(doc.FilePath, &resolver.Symbol{
				ID: n.ID, Name: n.Name, Qualified: qualifiedName(n.FQN, doc.FilePath),
				FilePath: doc.FilePath, Language: doc.Language,
			})
		}
	}

	edges := 0
	for _, path := range paths {
		doc := result.Documents[path]
		for i := range doc.Nodes {
			n := &doc.Nodes[i]
			if n.Kind != ir.KindImport {
				continue
			}
			target := gctx.ResolveModulePath(doc.Language, doc.FilePath, n.FQN)
			if target == "" {
				continue
			}
			if n.Attrs == nil {
				n.Attrs = map[string]any{}
			}
			n.Attrs["resolved_module"] = target
			edges++
		}
	}
	result.ResolverEdges = edges
}
