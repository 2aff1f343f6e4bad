// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the ccfbuild CLI: the single stable touchpoint
// spec §6 names for the Code Foundation Core — a `build` verb taking a
// strategy name plus layer toggles, grounded on the teacher's cmd/cie
// main.go/index.go flag and exit-code conventions.
//
// Usage:
//
//	ccfbuild build [options] <path>...
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/ccf/internal/ui"
	"github.com/kraklabs/ccf/pkg/config"
	"github.com/kraklabs/ccf/pkg/langparse"
	"github.com/kraklabs/ccf/pkg/pipeline"
	"github.com/kraklabs/ccf/pkg/semcache"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if len(os.Args) >= 2 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("ccfbuild version %s (%s)\n", version, commit)
		os.Exit(0)
	}
	if len(os.Args) < 2 || os.Args[1] != "build" {
		fmt.Fprintln(os.Stderr, "Usage: ccfbuild build [options] <path>...")
		os.Exit(2)
	}
	os.Exit(runBuild(os.Args[2:]))
}

// runBuild executes the build verb and returns the process exit code.
// Exit 0 on success (even with per-file degraded/failed documents — those
// are reported, not fatal); non-zero for an invalid config, a failed run,
// or when no files could be parsed at all. A cache directory that cannot
// be opened does not change the exit code: the build warns and proceeds
// uncached, and there is no option that makes persistence mandatory.
func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	strategy := fs.String("strategy", "default", "build strategy: default|incremental|parallel|overlay|quick")
	configPath := fs.String("config", "", "path to YAML config file")
	cacheDir := fs.String("cache-dir", "", "cache directory (overrides CCF_CACHE_DIR)")
	maxWorkers := fs.Int("max-workers", 0, "max build workers (0 = config default)")
	logLevel := fs.String("log-level", "", "log level (overrides CCF_LOG_LEVEL)")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	watch := fs.Bool("watch", false, "watch the given paths and rebuild incrementally on change")
	noColor := fs.Bool("no-color", false, "disable colorized output")
	jsonOut := fs.Bool("json", false, "emit the build report as JSON")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	ui.Init(*noColor)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			ui.Errorf("config: %v", err)
			return 1
		}
		cfg = loaded
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	} else if env := os.Getenv("CCF_CACHE_DIR"); env != "" {
		cfg.CacheDir = env
	}
	if *maxWorkers > 0 {
		cfg.Concurrency.BuildWorkers = *maxWorkers
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	} else if env := os.Getenv("CCF_LOG_LEVEL"); env != "" {
		cfg.LogLevel = env
	}
	if err := cfg.Validate(); err != nil {
		ui.Errorf("misconfiguration: %v", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	metrics := newBuildMetrics()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server exited", "err", err)
			}
		}()
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cache, err := semcache.Open(cfg.CacheDir, cfg.MaxFileSizeBytes*1000)
	if err != nil {
		ui.Warningf("cache unavailable, continuing uncached: %v", err)
		cache = nil
	}

	strat := pipeline.Strategy(*strategy)
	parser := langparse.New(logger)

	runOnce := func(ctx context.Context) (*pipeline.Result, error) {
		result, err := buildOnce(ctx, paths, cfg, strat, parser, cache, logger, *jsonOut)
		if err == nil {
			metrics.record(result)
		}
		return result, err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := runOnce(ctx)
	if err != nil {
		ui.Errorf("build: %v", err)
		return 1
	}
	if len(result.Documents) == 0 {
		ui.Error("no files could be parsed")
		return 1
	}
	printReport(result)

	if *watch {
		return runWatch(ctx, paths, runOnce)
	}
	return 0
}

func buildOnce(ctx context.Context, paths []string, cfg config.Config, strat pipeline.Strategy, parser *langparse.Parser, cache *semcache.Cache, logger *slog.Logger, jsonOut bool) (*pipeline.Result, error) {
	files, err := collectFiles(paths, cfg)
	if err != nil {
		return nil, err
	}

	orch := pipeline.New(strat, cfg, parser, cache, nil, logger)
	bar := ui.NewProgressBar(len(files), "building")
	progress := func(current, total int, phase string) { _ = bar.Add(1) }
	if jsonOut {
		progress = nil
	}
	return orch.Run(ctx, files, nil, progress)
}

func collectFiles(roots []string, cfg config.Config) ([]pipeline.SourceFile, error) {
	var out []pipeline.SourceFile
	for _, root := range roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			lang := langparse.FromExtension(filepath.Ext(path))
			if !langparse.Supported(lang) {
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			out = append(out, pipeline.SourceFile{Path: path, Language: lang, Content: content})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func printReport(result *pipeline.Result) {
	ui.Header("Build Report")
	fmt.Printf("%s %s\n", ui.Label("Run ID:"), ui.DimText(result.RunID))
	ok, degraded, failed := 0, 0, 0
	for _, s := range result.FileStatuses {
		switch s {
		case pipeline.StatusOK:
			ok++
		case pipeline.StatusDegraded:
			degraded++
		case pipeline.StatusFailed:
			failed++
		}
	}
	fmt.Printf("%s %s\n", ui.Label("Files ok:"), ui.CountText(ok))
	fmt.Printf("%s %s\n", ui.Label("Files degraded:"), ui.CountText(degraded))
	fmt.Printf("%s %s\n", ui.Label("Files failed:"), ui.CountText(failed))
	fmt.Printf("%s %s\n", ui.Label("Resolver edges:"), ui.CountText(result.ResolverEdges))
	fmt.Printf("%s %s\n", ui.Label("Cache hits:"), ui.CountText(int(result.CacheStats.Hits)))
	fmt.Printf("%s %s\n", ui.Label("Cache misses:"), ui.CountText(int(result.CacheStats.Misses)))
}

func runWatch(ctx context.Context, paths []string, runOnce func(context.Context) (*pipeline.Result, error)) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		ui.Errorf("watch: %v", err)
		return 1
	}
	defer watcher.Close()
	for _, p := range paths {
		_ = filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
			if err == nil && info.IsDir() {
				_ = watcher.Add(path)
			}
			return nil
		})
	}

	debounce := time.NewTimer(0)
	<-debounce.C
	for {
		select {
		case <-ctx.Done():
			return 0
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(2 * time.Second)
		case <-debounce.C:
			if _, err := runOnce(ctx); err != nil {
				ui.Warningf("rebuild failed: %v", err)
			}
		case err := <-watcher.Errors:
			ui.Warningf("watch error: %v", err)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
