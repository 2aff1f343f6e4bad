// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates the engine's ambient configuration:
// which layers run, concurrency bounds, cache location, exclude globs, and
// the taint atom catalog path. Every build run hashes its resolved Config
// into a config_hash that feeds the semantic cache's key (pkg/ir.CacheKey),
// so two runs with different settings never collide in the cache.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/ccf/pkg/ccferrors"
)

// LayerToggles enables or disables individual IR-building layers. L1-L3 are
// always on (spec §4.4 requires at least a lexical IR and occurrence index
// to exist); L4-L9 may be individually disabled to bound build cost.
type LayerToggles struct {
	ExpressionTrees     bool `yaml:"expression_trees"`      // L4
	ControlFlow         bool `yaml:"control_flow"`          // L5
	DataFlowSSA         bool `yaml:"data_flow_ssa"`         // L6
	ConstantPropagation bool `yaml:"constant_propagation"`  // L7
	SemanticSummaries   bool `yaml:"semantic_summaries"`    // L8
	CrossFileStub       bool `yaml:"cross_file_stub"`       // L9
}

// Concurrency bounds the worker pools used by the orchestrator (C9) and the
// parser facade (C3).
type Concurrency struct {
	ParseWorkers int `yaml:"parse_workers"`
	BuildWorkers int `yaml:"build_workers"`
}

// Config is the root configuration document, typically loaded from a YAML
// file named ccf.yaml at the repository root or supplied via --config.
type Config struct {
	// Strategy selects the default pipeline strategy ("default",
	// "incremental", "parallel", "overlay", "quick").
	Strategy string `yaml:"strategy"`

	// CacheDir is the semantic cache's root directory (pkg/semcache).
	CacheDir string `yaml:"cache_dir"`

	// MaxFileSizeBytes bounds which files the change detector admits.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`

	// ExcludeGlobs are glob patterns for files/directories the change
	// detector skips entirely.
	ExcludeGlobs []string `yaml:"exclude_globs"`

	// Languages restricts parsing to a subset of the closed 7-language set;
	// empty means auto-detect from file extension for all supported
	// languages.
	Languages []string `yaml:"languages"`

	// Layers toggles which IR layers run beyond the always-on L1-L3.
	Layers LayerToggles `yaml:"layers"`

	// Concurrency bounds worker pool sizes.
	Concurrency Concurrency `yaml:"concurrency"`

	// TaintAtomsPath points at the MessagePack-encoded taint atom catalog
	// (pkg/ports.TaintInput); empty disables the taint engine (C8).
	TaintAtomsPath string `yaml:"taint_atoms_path"`

	// MaxTaintDepth bounds the BFS depth of the taint engine.
	MaxTaintDepth int `yaml:"max_taint_depth"`

	// BuildTimeout bounds a single pipeline run.
	BuildTimeout time.Duration `yaml:"build_timeout"`

	// LogLevel controls the slog level ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level"`
}

// Default returns a Config with the engine's documented defaults.
func Default() Config {
	return Config{
		Strategy:         "default",
		CacheDir:         ".ccf/cache",
		MaxFileSizeBytes: 1048576, // 1MB
		ExcludeGlobs: []string{
			".git/**", "node_modules/**", "vendor/**",
			"dist/**", "build/**", "bin/**", "**/bin/**", "out/**",
			".idea/**", ".vscode/**", "*.swp", "*.swo",
			".cache/**", "tmp/**", ".tmp/**",
		},
		Layers: LayerToggles{
			ExpressionTrees:     true,
			ControlFlow:         true,
			DataFlowSSA:         true,
			ConstantPropagation: true,
			SemanticSummaries:   true,
			CrossFileStub:       true,
		},
		Concurrency:   Concurrency{ParseWorkers: 4, BuildWorkers: 4},
		MaxTaintDepth: 20,
		BuildTimeout:  5 * time.Minute,
		LogLevel:      "info",
	}
}

// Load reads and parses a YAML config file, applying Default for any field
// left unset in the file (by unmarshalling onto the defaults value).
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator-supplied
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects a Config that cannot produce a meaningful build. Unlike
// a per-file error, an invalid config aborts the whole run (spec §7).
func (c Config) Validate() error {
	switch c.Strategy {
	case "default", "incremental", "parallel", "overlay", "quick":
	default:
		return &ccferrors.Misconfiguration{Field: "strategy", Reason: "must be one of default, incremental, parallel, overlay, quick"}
	}
	if c.Concurrency.ParseWorkers <= 0 {
		return &ccferrors.Misconfiguration{Field: "concurrency.parse_workers", Reason: "must be positive"}
	}
	if c.Concurrency.BuildWorkers <= 0 {
		return &ccferrors.Misconfiguration{Field: "concurrency.build_workers", Reason: "must be positive"}
	}
	if c.MaxTaintDepth < 0 {
		return &ccferrors.Misconfiguration{Field: "max_taint_depth", Reason: "must not be negative"}
	}
	return nil
}

// Hash computes the config_hash the cache key (pkg/ir.CacheKey) is derived
// from: a SHA256 digest over the canonical YAML encoding of c. Two configs
// that marshal identically always hash identically, matching yaml.v3's
// deterministic field-order encoding of a struct.
func (c Config) Hash() (string, error) {
	canonical, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config for hashing: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
