// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package taint implements the Taint Engine (C8): breadth-first search
// from source atoms to sink atoms over a call graph, grounded on the
// teacher's pkg/tools/trace.go BFS (runTraceSearch/searchFromSource),
// generalized from its fixed Go-only function names to the declarative
// ir.TaintAtom/MatchRule pattern the spec's taint engine consumes (spec
// §4.8).
package taint

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/ccf/pkg/ir"
)

// CallGraphNode is one entry in the caller-supplied call graph.
type CallGraphNode struct {
	ID       string
	Name     string
	BaseType string
	Callees  []string // node IDs
}

// Input is the full C8 request payload (spec §4.8, §6 "taint input payload").
type Input struct {
	Nodes      map[string]CallGraphNode
	Sources    []ir.TaintAtom
	Sinks      []ir.TaintAtom
	Sanitizers []ir.TaintAtom
	MaxDepth   int
}

// Summary aggregates path counts for the top-level result.
type Summary struct {
	TotalPaths       int
	UnsanitizedCount int
}

// AnalysisResult is C8's output (spec §4.8, §6).
type AnalysisResult struct {
	Paths      []ir.TaintPath
	Summary    Summary
	Incomplete bool
}

const defaultMaxDepth = 10

// Analyze runs the BFS from every source node, bounded by ctx and
// in.MaxDepth, and returns every path that reaches a sink (spec §4.8).
// Determinism is by ascending node ID at every BFS expansion step.
func Analyze(ctx context.Context, in Input) AnalysisResult {
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	var result AnalysisResult
	sourceNodes := matchNodes(in.Nodes, in.Sources)

	for _, srcID := range sortedIDs(sourceNodes) {
		select {
		case <-ctx.Done():
			result.Incomplete = true
			return finalize(result)
		default:
		}
		paths, incomplete := searchFromSource(ctx, in, srcID, maxDepth)
		result.Paths = append(result.Paths, paths...)
		if incomplete {
			result.Incomplete = true
			return finalize(result)
		}
	}
	return finalize(result)
}

func finalize(r AnalysisResult) AnalysisResult {
	r.Summary.TotalPaths = len(r.Paths)
	for _, p := range r.Paths {
		if !p.IsSanitized {
			r.Summary.UnsanitizedCount++
		}
	}
	return r
}

type queueEntry struct {
	nodeID string
	path   []string
	sanitizers []string
}

// searchFromSource performs one BFS from src, matching every visited node
// against sanitizer and sink atoms (spec §4.8 steps 1-3).
func searchFromSource(ctx context.Context, in Input, src string, maxDepth int) ([]ir.TaintPath, bool) {
	var paths []ir.TaintPath
	visited := map[string]bool{src: true}
	queue := []queueEntry{{nodeID: src, path: []string{src}}}
	explored := 0

	for len(queue) > 0 {
		explored++
		if explored%100 == 0 {
			select {
			case <-ctx.Done():
				return paths, true
			default:
			}
		}

		cur := queue[0]
		queue = queue[1:]

		if len(cur.path) > maxDepth+1 {
			continue
		}

		node := in.Nodes[cur.nodeID]
		sanitizers := cur.sanitizers
		if atom, ok := matchesAny(node, in.Sanitizers); ok {
			sanitizers = append(append([]string(nil), sanitizers...), atom.ID)
		}

		if atom, ok := matchesAny(node, in.Sinks); ok && len(cur.path) > 1 {
			paths = append(paths, ir.TaintPath{
				Source: src, Sink: cur.nodeID, Nodes: append([]string(nil), cur.path...),
				IsSanitized: len(sanitizers) > 0, Severity: atom.Severity,
				SanitizersUsed: sanitizers, Confidence: confidence(len(cur.path)),
				Description: atom.Description,
			})
			continue
		}

		callees := append([]string(nil), node.Callees...)
		sort.Strings(callees)
		for _, c := range callees {
			if visited[c] {
				continue
			}
			visited[c] = true
			queue = append(queue, queueEntry{
				nodeID: c, path: append(append([]string(nil), cur.path...), c),
				sanitizers: sanitizers,
			})
		}
	}
	return paths, false
}

// confidence derives a finding's confidence from path length (spec §4.8).
func confidence(pathLen int) float64 {
	base := 0.8
	switch {
	case pathLen <= 3:
		base += 0.1
	case pathLen > 10:
		base -= 0.1
	}
	if base < 0 {
		base = 0
	}
	if base > 1 {
		base = 1
	}
	return round2(base)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func matchNodes(nodes map[string]CallGraphNode, atoms []ir.TaintAtom) map[string]bool {
	out := make(map[string]bool)
	for id := range nodes {
		n := nodes[id]
		if _, ok := matchesAny(n, atoms); ok {
			out[id] = true
		}
	}
	return out
}

// matchesAny reports whether node matches any rule of any atom, returning
// the first matching atom (spec §4.8 step 4's pattern-match rule).
func matchesAny(node CallGraphNode, atoms []ir.TaintAtom) (ir.TaintAtom, bool) {
	for _, atom := range atoms {
		for _, rule := range atom.Rules {
			if matchRule(node, rule, atom.IsRegex) {
				return atom, true
			}
		}
	}
	return ir.TaintAtom{}, false
}

func matchRule(node CallGraphNode, rule ir.MatchRule, isRegex bool) bool {
	if rule.Call != "" && matchPattern(node.Name, rule.Call, false) {
		return true
	}
	if rule.CallPattern != "" && matchPattern(node.Name, rule.CallPattern, isRegex) {
		return true
	}
	if rule.BaseType != "" && matchPattern(node.BaseType, rule.BaseType, false) {
		return true
	}
	if rule.BaseTypePattern != "" && matchPattern(node.BaseType, rule.BaseTypePattern, isRegex) {
		return true
	}
	return false
}

// matchPattern is plain equality unless regex is true, in which case an
// anchored regex match (spec §4.8 step 4).
func matchPattern(value, pattern string, regex bool) bool {
	if !regex {
		return value == pattern
	}
	anchored := pattern
	if !strings.HasPrefix(anchored, "^") {
		anchored = "^" + anchored
	}
	if !strings.HasSuffix(anchored, "$") {
		anchored = anchored + "$"
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return false
	}
	return re.MatchString(value)
}

func sortedIDs(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
