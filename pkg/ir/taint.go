// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

import "fmt"

// AtomKind is the closed set of taint-atom roles.
type AtomKind string

const (
	AtomSource     AtomKind = "source"
	AtomSink       AtomKind = "sink"
	AtomSanitizer  AtomKind = "sanitizer"
	AtomPropagator AtomKind = "propagator"
)

// MatchRule describes how a TaintAtom matches a call-graph node.
// Exactly one of Call/CallPattern should usually be set alongside the
// optional fields; MatchRule.Validate enforces the non-empty-rule and
// propagator-completeness invariants from spec §3.
type MatchRule struct {
	BaseType        string
	BaseTypePattern string
	Call            string
	CallPattern     string
	Read            string
	Args            []int
	FromArgs        []int  // propagator only
	To              string // propagator only: destination ("return" or arg index as string)
	Scope           string // sanitizer only
}

// Validate enforces: a rule cannot be entirely empty; Args must not contain
// negative or duplicate indices; a propagator rule requires both FromArgs
// and To.
func (r MatchRule) Validate(kind AtomKind) error {
	if r.BaseType == "" && r.BaseTypePattern == "" && r.Call == "" && r.CallPattern == "" && r.Read == "" {
		return fmt.Errorf("match rule is empty")
	}
	seen := make(map[int]bool, len(r.Args))
	for _, a := range r.Args {
		if a < 0 {
			return fmt.Errorf("match rule has negative arg index %d", a)
		}
		if seen[a] {
			return fmt.Errorf("match rule has duplicate arg index %d", a)
		}
		seen[a] = true
	}
	if kind == AtomPropagator {
		if len(r.FromArgs) == 0 || r.To == "" {
			return fmt.Errorf("propagator rule requires both from_args and to")
		}
	}
	return nil
}

// TaintAtom is a declarative pattern identifying a taint source, sink,
// sanitizer, or propagator.
type TaintAtom struct {
	ID          string
	Kind        AtomKind
	Tags        []string
	Rules       []MatchRule
	Severity    string // sinks only
	Description string
	IsRegex     bool
}

// Validate checks that the atom carries at least one rule and that every
// rule is individually valid.
func (a TaintAtom) Validate() error {
	if len(a.Rules) == 0 {
		return fmt.Errorf("taint atom %q has no match rules", a.ID)
	}
	for i, r := range a.Rules {
		if err := r.Validate(a.Kind); err != nil {
			return fmt.Errorf("taint atom %q rule %d: %w", a.ID, i, err)
		}
	}
	return nil
}

// TaintPath is an ordered node sequence from a source to a sink.
type TaintPath struct {
	Source         string
	Sink           string
	Nodes          []string
	IsSanitized    bool
	Severity       string
	SanitizersUsed []string
	Confidence     float64
	Description    string
}
