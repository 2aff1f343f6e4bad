// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/kraklabs/ccf/pkg/ir"
	"github.com/kraklabs/ccf/pkg/sigparse"
)

// interfaceMethodPattern matches method declarations (exported or not)
// inside an interface body, e.g. "Write(data []byte) error".
var interfaceMethodPattern = regexp.MustCompile(`(?m)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// InterfaceType describes one interface declaration's required method set,
// used to build the implements index before resolution begins.
type InterfaceType struct {
	Name string
	Body string // raw source text of the interface's method block
}

// TypeMethods maps a concrete type name to the set of method names
// declared with that type as receiver (e.g. from "Type.Method" symbols).
type TypeMethods map[string]map[string]bool

// BuildImplementsIndex determines which concrete types satisfy which
// interfaces by structural method-set matching: a type implements an
// interface if its method set is a superset of the interface's declared
// methods. Self-matches (an interface "implementing" itself) are excluded.
func BuildImplementsIndex(interfaces []InterfaceType, methods TypeMethods) map[string][]string {
	ifaceNames := make(map[string]bool, len(interfaces))
	for _, iface := range interfaces {
		ifaceNames[iface.Name] = true
	}

	result := make(map[string][]string)
	for _, iface := range interfaces {
		required := extractMethodNames(iface.Body)
		if len(required) == 0 {
			continue
		}
		for typeName, typeMethodSet := range methods {
			if ifaceNames[typeName] {
				continue
			}
			if hasAllMethods(typeMethodSet, required) {
				result[iface.Name] = append(result[iface.Name], typeName)
			}
		}
	}
	return result
}

func extractMethodNames(body string) []string {
	matches := interfaceMethodPattern.FindAllStringSubmatch(body, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			names = append(names, m[1])
		}
	}
	return names
}

func hasAllMethods(have map[string]bool, required []string) bool {
	for _, m := range required {
		if !have[m] {
			return false
		}
	}
	return true
}

// resolveInterfaceCall resolves a chained-access call like "s.querier.Store"
// first through the caller's struct field types, then — for standalone
// functions or when field resolution fails — through the caller's
// parameter types (spec's supplemented interface-dispatch feature).
func (g *GlobalContext) resolveInterfaceCall(call UnresolvedCall) []ir.Edge {
	if !strings.Contains(call.CalleeName, ".") {
		return nil
	}
	if strings.Contains(call.CallerName, ".") {
		if edges := g.resolveViaFields(call); len(edges) > 0 {
			return edges
		}
	}
	return g.resolveViaParams(call)
}

func (g *GlobalContext) resolveViaFields(call UnresolvedCall) []ir.Edge {
	structName := strings.SplitN(call.CallerName, ".", 2)[0]
	fieldTypes, ok := g.FieldTypes[structName]
	if !ok {
		return nil
	}

	parts := strings.Split(call.CalleeName, ".")
	if len(parts) < 2 {
		return nil
	}
	methodName := parts[len(parts)-1]

	var fieldType string
	for i := len(parts) - 2; i >= 0; i-- {
		if ft, ok := fieldTypes[parts[i]]; ok {
			fieldType = ft
			break
		}
	}
	if fieldType == "" {
		return nil
	}
	return g.resolveToImplementations(call.CallerID, methodName, fieldType)
}

// resolveViaParams resolves through the caller's parameter types, parsed
// from its recorded signature with sigparse.ParseParams.
func (g *GlobalContext) resolveViaParams(call UnresolvedCall) []ir.Edge {
	sig, ok := g.QualifiedSymbols[call.CallerName]
	if !ok || sig.Signature == "" {
		return nil
	}
	params := sigparse.ParseParams(call.Language, sig.Signature)
	if len(params) == 0 {
		return nil
	}

	parts := strings.Split(call.CalleeName, ".")
	if len(parts) < 2 {
		return nil
	}
	methodName := parts[len(parts)-1]

	for i := len(parts) - 2; i >= 0; i-- {
		candidate := parts[i]
		for _, p := range params {
			if p.Name != candidate {
				continue
			}
			if edges := g.resolveToImplementations(call.CallerID, methodName, p.Type); len(edges) > 0 {
				return edges
			}
		}
	}
	return nil
}

// resolveToImplementations resolves callerID.methodName dispatch through
// fieldType: first as an interface (fan-out to every implementation),
// then as a concrete type (direct lookup), then — for any unresolved
// external type — a synthetic external-symbol stub (spec's supplemented
// external-stub feature).
func (g *GlobalContext) resolveToImplementations(callerID, methodName, fieldType string) []ir.Edge {
	if implTypes, ok := g.Implements[fieldType]; ok {
		var edges []ir.Edge
		for _, implType := range implTypes {
			if sym, ok := g.QualifiedSymbols[implType+"."+methodName]; ok {
				edges = append(edges, ir.Edge{SourceID: callerID, TargetID: sym.ID, Kind: ir.EdgeCalls})
			}
		}
		if len(edges) > 0 {
			return edges
		}
	}

	qualified := fieldType + "." + methodName
	if sym, ok := g.QualifiedSymbols[qualified]; ok {
		return []ir.Edge{{SourceID: callerID, TargetID: sym.ID, Kind: ir.EdgeCalls}}
	}

	if isPrimitiveOrBuiltinType(fieldType) {
		return nil
	}
	stubID := externalStubID(fieldType, methodName)
	g.QualifiedSymbols[qualified] = &Symbol{ID: stubID, Name: methodName, Qualified: qualified, FilePath: "<external>"}
	return []ir.Edge{{SourceID: callerID, TargetID: stubID, Kind: ir.EdgeCalls, Attrs: map[string]any{"external_stub": true}}}
}

func externalStubID(typeName, methodName string) string {
	h := sha256.Sum256([]byte("extstub:" + typeName + "." + methodName))
	return "stub:" + hex.EncodeToString(h[:16])
}

func isPrimitiveOrBuiltinType(t string) bool {
	switch t {
	case "string", "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64", "complex64", "complex128",
		"bool", "byte", "rune", "error", "func", "any", "interface{}",
		"Context", "None", "object", "dict", "list":
		return true
	default:
		return false
	}
}
