// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package sigparse

import "strings"

// ParseParams parses a function signature string for the given language
// and returns its parameters' names and base types, used by the
// Cross-File Resolver for parameter-typed interface dispatch (spec §4.5).
// Go keeps its dedicated parser (ParseGoParams); the other three languages
// in the closed set use a simpler "name: Type" / "Type name" convention
// parser, since none of them have Go's grouped-parameter or multi-return
// syntax to account for.
func ParseParams(language, signature string) []ParamInfo {
	switch language {
	case "go":
		return ParseGoParams(signature)
	case "python":
		return parseColonTypedParams(signature)
	case "java", "kotlin":
		return parseColonTypedParams(signature)
	case "typescript":
		return parseColonTypedParams(signature)
	case "javascript":
		// JavaScript carries no static parameter types; nothing to extract.
		return nil
	default:
		return nil
	}
}

// parseColonTypedParams handles "name: Type" (Python/TypeScript/Kotlin) and
// "Type name" (Java) parameter lists extracted from between the outermost
// parentheses of signature.
func parseColonTypedParams(signature string) []ParamInfo {
	paramStr := extractParens(signature)
	if paramStr == "" {
		return nil
	}
	parts := splitAtTopLevelCommas(paramStr)
	var params []ParamInfo
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if name, typ, ok := splitColonTyped(p); ok {
			params = append(params, ParamInfo{Name: name, Type: NormalizeType(typ)})
			continue
		}
		if name, typ, ok := splitSpaceTyped(p); ok {
			params = append(params, ParamInfo{Name: name, Type: NormalizeType(typ)})
		}
	}
	return params
}

// splitColonTyped handles "name: Type = default" (Python/TS/Kotlin).
func splitColonTyped(p string) (name, typ string, ok bool) {
	colon := strings.Index(p, ":")
	if colon < 0 {
		return "", "", false
	}
	name = strings.TrimSpace(p[:colon])
	typ = strings.TrimSpace(p[colon+1:])
	if eq := strings.Index(typ, "="); eq >= 0 {
		typ = strings.TrimSpace(typ[:eq])
	}
	return stripSelfOrThis(name), typ, name != ""
}

// splitSpaceTyped handles "final Type name" / "Type name" (Java).
func splitSpaceTyped(p string) (name, typ string, ok bool) {
	fields := strings.Fields(p)
	if len(fields) < 2 {
		return "", "", false
	}
	// Drop Java modifiers like "final".
	for len(fields) > 2 && fields[0] == "final" {
		fields = fields[1:]
	}
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[len(fields)-1], fields[len(fields)-2], true
}

func stripSelfOrThis(name string) string {
	if name == "self" || name == "this" {
		return ""
	}
	return name
}

// extractParens returns the content between the first matching top-level
// parentheses in signature, e.g. "def f(a: int, b: str) -> bool" -> "a: int, b: str".
func extractParens(signature string) string {
	start := strings.Index(signature, "(")
	if start < 0 {
		return ""
	}
	end := findMatchingParen(signature, start)
	if end < 0 {
		return ""
	}
	return signature[start+1 : end]
}
