// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package langparse implements the Parser Facade (C3): a thin, uniform
// wrapper over tree-sitter grammars for the engine's closed 7-language
// set. ParseFile never returns a hard error for malformed source — a parse
// failure is recorded as a Diagnostic and the caller proceeds with
// whatever partial AST tree-sitter's own error recovery produced (spec
// §4.3, §7).
package langparse

// Language is the closed set of languages the engine understands.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageJava       Language = "java"
	LanguageRust       Language = "rust"
	LanguageKotlin     Language = "kotlin"
)

// Supported reports whether lang is one of the engine's 7 supported
// languages.
func Supported(lang Language) bool {
	switch lang {
	case LanguageGo, LanguagePython, LanguageJavaScript, LanguageTypeScript,
		LanguageJava, LanguageRust, LanguageKotlin:
		return true
	default:
		return false
	}
}

// FromExtension infers a Language from a file extension (including the
// leading dot, e.g. ".go"). Returns "" for an unrecognized extension.
func FromExtension(ext string) Language {
	switch ext {
	case ".go":
		return LanguageGo
	case ".py":
		return LanguagePython
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	case ".ts", ".tsx":
		return LanguageTypeScript
	case ".java":
		return LanguageJava
	case ".rs":
		return LanguageRust
	case ".kt", ".kts":
		return LanguageKotlin
	default:
		return ""
	}
}
