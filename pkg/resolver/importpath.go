// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"path/filepath"
	"strings"
)

// ResolveModulePath maps an import path as written in source to a local
// module/package directory path already registered via RegisterPackagePath.
// Each supported language has its own import-path convention (spec §4.5):
//
//   - go: import paths are module-path-prefixed ("example.com/mod/pkg");
//     matched by suffix against known package directories.
//   - python: dotted module paths ("pkg.sub.module"); converted to a
//     slash path and matched directly or by suffix.
//   - java: fully-qualified dotted class paths; the package portion (all
//     but the last segment) is converted to a slash path.
//   - javascript/typescript: relative ("./foo", "../bar") or bare package
//     specifiers; relative imports are joined against the importing file's
//     directory, bare specifiers are treated as external (unresolved).
func (g *GlobalContext) ResolveModulePath(language, fromFile, importPath string) string {
	switch language {
	case "go":
		return g.resolveGoImport(importPath)
	case "python":
		return g.resolveDottedImport(importPath)
	case "java":
		return g.resolveJavaImport(importPath)
	case "javascript", "typescript":
		return g.resolveJSImport(fromFile, importPath)
	default:
		return ""
	}
}

// resolveGoImport matches a Go import path by exact match, then by suffix
// against a registered package directory, then falls back to matching on
// the import path's final path component against a registered package
// name — mirroring the teacher's three-tier Go resolution strategy.
func (g *GlobalContext) resolveGoImport(importPath string) string {
	if modPath, ok := g.importPathToModulePath[importPath]; ok {
		return modPath
	}
	for pkgPath := range g.packagePaths {
		if strings.HasSuffix(importPath, pkgPath) {
			g.importPathToModulePath[importPath] = pkgPath
			return pkgPath
		}
	}
	baseName := filepath.Base(importPath)
	for pkgPath, name := range g.packagePaths {
		if name == baseName {
			g.importPathToModulePath[importPath] = pkgPath
			return pkgPath
		}
	}
	return ""
}

// resolveDottedImport converts a Python dotted module path to a slash path
// and matches it against known package directories.
func (g *GlobalContext) resolveDottedImport(importPath string) string {
	slashPath := strings.ReplaceAll(importPath, ".", "/")
	if _, ok := g.packagePaths[slashPath]; ok {
		return slashPath
	}
	for pkgPath := range g.packagePaths {
		if strings.HasSuffix(pkgPath, slashPath) || strings.HasSuffix(slashPath, pkgPath) {
			return pkgPath
		}
	}
	return ""
}

// resolveJavaImport converts a fully-qualified Java import ("com.acme.pkg.Type")
// to its package directory ("com/acme/pkg") by dropping the final
// (class-name) segment, then matches against known package directories.
func (g *GlobalContext) resolveJavaImport(importPath string) string {
	lastDot := strings.LastIndex(importPath, ".")
	if lastDot < 0 {
		return ""
	}
	pkgDotted := importPath[:lastDot]
	slashPath := strings.ReplaceAll(pkgDotted, ".", "/")
	if _, ok := g.packagePaths[slashPath]; ok {
		return slashPath
	}
	for pkgPath := range g.packagePaths {
		if strings.HasSuffix(pkgPath, slashPath) {
			return pkgPath
		}
	}
	return ""
}

// resolveJSImport resolves a JS/TS import specifier relative to the
// importing file's directory. Bare specifiers (no leading "." or "/") are
// external packages and intentionally left unresolved — the resolver only
// handles intra-fileset dependencies.
func (g *GlobalContext) resolveJSImport(fromFile, importPath string) string {
	if !strings.HasPrefix(importPath, ".") {
		return ""
	}
	dir := filepath.Dir(fromFile)
	joined := filepath.ToSlash(filepath.Clean(filepath.Join(dir, importPath)))
	if _, ok := g.packagePaths[joined]; ok {
		return joined
	}
	// Directory-style import (e.g. "./utils/index" resolving to the "utils" dir).
	if _, ok := g.packagePaths[filepath.Dir(joined)]; ok && filepath.Base(joined) == "index" {
		return filepath.Dir(joined)
	}
	return ""
}
