// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resolver implements the Cross-File Resolver (C5): it builds a
// GlobalContext from every file's symbols and imports in a build, then
// resolves cross-file calls — including interface dispatch and
// language-specific import resolution for the closed go/python/java/
// typescript/javascript rule set (spec §4.5).
package resolver

// Symbol is one resolvable definition discovered in a single file: a
// function, method, type, or package-level variable.
type Symbol struct {
	ID         string
	Name       string // simple name, without receiver/type qualifier
	Qualified  string // "Type.Method" for methods, else equal to Name
	FilePath   string
	Signature  string
	Exported   bool
	Language   string
}

// FileImport is one resolved or unresolved import statement.
type FileImport struct {
	FilePath   string
	Alias      string
	ImportPath string
}

// GlobalContext is the resolver's index over an entire build: every file's
// symbol table, its dependencies (resolved imports), and cross-reference
// indexes needed for interface dispatch.
type GlobalContext struct {
	// SymbolTable maps package/module path -> simple name -> Symbol.
	SymbolTable map[string]map[string]*Symbol

	// FileDependencies maps file path -> list of import paths it depends on.
	FileDependencies map[string][]string

	// ResolvedImports maps file path -> alias -> import path.
	ResolvedImports map[string]map[string]string

	// QualifiedSymbols maps "Type.Method" -> Symbol, for interface dispatch.
	QualifiedSymbols map[string]*Symbol

	// FieldTypes maps structName -> fieldName -> fieldType.
	FieldTypes map[string]map[string]string

	// Implements maps interfaceName -> implementing type names.
	Implements map[string][]string

	// importPathToModulePath caches import-path -> local module/package path.
	importPathToModulePath map[string]string

	// packagePaths is the set of local module/package directory paths seen.
	packagePaths map[string]string // path -> package/module name
}

// NewGlobalContext creates an empty resolver context.
func NewGlobalContext() *GlobalContext {
	return &GlobalContext{
		SymbolTable:            make(map[string]map[string]*Symbol),
		FileDependencies:       make(map[string][]string),
		ResolvedImports:        make(map[string]map[string]string),
		QualifiedSymbols:       make(map[string]*Symbol),
		FieldTypes:             make(map[string]map[string]string),
		Implements:             make(map[string][]string),
		importPathToModulePath: make(map[string]string),
		packagePaths:           make(map[string]string),
	}
}

// AddSymbol registers a symbol under its owning package/module path.
func (g *GlobalContext) AddSymbol(modulePath string, sym *Symbol) {
	if g.SymbolTable[modulePath] == nil {
		g.SymbolTable[modulePath] = make(map[string]*Symbol)
	}
	g.SymbolTable[modulePath][sym.Name] = sym
	if sym.Qualified != sym.Name {
		g.QualifiedSymbols[sym.Qualified] = sym
	}
}

// AddImport registers a file's import alias -> import path and updates
// FileDependencies.
func (g *GlobalContext) AddImport(filePath, alias, importPath string) {
	if g.ResolvedImports[filePath] == nil {
		g.ResolvedImports[filePath] = make(map[string]string)
	}
	g.ResolvedImports[filePath][alias] = importPath
	g.FileDependencies[filePath] = append(g.FileDependencies[filePath], importPath)
}

// RegisterPackagePath records a local package/module directory path and its
// declared name, used later to map an import path back to it.
func (g *GlobalContext) RegisterPackagePath(path, name string) {
	g.packagePaths[path] = name
	g.importPathToModulePath[path] = path
}
