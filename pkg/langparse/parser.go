// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package langparse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Diagnostic records a non-fatal parse problem (e.g. a syntax error
// tree-sitter's own recovery absorbed).
type Diagnostic struct {
	Message string
	Line    int
	Col     int
}

// ParseResult is the immutable AST plus parse diagnostics for one file.
// Tree stays valid after ParseFile returns: the underlying tree-sitter
// parser is returned to its pool, but the sitter.Tree owns its own memory
// and remains valid until the caller is done with it.
type ParseResult struct {
	FilePath    string
	Language    Language
	ContentHash string
	Tree        *sitter.Tree
	Source      []byte
	Diagnostics []Diagnostic
	ErrorCount  int
}

// Parser parses source files into ParseResults, pooling one tree-sitter
// parser per language since tree-sitter parsers are not goroutine-safe.
type Parser struct {
	logger *slog.Logger

	pools     map[Language]*sync.Pool
	initOnce  sync.Once
}

// New creates a Parser. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

func (p *Parser) initPools() {
	p.initOnce.Do(func() {
		p.pools = map[Language]*sync.Pool{
			LanguageGo:         newPool(golang.GetLanguage()),
			LanguagePython:     newPool(python.GetLanguage()),
			LanguageJavaScript: newPool(javascript.GetLanguage()),
			LanguageTypeScript: newPool(typescript.GetLanguage()),
			LanguageJava:       newPool(java.GetLanguage()),
			LanguageRust:       newPool(rust.GetLanguage()),
			LanguageKotlin:     newPool(kotlin.GetLanguage()),
		}
	})
}

func newPool(lang *sitter.Language) *sync.Pool {
	return &sync.Pool{
		New: func() any {
			parser := sitter.NewParser()
			parser.SetLanguage(lang)
			return parser
		},
	}
}

// ParseFile parses source as the given language. An unsupported language
// is reported as an error return — the caller (C4) treats this as a
// ccferrors.ParserError and absorbs it per-file. A syntactically malformed
// file is NOT an error: tree-sitter's error-recovery tree is still
// returned, with ErrorCount/Diagnostics reflecting the damage (spec §7).
func (p *Parser) ParseFile(ctx context.Context, filePath string, lang Language, source []byte) (*ParseResult, error) {
	if !Supported(lang) {
		return nil, fmt.Errorf("unsupported language %q for %s", lang, filePath)
	}
	p.initPools()

	pool := p.pools[lang]
	parserObj := pool.Get()
	parser, ok := parserObj.(*sitter.Parser)
	if !ok {
		return nil, fmt.Errorf("invalid parser type in %s pool", lang)
	}
	defer pool.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse %s: %w", filePath, err)
	}

	sum := sha256.Sum256(source)
	result := &ParseResult{
		FilePath:    filePath,
		Language:    lang,
		ContentHash: hex.EncodeToString(sum[:]),
		Tree:        tree,
		Source:      source,
	}

	errCount := countErrorNodes(tree.RootNode())
	result.ErrorCount = errCount
	if errCount > 0 {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Message: fmt.Sprintf("%d syntax error node(s) recovered", errCount),
		})
		p.logger.Warn("langparse.parse.recovered_errors",
			"path", filePath, "language", lang, "error_nodes", errCount)
	}

	return result, nil
}

// countErrorNodes counts tree-sitter ERROR nodes anywhere in the tree.
func countErrorNodes(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	if node.Type() == "ERROR" {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrorNodes(node.Child(i))
	}
	return count
}

// NodeAtPosition finds the deepest AST node containing the given
// zero-indexed row/column, mapping a source position back to its syntax
// node.
func NodeAtPosition(node *sitter.Node, row, col uint32) *sitter.Node {
	if node == nil {
		return nil
	}

	start := node.StartPoint()
	end := node.EndPoint()

	inNode := false
	switch {
	case row > start.Row && row < end.Row:
		inNode = true
	case row == start.Row && row == end.Row:
		inNode = col >= start.Column && col <= end.Column
	case row == start.Row:
		inNode = col >= start.Column
	case row == end.Row:
		inNode = col <= end.Column
	}
	if !inNode {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if found := NodeAtPosition(node.Child(i), row, col); found != nil {
			return found
		}
	}
	return node
}
