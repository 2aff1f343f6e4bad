// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"testing"

	"github.com/kraklabs/ccf/pkg/config"
	"github.com/kraklabs/ccf/pkg/langparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `package sample

func Add(a, b int) int {
	return a + b
}
`

func newTestOrchestrator(t *testing.T, strategy Strategy) *Orchestrator {
	t.Helper()
	return New(strategy, config.Default(), langparse.New(nil), nil, nil, nil)
}

func TestRun_DefaultStrategyBuildsEveryFile(t *testing.T) {
	o := newTestOrchestrator(t, StrategyDefault)
	files := []SourceFile{{Path: "a.go", Language: langparse.LanguageGo, Content: []byte(sampleSource)}}

	result, err := o.Run(context.Background(), files, nil, nil)
	require.NoError(t, err)
	assert.Len(t, result.Documents, 1)
	assert.Equal(t, StatusOK, result.FileStatuses["a.go"])
	assert.NotEmpty(t, result.RunID)
}

func TestRun_QuickStrategyOnlyRunsL1(t *testing.T) {
	o := newTestOrchestrator(t, StrategyQuick)
	files := []SourceFile{{Path: "a.go", Language: langparse.LanguageGo, Content: []byte(sampleSource)}}

	result, err := o.Run(context.Background(), files, nil, nil)
	require.NoError(t, err)
	doc := result.Documents["a.go"]
	require.NotNil(t, doc)
	assert.Len(t, doc.FunctionsOf(), 1, "L1 function extraction still runs under Quick")
}

func TestRun_ParallelStrategyBuildsAllFiles(t *testing.T) {
	o := newTestOrchestrator(t, StrategyParallel)
	files := []SourceFile{
		{Path: "a.go", Language: langparse.LanguageGo, Content: []byte(sampleSource)},
		{Path: "b.go", Language: langparse.LanguageGo, Content: []byte("package sample\n\nfunc Sub(a, b int) int {\n\treturn a - b\n}\n")},
	}
	result, err := o.Run(context.Background(), files, nil, nil)
	require.NoError(t, err)
	assert.Len(t, result.Documents, 2)
	assert.Equal(t, StatusOK, result.FileStatuses["a.go"])
	assert.Equal(t, StatusOK, result.FileStatuses["b.go"])
}

func TestRun_IncrementalStrategyOnlyRebuildsChangedFiles(t *testing.T) {
	o := newTestOrchestrator(t, StrategyIncremental)
	files := []SourceFile{
		{Path: "a.go", Language: langparse.LanguageGo, Content: []byte(sampleSource)},
		{Path: "b.go", Language: langparse.LanguageGo, Content: []byte("package sample\n\nfunc Sub(a, b int) int {\n\treturn a - b\n}\n")},
	}

	_, err := o.Run(context.Background(), files, nil, nil)
	require.NoError(t, err)

	result2, err := o.Run(context.Background(), files, map[string]bool{"a.go": true}, nil)
	require.NoError(t, err)
	// b.go was not rebuilt this run, but its prior result carries forward
	// from the orchestrator's incremental cache.
	assert.Contains(t, result2.Documents, "a.go")
	assert.Contains(t, result2.Documents, "b.go")
	assert.NotEqual(t, StatusOK, FileStatus(""), "sanity: status constants are distinct from the zero value")
}

func TestRun_ParseFailureIsRecordedAsFailedNotFatal(t *testing.T) {
	o := newTestOrchestrator(t, StrategyDefault)
	files := []SourceFile{{Path: "a.cobol", Language: langparse.Language("cobol"), Content: []byte("whatever")}}

	result, err := o.Run(context.Background(), files, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.FileStatuses["a.cobol"])
}

func TestRun_ProjectsSymbolGraphAcrossAllDocuments(t *testing.T) {
	o := newTestOrchestrator(t, StrategyDefault)
	files := []SourceFile{{Path: "a.go", Language: langparse.LanguageGo, Content: []byte(sampleSource)}}

	result, err := o.Run(context.Background(), files, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, result.SymbolGraph)
	assert.NotEmpty(t, result.SymbolGraph.Symbols)
}

func TestRun_ProgressCallbackReportsCompletion(t *testing.T) {
	o := newTestOrchestrator(t, StrategyDefault)
	files := []SourceFile{{Path: "a.go", Language: langparse.LanguageGo, Content: []byte(sampleSource)}}

	var lastCurrent, lastTotal int
	_, err := o.Run(context.Background(), files, nil, func(current, total int, phase string) {
		lastCurrent, lastTotal = current, total
	})
	require.NoError(t, err)
	assert.Equal(t, 1, lastCurrent)
	assert.Equal(t, 1, lastTotal)
}

func TestRun_CancelledContextStopsSequentialRun(t *testing.T) {
	o := newTestOrchestrator(t, StrategyDefault)
	files := []SourceFile{{Path: "a.go", Language: langparse.LanguageGo, Content: []byte(sampleSource)}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Run(ctx, files, nil, nil)
	assert.Error(t, err)
}
