// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ccferrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRecoverable_MisconfigurationIsNotRecoverable(t *testing.T) {
	err := &Misconfiguration{Field: "strategy", Reason: "unknown value"}
	assert.False(t, IsRecoverable(err))
}

func TestIsRecoverable_OtherErrorsAreRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(&ParserError{FilePath: "a.go", Err: errors.New("boom")}))
	assert.True(t, IsRecoverable(&CacheCorruption{Key: "k", Err: errors.New("boom")}))
}

func TestIsRecoverable_WrappedMisconfigurationIsStillNotRecoverable(t *testing.T) {
	wrapped := &LayerInternalError{Layer: "L5", FilePath: "a.go", Err: &Misconfiguration{Field: "x", Reason: "y"}}
	// errors.As walks the Unwrap chain, so a Misconfiguration nested inside
	// any wrapper is still treated as non-recoverable.
	assert.False(t, IsRecoverable(wrapped))
}

func TestParserError_UnwrapExposesUnderlyingError(t *testing.T) {
	root := errors.New("tree-sitter panic")
	err := &ParserError{FilePath: "a.go", Language: "go", Err: root}
	assert.ErrorIs(t, err, root)
}

func TestResolutionError_MessageIncludesSymbolWhenPresent(t *testing.T) {
	err := &ResolutionError{FilePath: "a.go", Symbol: "widgets.New", Err: errors.New("not found")}
	assert.Contains(t, err.Error(), "widgets.New")

	bare := &ResolutionError{FilePath: "a.go", Err: errors.New("not found")}
	assert.NotContains(t, bare.Error(), " in ")
}
