// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeSet_MarkAddedClearsDeleted(t *testing.T) {
	cs := NewChangeSet()
	cs.MarkDeleted("a.go")
	cs.MarkAdded("a.go")
	assert.True(t, cs.Added["a.go"])
	assert.False(t, cs.Deleted["a.go"])
}

func TestChangeSet_MarkDeletedSkipsRenameTarget(t *testing.T) {
	cs := NewChangeSet()
	cs.MarkAsRenamed("old.go", "new.go")
	cs.MarkDeleted("new.go")
	assert.False(t, cs.Deleted["new.go"], "a rename target must never also appear as deleted")
}

func TestChangeSet_MarkAsRenamedClearsAddedAndDeleted(t *testing.T) {
	cs := NewChangeSet()
	cs.MarkAdded("new.go")
	cs.MarkDeleted("old.go")
	cs.MarkAsRenamed("old.go", "new.go")
	assert.False(t, cs.Added["new.go"])
	assert.False(t, cs.Deleted["old.go"])
	assert.Equal(t, "new.go", cs.Renamed["old.go"])
}

func TestChangeSet_Validate(t *testing.T) {
	cs := NewChangeSet()
	cs.MarkAdded("a.go")
	cs.MarkModified("b.go")
	cs.MarkDeleted("c.go")
	require.NoError(t, cs.Validate())
}

func TestChangeSet_AllChangedIsSortedUnion(t *testing.T) {
	cs := NewChangeSet()
	cs.MarkAdded("z.go")
	cs.MarkModified("a.go")
	cs.MarkAsRenamed("m.go", "n.go")
	all := cs.AllChanged()
	assert.Equal(t, []string{"a.go", "m.go", "n.go", "z.go"}, all)
}

func TestChangeSet_HasChanges(t *testing.T) {
	cs := NewChangeSet()
	assert.False(t, cs.HasChanges())
	cs.MarkModified("a.go")
	assert.True(t, cs.HasChanges())
}
