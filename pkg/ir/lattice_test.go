// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeet_TopIsIdentity(t *testing.T) {
	c := Const(5)
	assert.Equal(t, c.String(), Meet(Top, c).String())
	assert.Equal(t, c.String(), Meet(c, Top).String())
	assert.True(t, Meet(Top, Top).IsTop())
}

func TestMeet_BottomAbsorbs(t *testing.T) {
	assert.True(t, Meet(Bottom, Const(5)).IsBottom())
	assert.True(t, Meet(Const(5), Bottom).IsBottom())
}

func TestMeet_EqualConstantsStayConst(t *testing.T) {
	m := Meet(Const(5), Const(5))
	v, ok := m.Value()
	assert.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestMeet_DifferentConstantsGoBottom(t *testing.T) {
	assert.True(t, Meet(Const(5), Const(6)).IsBottom())
}

func TestMeet_CommutativeAndIdempotent(t *testing.T) {
	a, b := Const(3), Const(4)
	assert.Equal(t, Meet(a, b).String(), Meet(b, a).String())
	assert.Equal(t, a.String(), Meet(a, a).String())
}

func TestConstantValue_NumericEquality(t *testing.T) {
	// int and int64 carrying the same numeric value should still meet to
	// Const, not spuriously diverge to Bottom.
	m := Meet(Const(5), Const(int64(5)))
	assert.True(t, m.IsConst())
}
