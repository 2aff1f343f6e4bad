// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClock_NowReflectsWallClock(t *testing.T) {
	before := time.Now()
	got := SystemClock{}.Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
