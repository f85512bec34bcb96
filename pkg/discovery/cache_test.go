// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCache_MissThenHit(t *testing.T) {
	t.Parallel()

	c := newScoreCache(8)
	_, ok := c.get("email bob", 1)
	assert.False(t, ok)

	c.put("email bob", 1, map[string]float64{"send_email": 0.9})
	got, ok := c.get("email bob", 1)
	require.True(t, ok)
	assert.Equal(t, 0.9, got["send_email"])
}

func TestScoreCache_SnapshotSwapInvalidates(t *testing.T) {
	t.Parallel()

	c := newScoreCache(8)
	c.put("email bob", 1, map[string]float64{"send_email": 0.9})

	_, ok := c.get("email bob", 2)
	assert.False(t, ok, "a new snapshot id must miss the old generation's cache entry")
}
