// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheKey identifies one scorer result by request string and catalog
// snapshot generation; a fresh snapshot swap invalidates every key sharing
// its old generation implicitly, since the key itself changes (spec §4.9
// "Caching").
func cacheKey(request string, snapshotID uint64) string {
	return fmt.Sprintf("%d:%s", snapshotID, request)
}

// scoreCache is a small LRU in front of each scorer, keyed per
// (request-string, catalog-snapshot-id).
type scoreCache struct {
	lru *lru.Cache[string, map[string]float64]
}

func newScoreCache(size int) *scoreCache {
	if size <= 0 {
		size = 512
	}
	c, err := lru.New[string, map[string]float64](size)
	if err != nil {
		// Only returns an error for a non-positive size, already guarded above.
		panic(err)
	}
	return &scoreCache{lru: c}
}

func (c *scoreCache) get(request string, snapshotID uint64) (map[string]float64, bool) {
	return c.lru.Get(cacheKey(request, snapshotID))
}

func (c *scoreCache) put(request string, snapshotID uint64, scores map[string]float64) {
	c.lru.Add(cacheKey(request, snapshotID), scores)
}
