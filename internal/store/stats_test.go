// Package store_test tests the stats aggregator.
package store_test

import (
	"testing"

	"github.com/craigybabyj/landing-judge/internal/store"
	"github.com/stretchr/testify/assert"
)

func landingsFromScores(scores []int) []store.Landing {
	landings := make([]store.Landing, 0, len(scores))
	for _, s := range scores {
		landings = append(landings, store.Landing{Score: s, TS: "2026-08-30T10:00:00Z"})
	}

	return landings
}

func TestComputeStatsEmpty(t *testing.T) {
	t.Parallel()

	stats := store.ComputeStats(nil)

	assert.Equal(t, 0, stats.Count)
	assert.InDelta(t, 0.0, stats.Average, 0.0001)
	assert.Equal(t, 0, stats.Best)
	assert.Empty(t, stats.Recent)
	assert.NotNil(t, stats.Recent)
	assert.Empty(t, stats.Top)
	assert.NotNil(t, stats.Top)
}

func TestComputeStatsAverageRounding(t *testing.T) {
	t.Parallel()

	stats := store.ComputeStats(landingsFromScores([]int{1, 2, 2}))

	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 1.67, stats.Average, 0.0001)
	assert.Equal(t, 2, stats.Best)
}

func TestComputeStatsTopTieBreak(t *testing.T) {
	t.Parallel()

	// The three 9s keep their original insertion order.
	stats := store.ComputeStats(landingsFromScores([]int{5, 9, 9, 3, 9}))

	assert.Equal(t, []int{9, 9, 9, 5, 3}, stats.Top)
}

func TestComputeStatsRecentNewestFirst(t *testing.T) {
	t.Parallel()

	scores := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 1, 2}
	stats := store.ComputeStats(landingsFromScores(scores))

	assert.Equal(t, []int{2, 1, 10, 9, 8, 7, 6, 5, 4, 3}, stats.Recent)
}

func TestComputeStatsTopShorterThanLimit(t *testing.T) {
	t.Parallel()

	stats := store.ComputeStats(landingsFromScores([]int{4, 7}))

	assert.Equal(t, []int{7, 4}, stats.Top)
	assert.Equal(t, []int{7, 4}, stats.Recent)
}
