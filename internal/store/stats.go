package store

import (
	"math"
	"sort"
)

// Limits for the derived stats views.
const (
	recentLimit = 10
	topLimit    = 5
)

// Stats is the derived view over the landing log. It is recomputed on demand
// and never persisted.
type Stats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Best    int     `json:"best"`
	Recent  []int   `json:"recent"`
	Top     []int   `json:"top"`
}

// ComputeStats derives the stats view from a snapshot of the landing log.
// It is a pure function and safe to call concurrently with store writes.
func ComputeStats(landings []Landing) Stats {
	scores := make([]int, 0, len(landings))
	for _, l := range landings {
		scores = append(scores, l.Score)
	}

	count := len(scores)

	sum := 0
	best := 0

	for _, s := range scores {
		sum += s

		if s > best {
			best = s
		}
	}

	average := 0.0
	if count > 0 {
		average = math.Round(float64(sum)/float64(count)*100) / 100
	}

	return Stats{
		Count:   count,
		Average: average,
		Best:    best,
		Recent:  recentScores(scores),
		Top:     topScores(scores),
	}
}

// recentScores returns the last recentLimit scores, newest first.
func recentScores(scores []int) []int {
	start := len(scores) - recentLimit
	if start < 0 {
		start = 0
	}

	recent := make([]int, 0, len(scores)-start)
	for i := len(scores) - 1; i >= start; i-- {
		recent = append(recent, scores[i])
	}

	return recent
}

// topScores returns the topLimit highest scores in descending order. Ties
// keep the earlier entry first, so the sort is stable over original position.
func topScores(scores []int) []int {
	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}

	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	limit := topLimit
	if limit > len(indices) {
		limit = len(indices)
	}

	top := make([]int, 0, limit)
	for _, idx := range indices[:limit] {
		top = append(top, scores[idx])
	}

	return top
}
