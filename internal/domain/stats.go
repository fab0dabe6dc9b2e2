package domain

import (
	"math"
	"strconv"
)

// VotingStats is derived from a story's votes on demand, never stored.
type VotingStats struct {
	Average      *float64       `json:"average"`
	Distribution map[string]int `json:"distribution"`
	MostFrequent string         `json:"mostFrequent,omitempty"`
}

// CalculateStats computes the average over numeric votes, the rounded
// percentage distribution over all votes, and the most frequent value.
// Ties on the maximum count go to the first value that reached it.
func CalculateStats(votes []Vote) VotingStats {
	stats := VotingStats{Distribution: map[string]int{}}
	if len(votes) == 0 {
		return stats
	}

	counts := map[string]int{}
	maxCount := 0
	for _, v := range votes {
		counts[v.Value]++
		if counts[v.Value] > maxCount {
			maxCount = counts[v.Value]
			stats.MostFrequent = v.Value
		}
	}

	for value, n := range counts {
		stats.Distribution[value] = int(math.Round(float64(n) / float64(len(votes)) * 100))
	}

	var sum float64
	var numeric int
	for _, v := range votes {
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			continue
		}
		sum += f
		numeric++
	}
	if numeric > 0 {
		avg := sum / float64(numeric)
		stats.Average = &avg
	}
	return stats
}
