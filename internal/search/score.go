package search

import "github.com/hyperjump/ti4lookup/internal/keyword"

// NormalizeScores scales hit scores to [0,1] by the best score, keeping hit order.
func NormalizeScores(hits []keyword.Hit) []float64 {
	out := make([]float64, len(hits))
	if len(hits) == 0 {
		return out
	}
	maxScore := hits[0].Score
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	for i, h := range hits {
		if maxScore > 0 {
			out[i] = h.Score / maxScore
		}
	}
	return out
}
