package utils

import (
	"sort"
)

// =============================================================================
// Algorithm Weight Constants
// =============================================================================

// Per-algorithm weights applied on top of the position score during fusion
const (
	WeightOnboarding    = 1.0
	WeightKeyword       = 0.95
	WeightCategory      = 0.9
	WeightTrending      = 0.85
	WeightCollaborative = 0.8
	WeightPopular       = 0.7
	WeightUnknown       = 0.5
)

// Algorithm names used as fusion input labels and in cache metadata
const (
	AlgorithmOnboarding    = "onboarding"
	AlgorithmKeyword       = "keyword"
	AlgorithmCategory      = "category"
	AlgorithmTrending      = "trending"
	AlgorithmCollaborative = "collaborative"
	AlgorithmPopular       = "popular"
)

// DefaultMergeLimit caps the merged list when the caller passes no limit
const DefaultMergeLimit = 50

// AlgorithmWeight returns the fusion weight for an algorithm name.
// Unknown names get a conservative default rather than an error.
func AlgorithmWeight(algorithm string) float64 {
	switch algorithm {
	case AlgorithmOnboarding:
		return WeightOnboarding
	case AlgorithmKeyword:
		return WeightKeyword
	case AlgorithmCategory:
		return WeightCategory
	case AlgorithmTrending:
		return WeightTrending
	case AlgorithmCollaborative:
		return WeightCollaborative
	case AlgorithmPopular:
		return WeightPopular
	default:
		return WeightUnknown
	}
}

// =============================================================================
// Rank Fusion
// =============================================================================

// RankedList is the ordered output of one signal collector
type RankedList struct {
	Algorithm  string
	ProductIDs []string
}

// MergedItem is one product in the fused result with its accumulated score
type MergedItem struct {
	ProductID string
	Score     float64
}

// PositionScore assigns a rank-decay score to position i of a list of
// length length: the first item scores ~1.0, the last ~0.1.
func PositionScore(i, length int) float64 {
	if length <= 0 || i < 0 || i >= length {
		return 0
	}
	return 1.0 - (float64(i)/float64(length))*0.9
}

// MergeRankedLists fuses the collectors' ordered lists into one ranking.
// Each item contributes positionScore * algorithmWeight, and a product
// appearing in several lists accumulates the contributions (sum, not max).
// Ties break on product ID so identical inputs always fuse to the identical
// output order.
func MergeRankedLists(lists []RankedList, limit int) []MergedItem {
	if limit <= 0 {
		limit = DefaultMergeLimit
	}

	scores := make(map[string]float64)
	order := make([]string, 0)

	for _, list := range lists {
		weight := AlgorithmWeight(list.Algorithm)
		length := len(list.ProductIDs)
		for i, productID := range list.ProductIDs {
			if productID == "" {
				continue
			}
			if _, seen := scores[productID]; !seen {
				order = append(order, productID)
			}
			scores[productID] += PositionScore(i, length) * weight
		}
	}

	merged := make([]MergedItem, 0, len(order))
	for _, productID := range order {
		merged = append(merged, MergedItem{ProductID: productID, Score: scores[productID]})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score == merged[j].Score {
			return merged[i].ProductID < merged[j].ProductID
		}
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// MergedIDs strips the scores off a merged ranking
func MergedIDs(merged []MergedItem) []string {
	ids := make([]string, len(merged))
	for i, item := range merged {
		ids[i] = item.ProductID
	}
	return ids
}

// TopScore returns the best accumulated score of a merged ranking, 0 if empty
func TopScore(merged []MergedItem) float64 {
	if len(merged) == 0 {
		return 0
	}
	return merged[0].Score
}
