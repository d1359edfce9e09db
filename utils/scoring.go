package utils

import (
	"math"
)

// =============================================================================
// Popularity Score Utilities
// =============================================================================

// ComputePopularityScore calculates a product's popularity from its
// interactions within the scoring window
func ComputePopularityScore(interactionCount int, totalWeight float64) float64 {
	if interactionCount == 0 {
		return 0
	}

	avgWeight := totalWeight / float64(interactionCount)
	return float64(interactionCount) * avgWeight
}

// CalculateRecencyFactor calculates a decay factor based on time.
// More recent interactions count for more.
func CalculateRecencyFactor(hoursAgo float64) float64 {
	// Exponential decay: e^(-t/24)
	// Half-life of roughly a day
	return math.Exp(-hoursAgo / 24.0)
}

// ComputeTrendingScore weights the popularity aggregate by recency so that
// products with a recent burst of interactions outrank steadily popular ones
func ComputeTrendingScore(interactionCount int, recencyWeightedTotal float64) float64 {
	if interactionCount == 0 {
		return 0
	}
	return recencyWeightedTotal * math.Log1p(float64(interactionCount))
}
