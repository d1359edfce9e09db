package services

import (
	"strings"

	"recs-backend/models"

	"gorm.io/gorm"
)

// =============================================================================
// Query Building Helpers - shared GORM scopes for the signal collectors
// =============================================================================

// Price band factors applied around a user's favorite price range: a stated
// range of [min, max] admits products priced in [0.7*min, 1.3*max].
const (
	PriceBandLowerFactor = 0.7
	PriceBandUpperFactor = 1.3
)

// activeProducts starts a product query restricted to live listings
func activeProducts(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Product{}).Where("products.status = ?", models.ProductStatusActive)
}

// withPopularityOrder joins the score table and orders best-first.
// Product ID is the secondary key so equal scores rank deterministically.
func withPopularityOrder(query *gorm.DB) *gorm.DB {
	return query.
		Joins("LEFT JOIN product_scores ON product_scores.product_id = products.id").
		Order("product_scores.popularity_score DESC").
		Order("products.id ASC")
}

// withTrendingOrder joins the score table and orders by trending score
func withTrendingOrder(query *gorm.DB) *gorm.DB {
	return query.
		Joins("LEFT JOIN product_scores ON product_scores.product_id = products.id").
		Order("product_scores.trending_score DESC").
		Order("products.id ASC")
}

// applyPriceBand narrows a product query to the widened favorite price range
func applyPriceBand(query *gorm.DB, min, max float64) *gorm.DB {
	return query.Where("products.price BETWEEN ? AND ?",
		min*PriceBandLowerFactor, max*PriceBandUpperFactor)
}

// applyKeywordSearch adds an OR text filter across display name and
// description for every given keyword
func applyKeywordSearch(query *gorm.DB, keywords []string) *gorm.DB {
	if len(keywords) == 0 {
		return query
	}
	conditions := make([]string, 0, len(keywords))
	args := make([]interface{}, 0, len(keywords)*2)
	for _, keyword := range keywords {
		pattern := "%" + strings.ToLower(keyword) + "%"
		conditions = append(conditions, "(LOWER(products.display_name) LIKE ? OR LOWER(products.description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	// Outer parens keep the OR chain from bleeding into the surrounding
	// AND conditions
	return query.Where("("+strings.Join(conditions, " OR ")+")", args...)
}

// dedupePreserveOrder drops repeated IDs, keeping the first occurrence
func dedupePreserveOrder(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
