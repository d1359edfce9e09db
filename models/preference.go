package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UserPreference is the per-user derived profile produced by the
// preference-learning pipeline. This job treats it as read-only input;
// the weighted maps are stored as JSON text columns.
type UserPreference struct {
	UserID             string    `gorm:"primaryKey" json:"user_id"`
	FavoriteCategories string    `json:"favorite_categories"` // JSON map: category -> weight
	FavoriteKeywords   string    `json:"favorite_keywords"`   // JSON map: keyword -> weight
	PriceRangeMin      float64   `json:"price_range_min"`
	PriceRangeMax      float64   `json:"price_range_max"`
	LastActiveAt       time.Time `gorm:"index:idx_last_active" json:"last_active_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CategoryWeights decodes the favorite category map.
// Returns an error for malformed JSON so the caller can treat a corrupt
// preference row as a per-user failure rather than silently skipping it.
func (p *UserPreference) CategoryWeights() (map[string]float64, error) {
	return decodeWeightMap(p.FavoriteCategories, "favorite_categories")
}

// KeywordWeights decodes the favorite keyword map.
func (p *UserPreference) KeywordWeights() (map[string]float64, error) {
	return decodeWeightMap(p.FavoriteKeywords, "favorite_keywords")
}

// HasPriceRange reports whether the preference carries a usable price range
func (p *UserPreference) HasPriceRange() bool {
	return p.PriceRangeMax > 0 && p.PriceRangeMax >= p.PriceRangeMin
}

func decodeWeightMap(raw, field string) (map[string]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]float64{}, nil
	}
	var weights map[string]float64
	if err := json.Unmarshal([]byte(raw), &weights); err != nil {
		return nil, fmt.Errorf("malformed %s: %w", field, err)
	}
	return weights, nil
}

// TopWeighted returns up to n keys of a weight map, heaviest first.
// Equal weights fall back to lexical order so repeated runs over the same
// snapshot produce the same candidate set.
func TopWeighted(weights map[string]float64, n int) []string {
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if weights[keys[i]] == weights[keys[j]] {
			return keys[i] < keys[j]
		}
		return weights[keys[i]] > weights[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// OnboardingPreference holds the coarse signup-time answers used for users
// with no interaction history yet.
type OnboardingPreference struct {
	UserID      string    `gorm:"primaryKey" json:"user_id"`
	BudgetRange string    `json:"budget_range"` // "min-max", e.g. "500-1500"
	Interests   string    `json:"interests"`    // JSON string array of interest tags
	CreatedAt   time.Time `json:"created_at"`
}

// interestCategories maps onboarding interest tags to the marketplace's
// fixed category vocabulary.
var interestCategories = map[string]string{
	"road":     "Road Bikes",
	"mountain": "Mountain Bikes",
	"city":     "City Bikes",
	"ebike":    "E-Bikes",
	"kids":     "Kids Bikes",
	"parts":    "Parts & Components",
	"apparel":  "Apparel",
}

// ParseBudgetRange parses the "min-max" budget string.
// Returns ok=false when the string is absent or unparseable.
func (o *OnboardingPreference) ParseBudgetRange() (min, max float64, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(o.BudgetRange), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	min, errMin := parseAmount(parts[0])
	max, errMax := parseAmount(parts[1])
	if errMin != nil || errMax != nil || max < min {
		return 0, 0, false
	}
	return min, max, true
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// InterestedCategories resolves the interest tags against the category
// vocabulary, dropping tags that do not map to anything.
func (o *OnboardingPreference) InterestedCategories() []string {
	if strings.TrimSpace(o.Interests) == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(o.Interests), &tags); err != nil {
		return nil
	}
	categories := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		category, ok := interestCategories[strings.ToLower(strings.TrimSpace(tag))]
		if ok && !seen[category] {
			categories = append(categories, category)
			seen[category] = true
		}
	}
	return categories
}
