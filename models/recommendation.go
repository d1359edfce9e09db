package models

import (
	"encoding/json"
	"time"
)

// RecommendationCache is the persisted output of one merge run for one user.
// At most one logical row per (user, type) exists at a time; the job enforces
// this by deleting the old rows before inserting the replacement, there is no
// database constraint backing it.
type RecommendationCache struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"index:idx_rec_user" json:"user_id"`
	RecType          string    `gorm:"index:idx_rec_type" json:"rec_type"`
	ProductIDs       string    `json:"product_ids"` // JSON ordered array
	Score            float64   `json:"score"`
	AlgorithmVersion string    `json:"algorithm_version"`
	ExpiresAt        time.Time `gorm:"index:idx_rec_expiry" json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// RecType constants
const (
	RecTypePersonalized = "personalized"
)

// DecodeProductIDs returns the cached product IDs in recommendation order
func (r *RecommendationCache) DecodeProductIDs() ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(r.ProductIDs), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// IsExpired reports whether the entry is past its expiry at the given instant
func (r *RecommendationCache) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// RefreshJobResponse is the JSON body returned by the refresh endpoint
type RefreshJobResponse struct {
	Success          bool   `json:"success"`
	Processed        int    `json:"processed"`
	Errors           int    `json:"errors"`
	TotalActiveUsers int    `json:"total_active_users"`
	Timestamp        string `json:"timestamp"`
}

// JobErrorResponse is returned with HTTP 500 on a top-level job failure
type JobErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ErrorResponse represents a generic API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PreviewResponse is the body of the recommendation preview endpoint
type PreviewResponse struct {
	UserID     string   `json:"user_id"`
	ProductIDs []string `json:"product_ids"`
	Count      int      `json:"count"`
}
