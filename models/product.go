package models

import (
	"time"
)

// Product represents a marketplace listing
// This is the core domain model with GORM tags for database operations
type Product struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"index:idx_display_name" json:"display_name"`
	Description string    `json:"description"`
	Category    string    `gorm:"index:idx_category" json:"category"`
	Price       float64   `gorm:"index:idx_price" json:"price"`
	Status      string    `gorm:"index:idx_status" json:"status"`
	SellerID    string    `gorm:"index:idx_seller" json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Product status constants
const (
	ProductStatusActive = "active"
	ProductStatusSold   = "sold"
	ProductStatusDraft  = "draft"
)

// ProductScore holds the precomputed popularity signals for one product.
// Recomputed by the maintenance routine after each job run; collectors
// only ever read it.
type ProductScore struct {
	ProductID        string    `gorm:"primaryKey" json:"product_id"`
	TrendingScore    float64   `gorm:"index:idx_trending" json:"trending_score"`
	PopularityScore  float64   `gorm:"index:idx_popularity" json:"popularity_score"`
	InteractionCount int       `json:"interaction_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}
