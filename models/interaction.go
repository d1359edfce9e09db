package models

import (
	"time"
)

// UserInteraction represents a user interaction with a product.
// The table is append-only: rows are written by the marketplace frontend
// and only ever read here.
type UserInteraction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"index:idx_user_interactions" json:"user_id"`
	ProductID       string    `gorm:"index:idx_product_interactions" json:"product_id"`
	InteractionType string    `gorm:"index:idx_interaction_type" json:"interaction_type"` // "view", "favorite", "offer", "purchase"
	CreatedAt       time.Time `gorm:"index:idx_interaction_time" json:"created_at"`
}

// InteractionType constants
const (
	InteractionTypeView     = "view"
	InteractionTypeFavorite = "favorite"
	InteractionTypeOffer    = "offer"
	InteractionTypePurchase = "purchase"
)

// GetInteractionWeight returns the weight for popularity score calculation
func GetInteractionWeight(interactionType string) float64 {
	switch interactionType {
	case InteractionTypeView:
		return 1.0
	case InteractionTypeFavorite:
		return 2.0
	case InteractionTypeOffer:
		return 3.0
	case InteractionTypePurchase:
		return 5.0
	default:
		return 1.0
	}
}
