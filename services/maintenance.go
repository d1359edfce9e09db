package services

import (
	"context"
	"fmt"
	"time"

	"recs-backend/config"
	"recs-backend/database"
	"recs-backend/logger"
	"recs-backend/models"
	"recs-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaintenanceRunner is the post-run maintenance the batch driver triggers
// after the last batch. It is an interface so the hosted deployment can keep
// these as database-side procedures while tests substitute fakes.
type MaintenanceRunner interface {
	RecomputeProductScores(ctx context.Context) error
	PurgeExpiredCache(ctx context.Context) error
}

// StoreMaintenance is the SQL-backed MaintenanceRunner used when the
// procedures run inside this process rather than in the database.
type StoreMaintenance struct {
	db  *gorm.DB
	cfg *config.Config
	log *logger.Logger
}

// NewStoreMaintenance creates the default maintenance runner
func NewStoreMaintenance(cfg *config.Config, log *logger.Logger) *StoreMaintenance {
	return &StoreMaintenance{
		db:  database.GetDB(),
		cfg: cfg,
		log: log,
	}
}

// RecomputeProductScores rebuilds the popularity and trending scores from
// the interactions recorded inside the scoring window
func (m *StoreMaintenance) RecomputeProductScores(ctx context.Context) error {
	since := time.Now().AddDate(0, 0, -m.cfg.InteractionWindowDays)

	var interactions []models.UserInteraction
	err := m.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Find(&interactions).Error
	if err != nil {
		return fmt.Errorf("interaction scan failed: %w", err)
	}

	type aggregate struct {
		count          int
		totalWeight    float64
		recencyWeights float64
	}
	now := time.Now()
	byProduct := make(map[string]*aggregate)
	for _, interaction := range interactions {
		agg := byProduct[interaction.ProductID]
		if agg == nil {
			agg = &aggregate{}
			byProduct[interaction.ProductID] = agg
		}
		weight := models.GetInteractionWeight(interaction.InteractionType)
		hoursAgo := now.Sub(interaction.CreatedAt).Hours()
		agg.count++
		agg.totalWeight += weight
		agg.recencyWeights += weight * utils.CalculateRecencyFactor(hoursAgo)
	}

	scores := make([]models.ProductScore, 0, len(byProduct))
	for productID, agg := range byProduct {
		scores = append(scores, models.ProductScore{
			ProductID:        productID,
			PopularityScore:  utils.ComputePopularityScore(agg.count, agg.totalWeight),
			TrendingScore:    utils.ComputeTrendingScore(agg.count, agg.recencyWeights),
			InteractionCount: agg.count,
			UpdatedAt:        now,
		})
	}
	if len(scores) == 0 {
		return nil
	}

	err = m.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&scores).Error
	if err != nil {
		return fmt.Errorf("score upsert failed: %w", err)
	}

	m.log.Info("product scores recomputed", "products", len(scores))
	return nil
}

// PurgeExpiredCache deletes recommendation cache rows past their expiry
func (m *StoreMaintenance) PurgeExpiredCache(ctx context.Context) error {
	result := m.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.RecommendationCache{})
	if result.Error != nil {
		return fmt.Errorf("cache purge failed: %w", result.Error)
	}

	m.log.Info("expired cache entries purged", "deleted", result.RowsAffected)
	return nil
}
