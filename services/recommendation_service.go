package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recs-backend/config"
	"recs-backend/database"
	"recs-backend/logger"
	"recs-backend/models"
	"recs-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlgorithmVersion is stamped on every cache row this job writes
const AlgorithmVersion = "hybrid_v1"

// RecommendationService runs the per-user pipeline: cache freshness check,
// signal collection, rank fusion and the cache replacement write.
type RecommendationService struct {
	db         *gorm.DB
	cfg        *config.Config
	log        *logger.Logger
	collectors *CollectorService
}

// NewRecommendationService creates a new recommendation service instance
func NewRecommendationService(cfg *config.Config, log *logger.Logger, collectors *CollectorService) *RecommendationService {
	return &RecommendationService{
		db:         database.GetDB(),
		cfg:        cfg,
		log:        log,
		collectors: collectors,
	}
}

// UserRefreshResult captures the outcome for one user so the batch driver
// can aggregate without any cross-goroutine error propagation.
type UserRefreshResult struct {
	UserID          string
	Processed       bool // a fresh cache row was written
	Skipped         bool // an unexpired row already existed
	CollectorErrors int  // personalized collectors that failed and contributed nothing
	Err             error // fatal for this user (freshness check or write failed)
}

// Errored reports whether anything went wrong for this user
func (r UserRefreshResult) Errored() bool {
	return r.Err != nil || r.CollectorErrors > 0
}

// RefreshUser recomputes and replaces one user's recommendation cache.
// A user with a valid unexpired entry is skipped untouched. A failing
// collector is logged and counted but the remaining signals still merge
// and the cache row is still written.
func (s *RecommendationService) RefreshUser(ctx context.Context, userID string) UserRefreshResult {
	result := UserRefreshResult{UserID: userID}

	fresh, err := s.hasFreshCache(ctx, userID)
	if err != nil {
		result.Err = fmt.Errorf("cache freshness check failed: %w", err)
		return result
	}
	if fresh {
		result.Skipped = true
		return result
	}

	lists, collectorErrors := s.collectSignals(ctx, userID)
	result.CollectorErrors = collectorErrors

	merged := utils.MergeRankedLists(lists, s.cfg.DefaultRecLimit)

	if err := s.writeCache(ctx, userID, merged); err != nil {
		result.Err = err
		return result
	}
	result.Processed = true
	return result
}

// Preview runs collection and fusion for one user without touching the
// cache, for inspection via the HTTP surface.
func (s *RecommendationService) Preview(ctx context.Context, userID string) ([]string, error) {
	lists, collectorErrors := s.collectSignals(ctx, userID)
	if collectorErrors > 0 {
		s.log.Warn("preview computed with partial signals",
			"user_id", userID, "collector_errors", collectorErrors)
	}
	merged := utils.MergeRankedLists(lists, s.cfg.DefaultRecLimit)
	return utils.MergedIDs(merged), nil
}

// collectSignals gathers every applicable collector's list. Onboarding and
// trending always run; the personalized collectors only run for users with
// at least one recorded interaction. Each collector fails independently:
// an error is logged and counted, and that signal contributes nothing.
func (s *RecommendationService) collectSignals(ctx context.Context, userID string) ([]utils.RankedList, int) {
	limit := s.cfg.DefaultRecLimit
	lists := make([]utils.RankedList, 0, 5)
	collectorErrors := 0

	collect := func(algorithm string, run func() ([]string, error)) {
		ids, err := run()
		if err != nil {
			collectorErrors++
			s.log.Warn("collector failed, signal dropped",
				"user_id", userID, "algorithm", algorithm, "error", err)
			return
		}
		if len(ids) > 0 {
			lists = append(lists, utils.RankedList{Algorithm: algorithm, ProductIDs: ids})
		}
	}

	collect(utils.AlgorithmOnboarding, func() ([]string, error) {
		return s.collectors.OnboardingBased(ctx, userID, limit)
	})
	collect(utils.AlgorithmTrending, func() ([]string, error) {
		return s.collectors.Trending(ctx, limit)
	})

	hasHistory, err := s.collectors.HasInteractions(ctx, userID)
	if err != nil {
		collectorErrors++
		s.log.Warn("interaction lookup failed, personalized signals dropped",
			"user_id", userID, "error", err)
		return lists, collectorErrors
	}
	if !hasHistory {
		return lists, collectorErrors
	}

	collect(utils.AlgorithmCategory, func() ([]string, error) {
		return s.collectors.CategoryBased(ctx, userID, limit)
	})
	collect(utils.AlgorithmCollaborative, func() ([]string, error) {
		return s.collectors.Collaborative(ctx, userID, limit)
	})
	collect(utils.AlgorithmKeyword, func() ([]string, error) {
		return s.collectors.KeywordBased(ctx, userID, limit)
	})

	return lists, collectorErrors
}

// hasFreshCache reports whether an unexpired personalized entry exists
func (s *RecommendationService) hasFreshCache(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RecommendationCache{}).
		Where("user_id = ? AND rec_type = ? AND expires_at > ?",
			userID, models.RecTypePersonalized, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// writeCache replaces the user's cache entry: delete everything for the
// (user, type) pair, then insert the new row. The two statements are not
// wrapped in a transaction; overlapping runs can briefly leave no row or
// duplicate rows, which the serving API tolerates.
func (s *RecommendationService) writeCache(ctx context.Context, userID string, merged []utils.MergedItem) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND rec_type = ?", userID, models.RecTypePersonalized).
		Delete(&models.RecommendationCache{}).Error
	if err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}

	encoded, err := json.Marshal(utils.MergedIDs(merged))
	if err != nil {
		return fmt.Errorf("cache encode failed: %w", err)
	}

	now := time.Now()
	entry := models.RecommendationCache{
		ID:               uuid.New().String(),
		UserID:           userID,
		RecType:          models.RecTypePersonalized,
		ProductIDs:       string(encoded),
		Score:            utils.TopScore(merged),
		AlgorithmVersion: AlgorithmVersion,
		ExpiresAt:        now.Add(time.Duration(s.cfg.CacheTTLMinutes) * time.Minute),
		CreatedAt:        now,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("cache insert failed: %w", err)
	}
	return nil
}

// GetCacheStats returns statistics about the recommendation cache
func (s *RecommendationService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	var totalEntries, validEntries, totalInteractions, totalProducts int64

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.RecommendationCache{}).Count(&totalEntries).Error; err != nil {
		return nil, fmt.Errorf("cache stats query failed: %w", err)
	}
	db.Model(&models.RecommendationCache{}).
		Where("expires_at > ?", time.Now()).
		Count(&validEntries)
	db.Model(&models.UserInteraction{}).Count(&totalInteractions)
	db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Count(&totalProducts)

	stats := map[string]interface{}{
		"cache_entries":       totalEntries,
		"valid_cache_entries": validEntries,
		"total_interactions":  totalInteractions,
		"active_products":     totalProducts,
		"algorithm_version":   AlgorithmVersion,
		"cache_ttl_minutes":   s.cfg.CacheTTLMinutes,
	}
	return stats, nil
}
