package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"recs-backend/config"
	"recs-backend/database"
	"recs-backend/logger"
	"recs-backend/models"

	"gorm.io/gorm"
)

// CollectorService produces the per-algorithm candidate lists. Every
// collector returns IDs ordered best-first and treats a missing signal
// (no preferences, no history) as an empty list, never as an error.
type CollectorService struct {
	db  *gorm.DB
	cfg *config.Config
	log *logger.Logger
}

// NewCollectorService creates a new collector service instance
func NewCollectorService(cfg *config.Config, log *logger.Logger) *CollectorService {
	return &CollectorService{
		db:  database.GetDB(),
		cfg: cfg,
		log: log,
	}
}

// Trending returns the top active products by precomputed trending score.
// No personalization.
func (s *CollectorService) Trending(ctx context.Context, limit int) ([]string, error) {
	var ids []string
	err := withTrendingOrder(activeProducts(s.db.WithContext(ctx))).
		Limit(limit).
		Pluck("products.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("trending query failed: %w", err)
	}
	return ids, nil
}

// CategoryBased recommends popular active products from the user's top
// favorite categories, narrowed to the widened favorite price band when
// one exists. Users without a preference row get an empty list.
func (s *CollectorService) CategoryBased(ctx context.Context, userID string, limit int) ([]string, error) {
	pref, err := s.loadPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return nil, nil
	}

	weights, err := pref.CategoryWeights()
	if err != nil {
		return nil, err
	}
	categories := models.TopWeighted(weights, s.cfg.FavoriteCategoryCount)
	if len(categories) == 0 {
		return nil, nil
	}

	query := activeProducts(s.db.WithContext(ctx)).
		Where("products.category IN ?", categories)
	if pref.HasPriceRange() {
		query = applyPriceBand(query, pref.PriceRangeMin, pref.PriceRangeMax)
	}

	var ids []string
	err = withPopularityOrder(query).Limit(limit).Pluck("products.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("category query failed: %w", err)
	}
	return ids, nil
}

// Collaborative recommends products viewed by the users whose recent view
// history overlaps the most with this user's. Users with no recent views
// get an empty list.
func (s *CollectorService) Collaborative(ctx context.Context, userID string, limit int) ([]string, error) {
	since := time.Now().AddDate(0, 0, -s.cfg.InteractionWindowDays)

	// The user's own recently viewed products
	var recentViews []string
	err := s.db.WithContext(ctx).Model(&models.UserInteraction{}).
		Where("user_id = ? AND interaction_type = ? AND created_at >= ?",
			userID, models.InteractionTypeView, since).
		Order("created_at DESC").
		Limit(s.cfg.RecentViewLimit).
		Pluck("product_id", &recentViews).Error
	if err != nil {
		return nil, fmt.Errorf("recent views query failed: %w", err)
	}
	recentViews = dedupePreserveOrder(recentViews)
	if len(recentViews) == 0 {
		return nil, nil
	}

	// Other users' views of those same products, capped to bound the scan
	var coViews []models.UserInteraction
	err = s.db.WithContext(ctx).
		Where("product_id IN ? AND user_id != ? AND interaction_type = ? AND created_at >= ?",
			recentViews, userID, models.InteractionTypeView, since).
		Limit(s.cfg.CoViewerScanLimit).
		Find(&coViews).Error
	if err != nil {
		return nil, fmt.Errorf("co-view query failed: %w", err)
	}
	if len(coViews) == 0 {
		return nil, nil
	}

	topViewers := rankCoViewers(coViews, s.cfg.TopCoViewerCount)
	s.log.Debug("collaborative overlap computed",
		"user_id", userID, "seed_products", len(recentViews), "co_viewers", len(topViewers))

	// Everything the most-overlapping users viewed recently
	var candidates []models.UserInteraction
	err = s.db.WithContext(ctx).
		Where("user_id IN ? AND interaction_type = ? AND created_at >= ?",
			topViewers, models.InteractionTypeView, since).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("candidate views query failed: %w", err)
	}

	alreadyViewed := make(map[string]bool, len(recentViews))
	for _, id := range recentViews {
		alreadyViewed[id] = true
	}

	frequency := make(map[string]int)
	for _, interaction := range candidates {
		if !alreadyViewed[interaction.ProductID] {
			frequency[interaction.ProductID]++
		}
	}

	ids := make([]string, 0, len(frequency))
	for id := range frequency {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if frequency[ids[i]] == frequency[ids[j]] {
			return ids[i] < ids[j]
		}
		return frequency[ids[i]] > frequency[ids[j]]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// rankCoViewers counts how many of the seed products each user viewed and
// keeps the heaviest overlappers. Ties fall back to user ID for stable runs.
func rankCoViewers(coViews []models.UserInteraction, keep int) []string {
	overlap := make(map[string]map[string]bool)
	for _, interaction := range coViews {
		if overlap[interaction.UserID] == nil {
			overlap[interaction.UserID] = make(map[string]bool)
		}
		overlap[interaction.UserID][interaction.ProductID] = true
	}

	users := make([]string, 0, len(overlap))
	for userID := range overlap {
		users = append(users, userID)
	}
	sort.Slice(users, func(i, j int) bool {
		if len(overlap[users[i]]) == len(overlap[users[j]]) {
			return users[i] < users[j]
		}
		return len(overlap[users[i]]) > len(overlap[users[j]])
	})
	if len(users) > keep {
		users = users[:keep]
	}
	return users
}

// KeywordBased searches active products for the user's heaviest favorite
// keywords and re-scores the hits by the summed weight of the keywords each
// one matches. Users without keyword preferences get an empty list.
func (s *CollectorService) KeywordBased(ctx context.Context, userID string, limit int) ([]string, error) {
	pref, err := s.loadPreference(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return nil, nil
	}

	weights, err := pref.KeywordWeights()
	if err != nil {
		return nil, err
	}
	keywords := models.TopWeighted(weights, s.cfg.FavoriteKeywordCount)
	if len(keywords) == 0 {
		return nil, nil
	}

	var products []models.Product
	err = applyKeywordSearch(activeProducts(s.db.WithContext(ctx)), keywords).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("keyword query failed: %w", err)
	}

	scores := make(map[string]float64, len(products))
	for _, product := range products {
		text := strings.ToLower(product.DisplayName + " " + product.Description)
		for _, keyword := range keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				weight := weights[keyword]
				if weight == 0 {
					weight = 1 // keywords missing from the weight table still count
				}
				scores[product.ID] += weight
			}
		}
	}

	ids := make([]string, 0, len(scores))
	for id, score := range scores {
		if score > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] == scores[ids[j]] {
			return ids[i] < ids[j]
		}
		return scores[ids[i]] > scores[ids[j]]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// OnboardingBased filters active products by the coarse signup answers:
// budget range and interest tags mapped to the category vocabulary. This is
// the main signal for users with no interaction history yet.
func (s *CollectorService) OnboardingBased(ctx context.Context, userID string, limit int) ([]string, error) {
	var onboarding models.OnboardingPreference
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&onboarding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("onboarding preference query failed: %w", err)
	}

	query := activeProducts(s.db.WithContext(ctx))
	if categories := onboarding.InterestedCategories(); len(categories) > 0 {
		query = query.Where("products.category IN ?", categories)
	}
	if min, max, ok := onboarding.ParseBudgetRange(); ok {
		query = query.Where("products.price BETWEEN ? AND ?", min, max)
	}

	var ids []string
	err = withPopularityOrder(query).Limit(limit).Pluck("products.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("onboarding query failed: %w", err)
	}
	return ids, nil
}

// HasInteractions reports whether the user has any recorded interaction,
// which decides whether the personalized collectors run at all
func (s *CollectorService) HasInteractions(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserInteraction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("interaction count query failed: %w", err)
	}
	return count > 0, nil
}

// loadPreference fetches the user's preference row, mapping "no row" to nil
func (s *CollectorService) loadPreference(ctx context.Context, userID string) (*models.UserPreference, error) {
	var pref models.UserPreference
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("preference query failed: %w", err)
	}
	return &pref, nil
}
