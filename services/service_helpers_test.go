package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"recs-backend/config"
	"recs-backend/database"
	"recs-backend/logger"
	"recs-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database for one test and points the
// package-level handle at it so the service constructors pick it up
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Product{},
		&models.ProductScore{},
		&models.UserInteraction{},
		&models.UserPreference{},
		&models.OnboardingPreference{},
		&models.RecommendationCache{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		ActiveUserWindowHours: 24,
		MaxUsersPerRun:        1000,
		UserBatchSize:         100,
		CacheTTLMinutes:       15,
		DefaultRecLimit:       50,
		InteractionWindowDays: 30,
		RecentViewLimit:       20,
		CoViewerScanLimit:     1000,
		TopCoViewerCount:      10,
		FavoriteCategoryCount: 3,
		FavoriteKeywordCount:  5,
	}
}

// =============================================================================
// Seed Helpers
// =============================================================================

func seedProduct(t *testing.T, db *gorm.DB, id, name, description, category string, price float64, status string) {
	t.Helper()
	product := models.Product{
		ID:          id,
		DisplayName: name,
		Description: description,
		Category:    category,
		Price:       price,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product %s: %v", id, err)
	}
}

func seedScore(t *testing.T, db *gorm.DB, productID string, trending, popularity float64) {
	t.Helper()
	score := models.ProductScore{
		ProductID:       productID,
		TrendingScore:   trending,
		PopularityScore: popularity,
		UpdatedAt:       time.Now(),
	}
	if err := db.Create(&score).Error; err != nil {
		t.Fatalf("failed to seed score for %s: %v", productID, err)
	}
}

func seedView(t *testing.T, db *gorm.DB, userID, productID string, age time.Duration) {
	t.Helper()
	seedInteraction(t, db, userID, productID, models.InteractionTypeView, age)
}

func seedInteraction(t *testing.T, db *gorm.DB, userID, productID, interactionType string, age time.Duration) {
	t.Helper()
	interaction := models.UserInteraction{
		UserID:          userID,
		ProductID:       productID,
		InteractionType: interactionType,
		CreatedAt:       time.Now().Add(-age),
	}
	if err := db.Create(&interaction).Error; err != nil {
		t.Fatalf("failed to seed interaction: %v", err)
	}
}

func seedPreference(t *testing.T, db *gorm.DB, userID, categories, keywords string, priceMin, priceMax float64) {
	t.Helper()
	pref := models.UserPreference{
		UserID:             userID,
		FavoriteCategories: categories,
		FavoriteKeywords:   keywords,
		PriceRangeMin:      priceMin,
		PriceRangeMax:      priceMax,
		LastActiveAt:       time.Now(),
		UpdatedAt:          time.Now(),
	}
	if err := db.Create(&pref).Error; err != nil {
		t.Fatalf("failed to seed preference for %s: %v", userID, err)
	}
}

func seedOnboarding(t *testing.T, db *gorm.DB, userID, budgetRange, interests string) {
	t.Helper()
	onboarding := models.OnboardingPreference{
		UserID:      userID,
		BudgetRange: budgetRange,
		Interests:   interests,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(&onboarding).Error; err != nil {
		t.Fatalf("failed to seed onboarding for %s: %v", userID, err)
	}
}

func nopLogger() *logger.Logger {
	return logger.NewNop()
}
