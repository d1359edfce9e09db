package database

import (
	"fmt"
	"time"

	"recs-backend/config"
	"recs-backend/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the database connection for the configured driver
func InitDB(cfg *config.Config) error {
	var err error

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch cfg.DBDriver {
	case "postgres":
		DB, err = gorm.Open(postgres.Open(cfg.DBDSN), gormConfig)
	default:
		DB, err = gorm.Open(sqlite.Open(cfg.DBDSN), gormConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate schemas
	err = DB.AutoMigrate(
		&models.Product{},
		&models.ProductScore{},
		&models.UserInteraction{},
		&models.UserPreference{},
		&models.OnboardingPreference{},
		&models.RecommendationCache{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SeedSampleData generates sample products, preferences and interactions for
// exercising the job locally. It is a no-op when products already exist.
func SeedSampleData() error {
	var count int64
	DB.Model(&models.Product{}).Count(&count)
	if count > 0 {
		return nil
	}

	categories := []string{
		"Road Bikes", "Mountain Bikes", "City Bikes", "E-Bikes",
		"Kids Bikes", "Parts & Components", "Apparel",
	}

	now := time.Now()
	products := make([]models.Product, 0, 70)
	for i := 0; i < 70; i++ {
		category := categories[i%len(categories)]
		products = append(products, models.Product{
			ID:          uuid.New().String(),
			DisplayName: fmt.Sprintf("%s listing %d", category, i+1),
			Description: fmt.Sprintf("Well maintained %s, ready to ride.", category),
			Category:    category,
			Price:       300 + float64(i)*45,
			Status:      models.ProductStatusActive,
			SellerID:    fmt.Sprintf("seller_%d", i%12),
			CreatedAt:   now.Add(-time.Duration(i) * time.Hour),
		})
	}
	if err := DB.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	// Give every product a baseline score row so trending has something to rank
	scores := make([]models.ProductScore, 0, len(products))
	for i, p := range products {
		scores = append(scores, models.ProductScore{
			ProductID:        p.ID,
			TrendingScore:    float64(len(products) - i),
			PopularityScore:  float64(len(products) - i),
			InteractionCount: 0,
			UpdatedAt:        now,
		})
	}
	if err := DB.Create(&scores).Error; err != nil {
		return fmt.Errorf("failed to seed product scores: %w", err)
	}

	// Simulate 20 recently active users with uneven view patterns
	interactions := []models.UserInteraction{}
	preferences := []models.UserPreference{}
	for u := 0; u < 20; u++ {
		userID := fmt.Sprintf("user_%d", u)
		viewCount := 5 + u%10
		for v := 0; v < viewCount; v++ {
			product := products[(u*3+v*2)%len(products)]
			interactionType := models.InteractionTypeView
			if v%4 == 0 {
				interactionType = models.InteractionTypeFavorite
			}
			interactions = append(interactions, models.UserInteraction{
				UserID:          userID,
				ProductID:       product.ID,
				InteractionType: interactionType,
				CreatedAt:       now.Add(-time.Duration(v*3) * time.Hour),
			})
		}
		preferences = append(preferences, models.UserPreference{
			UserID:             userID,
			FavoriteCategories: fmt.Sprintf(`{"%s": 3, "%s": 1}`, categories[u%len(categories)], categories[(u+1)%len(categories)]),
			FavoriteKeywords:   `{"ride": 2, "maintained": 1}`,
			PriceRangeMin:      400,
			PriceRangeMax:      1800,
			LastActiveAt:       now.Add(-time.Duration(u) * time.Hour),
			UpdatedAt:          now,
		})
	}
	if err := DB.Create(&interactions).Error; err != nil {
		return fmt.Errorf("failed to seed interactions: %w", err)
	}
	if err := DB.Create(&preferences).Error; err != nil {
		return fmt.Errorf("failed to seed preferences: %w", err)
	}

	return nil
}
