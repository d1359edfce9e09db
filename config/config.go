package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Server Configuration
	ServerPort string
	LogMode    string

	// Database Configuration
	DBDriver string // "sqlite" or "postgres"
	DBDSN    string

	// Job Configuration
	ActiveUserWindowHours int // lookback for "active" users
	MaxUsersPerRun        int
	UserBatchSize         int // users processed concurrently per batch
	CacheTTLMinutes       int
	DefaultRecLimit       int

	// Collector Configuration
	InteractionWindowDays int // lookback for collaborative filtering
	RecentViewLimit       int // user's own views considered
	CoViewerScanLimit     int // other users' views scanned
	TopCoViewerCount      int
	FavoriteCategoryCount int
	FavoriteKeywordCount  int
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		ServerPort:            getEnv("PORT", "8080"),
		LogMode:               getEnv("LOG_MODE", "dev"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite"),
		DBDSN:                 getEnv("DB_DSN", "marketplace.db"),
		ActiveUserWindowHours: getEnvInt("ACTIVE_USER_WINDOW_HOURS", 24),
		MaxUsersPerRun:        getEnvInt("MAX_USERS_PER_RUN", 1000),
		UserBatchSize:         getEnvInt("USER_BATCH_SIZE", 100),
		CacheTTLMinutes:       getEnvInt("CACHE_TTL_MINUTES", 15),
		DefaultRecLimit:       getEnvInt("DEFAULT_REC_LIMIT", 50),
		InteractionWindowDays: getEnvInt("INTERACTION_WINDOW_DAYS", 30),
		RecentViewLimit:       getEnvInt("RECENT_VIEW_LIMIT", 20),
		CoViewerScanLimit:     getEnvInt("COVIEWER_SCAN_LIMIT", 1000),
		TopCoViewerCount:      getEnvInt("TOP_COVIEWER_COUNT", 10),
		FavoriteCategoryCount: getEnvInt("FAVORITE_CATEGORY_COUNT", 3),
		FavoriteKeywordCount:  getEnvInt("FAVORITE_KEYWORD_COUNT", 5),
	}

	return AppConfig
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
