package main

import (
	"net/http"

	"recs-backend/config"
	"recs-backend/database"
	"recs-backend/handlers"
	"recs-backend/logger"
	"recs-backend/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := database.InitDB(cfg); err != nil {
		log.Fatal("database init failed", "error", err)
	}
	if cfg.DBDriver == "sqlite" {
		if err := database.SeedSampleData(); err != nil {
			log.Warn("sample data seed failed", "error", err)
		}
	}

	collectors := services.NewCollectorService(cfg, log)
	recommendations := services.NewRecommendationService(cfg, log, collectors)
	maintenance := services.NewStoreMaintenance(cfg, log)
	jobs := services.NewJobService(cfg, log, recommendations, maintenance)

	jobHandler := handlers.NewJobHandler(jobs, recommendations, log)

	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/jobs/recommendations/refresh", jobHandler.RefreshRecommendations)
		v1.GET("/recommendations/preview", jobHandler.PreviewRecommendations)
		v1.GET("/recommendations/stats", jobHandler.GetStats)
	}

	log.Info("server starting", "port", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
