package handlers

import (
	"net/http"
	"time"

	"recs-backend/logger"
	"recs-backend/models"
	"recs-backend/services"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobService *services.JobService
	recService *services.RecommendationService
	log        *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService *services.JobService, recService *services.RecommendationService, log *logger.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		recService: recService,
		log:        log,
	}
}

// RefreshRecommendations runs one recommendation refresh
// POST /api/v1/jobs/recommendations/refresh
// Requires an Authorization bearer header (presence only, validation is
// delegated to the hosting platform).
func (h *JobHandler) RefreshRecommendations(c *gin.Context) {
	if !hasBearerToken(c) {
		respondUnauthorized(c, "Authorization bearer token is required")
		return
	}

	summary, err := h.jobService.Run(c.Request.Context())
	if err != nil {
		h.log.Error("refresh run failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.JobErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.RefreshJobResponse{
		Success:          true,
		Processed:        summary.Processed,
		Errors:           summary.Errors,
		TotalActiveUsers: summary.TotalActiveUsers,
		Timestamp:        time.Now().Format(time.RFC3339),
	})
}

// PreviewRecommendations computes one user's merged list without writing it
// GET /api/v1/recommendations/preview?user_id=...
func (h *JobHandler) PreviewRecommendations(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respondBadRequest(c, "user_id is required")
		return
	}

	productIDs, err := h.recService.Preview(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, models.PreviewResponse{
		UserID:     userID,
		ProductIDs: productIDs,
		Count:      len(productIDs),
	})
}

// GetStats returns statistics about the recommendation cache
// GET /api/v1/recommendations/stats
func (h *JobHandler) GetStats(c *gin.Context) {
	stats, err := h.recService.GetCacheStats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, stats)
}
