package services

import (
	"context"
	"fmt"
	"time"

	"recs-backend/config"
	"recs-backend/database"
	"recs-backend/logger"
	"recs-backend/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// JobService is the batch driver: it selects recently active users, fans
// their refreshes out in bounded concurrent batches and triggers the
// post-run maintenance. One invocation runs to completion; scheduling is
// the caller's concern.
type JobService struct {
	db          *gorm.DB
	cfg         *config.Config
	log         *logger.Logger
	recs        *RecommendationService
	maintenance MaintenanceRunner
}

// NewJobService creates a new job service instance
func NewJobService(cfg *config.Config, log *logger.Logger, recs *RecommendationService, maintenance MaintenanceRunner) *JobService {
	return &JobService{
		db:          database.GetDB(),
		cfg:         cfg,
		log:         log,
		recs:        recs,
		maintenance: maintenance,
	}
}

// RunSummary aggregates one refresh run
type RunSummary struct {
	Processed        int
	Errors           int
	Skipped          int
	TotalActiveUsers int
}

// Run executes one full refresh. Only the active-user query itself is fatal;
// every per-user failure is counted and the run carries on, and maintenance
// failures are logged without affecting the reported outcome.
func (s *JobService) Run(ctx context.Context) (*RunSummary, error) {
	started := time.Now()

	userIDs, err := s.activeUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active users: %w", err)
	}

	summary := &RunSummary{TotalActiveUsers: len(userIDs)}
	s.log.Info("refresh run starting",
		"active_users", len(userIDs), "batch_size", s.cfg.UserBatchSize)

	for start := 0; start < len(userIDs); start += s.cfg.UserBatchSize {
		end := start + s.cfg.UserBatchSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		s.runBatch(ctx, userIDs[start:end], summary)
	}

	s.runMaintenance(ctx)

	s.log.Info("refresh run finished",
		"processed", summary.Processed,
		"errors", summary.Errors,
		"skipped", summary.Skipped,
		"total_active_users", summary.TotalActiveUsers,
		"duration", time.Since(started).String())
	return summary, nil
}

// activeUsers returns users whose last interaction falls inside the active
// window, newest first, capped per run
func (s *JobService) activeUsers(ctx context.Context) ([]string, error) {
	since := time.Now().Add(-time.Duration(s.cfg.ActiveUserWindowHours) * time.Hour)

	var userIDs []string
	err := s.db.WithContext(ctx).Model(&models.UserInteraction{}).
		Select("user_id").
		Where("created_at >= ?", since).
		Group("user_id").
		Order("MAX(created_at) DESC").
		Limit(s.cfg.MaxUsersPerRun).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// runBatch refreshes one batch of users concurrently. Results come back
// through a channel sized to the batch so no user's outcome is lost and no
// user's failure cancels the others.
func (s *JobService) runBatch(ctx context.Context, userIDs []string, summary *RunSummary) {
	results := make(chan UserRefreshResult, len(userIDs))

	group := errgroup.Group{}
	group.SetLimit(s.cfg.UserBatchSize)
	for _, userID := range userIDs {
		userID := userID
		group.Go(func() error {
			results <- s.recs.RefreshUser(ctx, userID)
			return nil
		})
	}
	_ = group.Wait()
	close(results)

	for result := range results {
		switch {
		case result.Err != nil:
			summary.Errors++
			s.log.Error("user refresh failed",
				"user_id", result.UserID, "error", result.Err)
		case result.Skipped:
			summary.Skipped++
		default:
			summary.Processed++
			if result.CollectorErrors > 0 {
				summary.Errors++
			}
		}
	}
}

// runMaintenance triggers the post-run routines; failures are logged only
func (s *JobService) runMaintenance(ctx context.Context) {
	if s.maintenance == nil {
		return
	}
	if err := s.maintenance.RecomputeProductScores(ctx); err != nil {
		s.log.Error("product score recompute failed", "error", err)
	}
	if err := s.maintenance.PurgeExpiredCache(ctx); err != nil {
		s.log.Error("expired cache purge failed", "error", err)
	}
}
