package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"recs-backend/config"
	"recs-backend/models"
)

type fakeMaintenance struct {
	recomputes int
	purges     int
	fail       bool
}

func (f *fakeMaintenance) RecomputeProductScores(ctx context.Context) error {
	f.recomputes++
	if f.fail {
		return errors.New("recompute blew up")
	}
	return nil
}

func (f *fakeMaintenance) PurgeExpiredCache(ctx context.Context) error {
	f.purges++
	if f.fail {
		return errors.New("purge blew up")
	}
	return nil
}

func newTestJobService(t *testing.T, cfg *config.Config, maintenance MaintenanceRunner) *JobService {
	t.Helper()
	log := nopLogger()
	collectors := NewCollectorService(cfg, log)
	recs := NewRecommendationService(cfg, log, collectors)
	return NewJobService(cfg, log, recs, maintenance)
}

func TestRun_ProcessesActiveUsersAndCountsErrors(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, "p1", "Bike", "", "Road Bikes", 700, models.ProductStatusActive)
	seedScore(t, db, "p1", 5, 5)

	// Three active users; one has a corrupt preference row
	seedView(t, db, "ok-1", "p1", time.Hour)
	seedView(t, db, "ok-2", "p1", 2*time.Hour)
	seedView(t, db, "broken", "p1", 3*time.Hour)
	seedPreference(t, db, "broken", `{"corrupt`, "", 0, 0)
	// A stale user outside the 24h window
	seedView(t, db, "stale", "p1", 48*time.Hour)

	maintenance := &fakeMaintenance{}
	jobs := newTestJobService(t, testConfig(), maintenance)

	summary, err := jobs.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.TotalActiveUsers != 3 {
		t.Errorf("total active users = %d, expected 3 (stale user excluded)", summary.TotalActiveUsers)
	}
	if summary.Processed != 3 {
		t.Errorf("processed = %d, expected 3 (broken user still written from surviving signals)", summary.Processed)
	}
	if summary.Errors != 1 {
		t.Errorf("errors = %d, expected 1", summary.Errors)
	}
	if maintenance.recomputes != 1 || maintenance.purges != 1 {
		t.Errorf("maintenance should run once each, got recompute=%d purge=%d",
			maintenance.recomputes, maintenance.purges)
	}

	var cacheRows int64
	db.Model(&models.RecommendationCache{}).Count(&cacheRows)
	if cacheRows != 3 {
		t.Errorf("expected 3 cache rows, got %d", cacheRows)
	}
}

func TestRun_PartitionsIntoBatches(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, "p1", "Bike", "", "Road Bikes", 700, models.ProductStatusActive)
	seedScore(t, db, "p1", 5, 5)

	userCount := 25
	for i := 0; i < userCount; i++ {
		seedView(t, db, fmt.Sprintf("user-%02d", i), "p1", time.Duration(i)*time.Minute)
	}

	cfg := testConfig()
	cfg.UserBatchSize = 10 // forces three sequential batches
	jobs := newTestJobService(t, cfg, &fakeMaintenance{})

	summary, err := jobs.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Processed != userCount || summary.Errors != 0 {
		t.Errorf("summary = %+v, expected %d processed with no errors", summary, userCount)
	}
}

func TestRun_CapsUsersPerRun(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, "p1", "Bike", "", "Road Bikes", 700, models.ProductStatusActive)

	for i := 0; i < 8; i++ {
		seedView(t, db, fmt.Sprintf("user-%d", i), "p1", time.Duration(i)*time.Minute)
	}

	cfg := testConfig()
	cfg.MaxUsersPerRun = 5
	jobs := newTestJobService(t, cfg, &fakeMaintenance{})

	summary, err := jobs.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.TotalActiveUsers != 5 {
		t.Errorf("total active users = %d, expected cap of 5", summary.TotalActiveUsers)
	}
}

func TestRun_FreshCacheUsersAreSkippedNotProcessed(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, "p1", "Bike", "", "Road Bikes", 700, models.ProductStatusActive)
	seedView(t, db, "cached", "p1", time.Hour)

	cfg := testConfig()
	log := nopLogger()
	collectors := NewCollectorService(cfg, log)
	recs := NewRecommendationService(cfg, log, collectors)
	seedCacheEntry(t, recs, "cached", time.Now().Add(10*time.Minute))
	jobs := NewJobService(cfg, log, recs, &fakeMaintenance{})

	summary, err := jobs.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Processed != 0 || summary.Skipped != 1 || summary.Errors != 0 {
		t.Errorf("summary = %+v, expected the cached user to be skipped only", summary)
	}
}

func TestRun_MaintenanceFailureDoesNotFailRun(t *testing.T) {
	db := setupTestDB(t)
	seedProduct(t, db, "p1", "Bike", "", "Road Bikes", 700, models.ProductStatusActive)
	seedView(t, db, "u1", "p1", time.Hour)

	jobs := newTestJobService(t, testConfig(), &fakeMaintenance{fail: true})

	summary, err := jobs.Run(context.Background())
	if err != nil {
		t.Fatalf("failing maintenance must not fail the run: %v", err)
	}
	if summary.Processed != 1 {
		t.Errorf("processed = %d, expected 1", summary.Processed)
	}
}
