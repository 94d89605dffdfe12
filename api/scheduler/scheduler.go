package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// Scheduler runs the nightly fit-data flush
type Scheduler struct {
	cron       *cron.Cron
	UDB        databases.UserDatabase
	StagingDB  databases.FitStagingDatabase
	LockDB     databases.SchedulerLockDatabase
	instanceID string
}

// FlushResult summarizes one sweep over the staging collection
type FlushResult struct {
	Flushed  int `json:"flushed"`
	Dropped  int `json:"dropped"`
	Retained int `json:"retained"`
}

// NewScheduler creates a new scheduler instance
func NewScheduler(uDB databases.UserDatabase, stagingDB databases.FitStagingDatabase, lockDB databases.SchedulerLockDatabase) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		UDB:        uDB,
		StagingDB:  stagingDB,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Flush the day's staged fit snapshots just before midnight UTC
	_, err := s.cron.AddFunc("59 23 * * *", s.runDailyFlush)
	if err != nil {
		zap.S().Errorw("failed to register fit flush job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Fit data scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Fit data scheduler stopped")
}

func (s *Scheduler) runDailyFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Try to acquire distributed lock (10 minute TTL)
	acquired, err := s.LockDB.TryAcquireLock(ctx, "daily_fit_flush", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for fit flush job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Fit flush job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "daily_fit_flush", s.instanceID)

	result, err := s.FlushStagedFitData(ctx)
	if err != nil {
		zap.S().Errorw("fit flush sweep failed", "error", err)
		return
	}
	zap.S().Infow("fit flush sweep finished",
		"instance", s.instanceID,
		"flushed", result.Flushed,
		"dropped", result.Dropped,
		"retained", result.Retained)
}

// FlushStagedFitData moves every staged snapshot onto its user document.
// Entries for unknown subjects or already-recorded days are dropped; an entry
// whose write fails stays in staging and the next sweep retries it.
func (s *Scheduler) FlushStagedFitData(ctx context.Context) (FlushResult, error) {
	var result FlushResult

	entries, err := s.StagingDB.FindAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list staged fit data: %w", err)
	}

	for _, entry := range entries {
		outcome, err := s.flushEntry(ctx, entry)
		if err != nil {
			zap.S().Errorw("failed to flush staged fit entry, retaining",
				"subjectId", entry.SubjectID,
				"date", entry.Date,
				"error", err)
			result.Retained++
			continue
		}
		switch outcome {
		case flushed:
			result.Flushed++
		case dropped:
			result.Dropped++
		}
	}
	return result, nil
}

type flushOutcome int

const (
	flushed flushOutcome = iota
	dropped
)

func (s *Scheduler) flushEntry(ctx context.Context, entry models.FitStagingEntry) (flushOutcome, error) {
	snapshot := entry.Snapshot
	snapshot.Date = entry.Date
	if snapshot.CreatedAt == 0 {
		snapshot.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	}

	res, err := s.UDB.UpdateOne(ctx,
		bson.M{
			"subjectId":    entry.SubjectID,
			"role":         models.RolePatient,
			"fitData.date": bson.M{"$ne": entry.Date},
		},
		bson.M{
			"$push": bson.M{"fitData": snapshot},
			"$set":  bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		return flushed, err
	}

	if res.MatchedCount == 0 {
		// either the subject is gone or the day already exists; both mean
		// the staged entry has nothing left to contribute
		if err := s.StagingDB.Remove(ctx, entry.SubjectID, entry.Date); err != nil {
			return flushed, err
		}
		return dropped, nil
	}

	// only clear staging after the user document write landed
	if err := s.StagingDB.Remove(ctx, entry.SubjectID, entry.Date); err != nil {
		return flushed, err
	}
	return flushed, nil
}
