package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pulseguard/hypertension-api/api/scheduler"
	"github.com/pulseguard/hypertension-api/databases/mocks"
	"github.com/pulseguard/hypertension-api/models"
)

func stagedEntry(subjectID, date string, steps int) models.FitStagingEntry {
	return models.FitStagingEntry{
		SubjectID: subjectID,
		Date:      date,
		Snapshot:  models.FitSnapshot{Date: date, Steps: steps},
		StagedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
}

func subjectFilter(subjectID string) interface{} {
	return mock.MatchedBy(func(filter interface{}) bool {
		m, ok := filter.(bson.M)
		return ok && m["subjectId"] == subjectID
	})
}

func TestScheduler_FlushStagedFitData(t *testing.T) {
	staging := &mocks.FitStagingDatabase{}
	users := &mocks.UserDatabase{}
	locks := &mocks.SchedulerLockDatabase{}

	staging.On("FindAll", mock.Anything).Return([]models.FitStagingEntry{
		stagedEntry("flushes", "2026-08-27", 9000),
		stagedEntry("duplicate-day", "2026-08-27", 5000),
		stagedEntry("write-fails", "2026-08-27", 7000),
	}, nil)

	// normal case: snapshot lands on the user document, staging row removed
	users.On("UpdateOne", mock.Anything, subjectFilter("flushes"), mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	staging.On("Remove", mock.Anything, "flushes", "2026-08-27").Return(nil)

	// the user already has this day (or is gone): entry is dropped
	users.On("UpdateOne", mock.Anything, subjectFilter("duplicate-day"), mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)
	staging.On("Remove", mock.Anything, "duplicate-day", "2026-08-27").Return(nil)

	// the write fails: entry must survive for the next sweep
	users.On("UpdateOne", mock.Anything, subjectFilter("write-fails"), mock.Anything).
		Return(nil, errors.New("mocked-error"))

	s := scheduler.NewScheduler(users, staging, locks)
	result, err := s.FlushStagedFitData(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Flushed)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, 1, result.Retained)
	staging.AssertNotCalled(t, "Remove", mock.Anything, "write-fails", "2026-08-27")
}

func TestScheduler_FlushStagedFitData_RemoveFailureRetains(t *testing.T) {
	staging := &mocks.FitStagingDatabase{}
	users := &mocks.UserDatabase{}
	locks := &mocks.SchedulerLockDatabase{}

	staging.On("FindAll", mock.Anything).Return([]models.FitStagingEntry{
		stagedEntry("sub-1", "2026-08-27", 9000),
	}, nil)
	users.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	staging.On("Remove", mock.Anything, "sub-1", "2026-08-27").Return(errors.New("mocked-error"))

	s := scheduler.NewScheduler(users, staging, locks)
	result, err := s.FlushStagedFitData(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Flushed)
	assert.Equal(t, 1, result.Retained)
}

func TestScheduler_FlushStagedFitData_ListFailure(t *testing.T) {
	staging := &mocks.FitStagingDatabase{}
	staging.On("FindAll", mock.Anything).Return(nil, errors.New("mocked-error"))

	s := scheduler.NewScheduler(&mocks.UserDatabase{}, staging, &mocks.SchedulerLockDatabase{})
	_, err := s.FlushStagedFitData(context.Background())

	assert.Error(t, err)
}
