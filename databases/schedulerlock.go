package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pulseguard/hypertension-api/models"
)

const schedulerLockName = "scheduler_locks"

// SchedulerLockDatabase hands out named job locks so scheduled jobs run on
// exactly one instance when multiple pods share the database.
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, holder string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock inserts or steals the named lock. It succeeds when the lock
// does not exist, is expired, or is already held by this holder.
func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"_id": name,
		"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)}},
			{"heldBy": holder},
		},
	}
	update := bson.M{"$set": bson.M{
		"heldBy":     holder,
		"acquiredAt": primitive.NewDateTimeFromTime(now),
		"expiresAt":  primitive.NewDateTimeFromTime(now.Add(ttl)),
	}}

	res, err := s.db.Collection(schedulerLockName).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 || res.ModifiedCount > 0 {
		return true, nil
	}

	// No live lock matched; try to create one. A duplicate key here means
	// another instance beat us to it.
	_, err = s.db.Collection(schedulerLockName).InsertOne(ctx, models.SchedulerLock{
		Name:       name,
		HeldBy:     holder,
		AcquiredAt: primitive.NewDateTimeFromTime(now),
		ExpiresAt:  primitive.NewDateTimeFromTime(now.Add(ttl)),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, name, holder string) error {
	return s.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{"_id": name, "heldBy": holder})
}
