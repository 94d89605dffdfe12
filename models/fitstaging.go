package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FitStagingEntry is a row in the fit_staging collection: the latest activity
// snapshot for one user for one calendar day, waiting for the nightly flush.
// Keeping the staging area in mongo rather than in memory means staged data
// survives a process restart and failed flushes can be retried next sweep.
type FitStagingEntry struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	SubjectID string             `json:"subjectId" bson:"subjectId"`
	Date      string             `json:"date" bson:"date"`
	Snapshot  FitSnapshot        `json:"snapshot" bson:"snapshot"`
	StagedAt  primitive.DateTime `json:"stagedAt" bson:"stagedAt"`
}

// SchedulerLock is a named job lock in the scheduler_locks collection so a
// job runs on exactly one instance at a time.
type SchedulerLock struct {
	Name       string             `json:"name" bson:"_id"`
	HeldBy     string             `json:"heldBy" bson:"heldBy"`
	AcquiredAt primitive.DateTime `json:"acquiredAt" bson:"acquiredAt"`
	ExpiresAt  primitive.DateTime `json:"expiresAt" bson:"expiresAt"`
}
