package databases

// go generate: mockery --name FitStagingDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulseguard/hypertension-api/models"
)

const fitStagingName = "fit_staging"

// FitStagingDatabase contains the methods to use with the fit staging
// collection, the durable holding area for the nightly fit-data flush.
type FitStagingDatabase interface {
	Stage(ctx context.Context, subjectID, date string, snapshot models.FitSnapshot) error
	FindAll(ctx context.Context) ([]models.FitStagingEntry, error)
	Remove(ctx context.Context, subjectID, date string) error
}

type fitStagingDatabase struct {
	db DatabaseHelper
}

// NewFitStagingDatabase initializes a new instance of fit staging database with the provided db connection
func NewFitStagingDatabase(db DatabaseHelper) FitStagingDatabase {
	return &fitStagingDatabase{
		db: db,
	}
}

// Stage upserts the latest snapshot for (subjectID, date); last writer wins.
func (f *fitStagingDatabase) Stage(ctx context.Context, subjectID, date string, snapshot models.FitSnapshot) error {
	upsert := true
	_, err := f.db.Collection(fitStagingName).UpdateOne(ctx,
		bson.M{"subjectId": subjectID, "date": date},
		bson.M{"$set": bson.M{
			"snapshot": snapshot,
			"stagedAt": primitive.NewDateTimeFromTime(snapshot.CreatedAt.Time()),
		}},
		&options.UpdateOptions{Upsert: &upsert},
	)
	return err
}

func (f *fitStagingDatabase) FindAll(ctx context.Context) ([]models.FitStagingEntry, error) {
	var entries []models.FitStagingEntry
	cur, err := f.db.Collection(fitStagingName).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *fitStagingDatabase) Remove(ctx context.Context, subjectID, date string) error {
	return f.db.Collection(fitStagingName).DeleteOne(ctx, bson.M{"subjectId": subjectID, "date": date})
}
