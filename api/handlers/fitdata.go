package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/config"
	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// FitData exported for testing purposes
type FitData struct {
	DB        databases.UserDatabase
	StagingDB databases.FitStagingDatabase
}

// StageFitDataHandler records the day's running activity totals in the
// staging collection. The app calls this every sync; only the last snapshot
// per (subject, day) survives, and the nightly flush moves it onto the user
// document.
func (f FitData) StageFitDataHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string             `json:"subjectId"`
		Snapshot  models.FitSnapshot `json:"snapshot"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.SubjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	snapshot := body.Snapshot
	if snapshot.Date == "" {
		snapshot.Date = time.Now().Format("2006-01-02")
	}
	snapshot.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err = f.StagingDB.Stage(ctx, body.SubjectID, snapshot.Date, snapshot)
	if err != nil {
		config.ErrorStatus("failed to stage fit data", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]bool{"staged": true})
	w.Write(b)
}

// SaveFitDataHandler writes a snapshot straight onto the user document,
// bypassing staging. Used for backfills; a day that already exists in the
// history is left alone.
func (f FitData) SaveFitDataHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string             `json:"subjectId"`
		Snapshot  models.FitSnapshot `json:"snapshot"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.SubjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}
	if body.Snapshot.Date == "" {
		config.ErrorStatus("snapshot date is required", http.StatusBadRequest, w, errors.New("missing date"))
		return
	}

	snapshot := body.Snapshot
	snapshot.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// the filter excludes documents that already hold this day, so a repeat
	// call is a no-op instead of a duplicate
	res, err := f.DB.UpdateOne(ctx,
		bson.M{
			"subjectId":    body.SubjectID,
			"role":         models.RolePatient,
			"fitData.date": bson.M{"$ne": snapshot.Date},
		},
		bson.M{
			"$push": bson.M{"fitData": snapshot},
			"$set":  bson.M{"updatedAt": snapshot.CreatedAt},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to save fit data", http.StatusInternalServerError, w, err)
		return
	}

	saved := res.MatchedCount > 0
	if !saved {
		// distinguish a duplicate day from a missing patient
		count, cerr := f.DB.CountDocuments(ctx, bson.M{"subjectId": body.SubjectID, "role": models.RolePatient})
		if cerr != nil {
			config.ErrorStatus("failed to check patient", http.StatusInternalServerError, w, cerr)
			return
		}
		if count == 0 {
			config.ErrorStatus("patient not found", http.StatusNotFound, w, errors.New("no patient document for subject"))
			return
		}
	}

	b, _ := json.Marshal(map[string]bool{"saved": saved})
	w.Write(b)
}
