package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/config"
	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase
}

// SyncUserHandler upserts a user document keyed by the identity provider's
// subject id. Sign-in calls this on every session; the first call for a
// subject creates the document with empty history arrays.
func (u User) SyncUserHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		SubjectID string `json:"subjectId"`
		Email     string `json:"email"`
		Role      string `json:"role"`
	}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.SubjectID == "" || body.Email == "" {
		config.ErrorStatus("subjectId and email are required", http.StatusBadRequest, w, errors.New("missing required fields"))
		return
	}
	if body.Role != models.RolePatient && body.Role != models.RoleDoctor {
		config.ErrorStatus("role must be patient or doctor", http.StatusBadRequest, w, errors.New("unsupported role"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	upsert := true
	after := options.After
	user, err := u.DB.FindOneAndUpdate(ctx,
		bson.M{"subjectId": body.SubjectID},
		bson.M{
			"$set": bson.M{
				"email":     body.Email,
				"role":      body.Role,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{
				"subjectId":       body.SubjectID,
				"bpReadings":      []models.BPReading{},
				"fitData":         []models.FitSnapshot{},
				"consultRequests": []models.ConsultRequest{},
				"createdAt":       now,
			},
		},
		&options.FindOneAndUpdateOptions{Upsert: &upsert, ReturnDocument: &after},
	)
	if err != nil {
		config.ErrorStatus("failed to sync user", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// UserHandler returns a user by the database ID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}
