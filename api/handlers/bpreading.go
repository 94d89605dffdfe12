package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/config"
	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// BPReading exported for testing purposes
type BPReading struct {
	DB         databases.UserDatabase
	GatewayURL string
}

// Plausible measurement bounds. Values outside these are almost always entry
// mistakes, not emergencies.
const (
	minSystolic  = 70
	maxSystolic  = 250
	minDiastolic = 40
	maxDiastolic = 150
	minRating    = 1
	maxRating    = 5
)

// CreateBPReadingHandler appends a blood-pressure reading to the patient's
// history array
func (bp BPReading) CreateBPReadingHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string           `json:"subjectId"`
		Reading   models.BPReading `json:"reading"`
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
	reading := body.Reading
	if reading.Systolic < minSystolic || reading.Systolic > maxSystolic {
		config.ErrorStatus("systolic value is out of range", http.StatusBadRequest, w,
			fmt.Errorf("systolic %d outside %d-%d", reading.Systolic, minSystolic, maxSystolic))
		return
	}
	if reading.Diastolic < minDiastolic || reading.Diastolic > maxDiastolic {
		config.ErrorStatus("diastolic value is out of range", http.StatusBadRequest, w,
			fmt.Errorf("diastolic %d outside %d-%d", reading.Diastolic, minDiastolic, maxDiastolic))
		return
	}
	if reading.SleepQuality < minRating || reading.SleepQuality > maxRating ||
		reading.StressLevel < minRating || reading.StressLevel > maxRating {
		config.ErrorStatus("sleepQuality and stressLevel must be between 1 and 5", http.StatusBadRequest, w,
			errors.New("rating out of range"))
		return
	}

	now := time.Now()
	if reading.Date == "" {
		reading.Date = now.Format("2006-01-02")
	}
	if reading.Time == "" {
		reading.Time = now.Format("15:04")
	}
	reading.CreatedAt = primitive.NewDateTimeFromTime(now)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := bp.DB.UpdateOne(ctx,
		bson.M{"subjectId": body.SubjectID, "role": models.RolePatient},
		bson.M{
			"$push": bson.M{"bpReadings": reading},
			"$set":  bson.M{"updatedAt": reading.CreatedAt},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to save reading", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, errors.New("no patient document for subject"))
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// TodayBPHandler returns the latest reading recorded today, or null when the
// patient has not measured yet
func (bp BPReading) TodayBPHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := bp.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}

	today := time.Now().Format("2006-01-02")
	var latest *models.BPReading
	for i := range patient.BPReadings {
		reading := patient.BPReadings[i]
		if reading.Date != today {
			continue
		}
		if latest == nil || reading.CreatedAt > latest.CreatedAt {
			latest = &patient.BPReadings[i]
		}
	}

	b, err := json.Marshal(map[string]interface{}{"reading": latest})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// BPSummaryHandler returns the last seven days of readings plus running
// averages, the payload behind the trend chart
func (bp BPReading) BPSummaryHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := bp.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}

	cutoff := time.Now().AddDate(0, 0, -7)
	recent := []models.BPReading{}
	sumSys, sumDia := 0, 0
	for _, reading := range patient.BPReadings {
		if reading.CreatedAt.Time().Before(cutoff) {
			continue
		}
		recent = append(recent, reading)
		sumSys += reading.Systolic
		sumDia += reading.Diastolic
	}

	avgSys, avgDia := 0.0, 0.0
	if len(recent) > 0 {
		avgSys = float64(sumSys) / float64(len(recent))
		avgDia = float64(sumDia) / float64(len(recent))
	}

	b, err := json.Marshal(map[string]interface{}{
		"readings":     recent,
		"avgSystolic":  avgSys,
		"avgDiastolic": avgDia,
		"count":        len(recent),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// BPCommentsHandler returns the readings that carry notes, newest first by
// array order reversal on the client; here we just filter
func (bp BPReading) BPCommentsHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := bp.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}

	type comment struct {
		Date  string `json:"date"`
		Time  string `json:"time"`
		Notes string `json:"notes"`
	}
	comments := []comment{}
	for _, reading := range patient.BPReadings {
		if reading.Notes == "" {
			continue
		}
		comments = append(comments, comment{Date: reading.Date, Time: reading.Time, Notes: reading.Notes})
	}

	b, err := json.Marshal(map[string]interface{}{"comments": comments})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// SetReminderHandler stores the twice-daily call reminder settings and
// registers the phone with the call gateway. Gateway failures are logged but
// do not fail the request; the stored settings re-register on the next save.
func (bp BPReading) SetReminderHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string `json:"subjectId"`
		Enabled   bool   `json:"enabled"`
		Phone     string `json:"phone"`
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
	if body.Enabled && !isTenDigitPhone(body.Phone) {
		config.ErrorStatus("phone must be a 10-digit number", http.StatusBadRequest, w, errors.New("invalid phone"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := bp.DB.UpdateOne(ctx,
		bson.M{"subjectId": body.SubjectID, "role": models.RolePatient},
		bson.M{"$set": bson.M{
			"bpReminder": models.BPReminder{Enabled: body.Enabled, Phone: body.Phone},
			"updatedAt":  now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to save reminder", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, errors.New("no patient document for subject"))
		return
	}

	if bp.GatewayURL != "" {
		payload, _ := json.Marshal(map[string]interface{}{
			"phone":   "+91" + body.Phone,
			"enabled": body.Enabled,
		})
		client := &http.Client{Timeout: 10 * time.Second}
		resp, gerr := client.Post(bp.GatewayURL+"/set-reminder", "application/json", bytes.NewReader(payload))
		if gerr != nil {
			zap.S().Errorw("failed to register reminder with call gateway",
				"error", gerr)
		} else {
			resp.Body.Close()
		}
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.Write(b)
}

// ReminderHandler returns the stored reminder settings
func (bp BPReading) ReminderHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := bp.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}

	reminder := patient.BPReminder
	if reminder == nil {
		reminder = &models.BPReminder{Enabled: false}
	}
	b, err := json.Marshal(reminder)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}
