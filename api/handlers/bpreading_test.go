package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pulseguard/hypertension-api/api/handlers"
	"github.com/pulseguard/hypertension-api/databases/mocks"
	"github.com/pulseguard/hypertension-api/models"
)

func TestBPReading_CreateBPReadingHandler(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	bp := handlers.BPReading{DB: db}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","reading":{"systolic":145,"diastolic":92,"sleepQuality":3,"stressLevel":4,"notes":"after coffee"}}`)
	req := httptest.NewRequest("POST", "/api/v1/bp-readings", body)
	rr := httptest.NewRecorder()

	bp.CreateBPReadingHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestBPReading_CreateBPReadingHandler_OutOfRange(t *testing.T) {
	bp := handlers.BPReading{DB: &mocks.UserDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","reading":{"systolic":20,"diastolic":92}}`)
	req := httptest.NewRequest("POST", "/api/v1/bp-readings", body)
	rr := httptest.NewRecorder()

	bp.CreateBPReadingHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBPReading_CreateBPReadingHandler_RatingOutOfRange(t *testing.T) {
	for _, rating := range []int{0, 6, 8} {
		bp := handlers.BPReading{DB: &mocks.UserDatabase{}}
		body := bytes.NewBufferString(fmt.Sprintf(
			`{"subjectId":"sub-1","reading":{"systolic":145,"diastolic":92,"sleepQuality":%d,"stressLevel":3}}`, rating))
		req := httptest.NewRequest("POST", "/api/v1/bp-readings", body)
		rr := httptest.NewRecorder()

		bp.CreateBPReadingHandler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "sleepQuality=%d must be rejected", rating)
	}

	bp := handlers.BPReading{DB: &mocks.UserDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","reading":{"systolic":145,"diastolic":92,"sleepQuality":3,"stressLevel":6}}`)
	req := httptest.NewRequest("POST", "/api/v1/bp-readings", body)
	rr := httptest.NewRecorder()

	bp.CreateBPReadingHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBPReading_TodayBPHandler_PicksLatestOfToday(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	patient := &models.User{
		ID:        primitive.NewObjectID(),
		SubjectID: "sub-1",
		Role:      models.RolePatient,
		BPReadings: []models.BPReading{
			{Date: "2020-01-01", Systolic: 120, Diastolic: 80, CreatedAt: primitive.NewDateTimeFromTime(time.Now().Add(-72 * time.Hour))},
			{Date: today, Systolic: 150, Diastolic: 95, CreatedAt: primitive.NewDateTimeFromTime(time.Now().Add(-3 * time.Hour))},
			{Date: today, Systolic: 138, Diastolic: 88, CreatedAt: primitive.NewDateTimeFromTime(time.Now())},
		},
	}

	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(patient, nil)

	bp := handlers.BPReading{DB: db}
	req := httptest.NewRequest("GET", "/api/v1/bp-readings/today?subjectId=sub-1", nil)
	rr := httptest.NewRecorder()

	bp.TodayBPHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Reading *models.BPReading `json:"reading"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	if assert.NotNil(t, resp.Reading) {
		assert.Equal(t, 138, resp.Reading.Systolic)
	}
}

func TestBPReading_BPSummaryHandler_AveragesLastSevenDays(t *testing.T) {
	patient := &models.User{
		ID:        primitive.NewObjectID(),
		SubjectID: "sub-1",
		Role:      models.RolePatient,
		BPReadings: []models.BPReading{
			{Systolic: 200, Diastolic: 120, CreatedAt: primitive.NewDateTimeFromTime(time.Now().AddDate(0, 0, -30))},
			{Systolic: 140, Diastolic: 90, CreatedAt: primitive.NewDateTimeFromTime(time.Now().AddDate(0, 0, -2))},
			{Systolic: 150, Diastolic: 100, CreatedAt: primitive.NewDateTimeFromTime(time.Now())},
		},
	}

	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(patient, nil)

	bp := handlers.BPReading{DB: db}
	req := httptest.NewRequest("GET", "/api/v1/bp-readings/summary?subjectId=sub-1", nil)
	rr := httptest.NewRecorder()

	bp.BPSummaryHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		AvgSystolic  float64 `json:"avgSystolic"`
		AvgDiastolic float64 `json:"avgDiastolic"`
		Count        int     `json:"count"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.InDelta(t, 145.0, resp.AvgSystolic, 0.01)
	assert.InDelta(t, 95.0, resp.AvgDiastolic, 0.01)
}

func TestBPReading_BPCommentsHandler(t *testing.T) {
	patient := &models.User{
		ID:        primitive.NewObjectID(),
		SubjectID: "sub-1",
		Role:      models.RolePatient,
		BPReadings: []models.BPReading{
			{Date: "2026-08-20", Time: "08:00", Systolic: 140, Diastolic: 90},
			{Date: "2026-08-21", Time: "09:30", Systolic: 150, Diastolic: 95, Notes: "skipped meds yesterday"},
		},
	}

	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(patient, nil)

	bp := handlers.BPReading{DB: db}
	req := httptest.NewRequest("GET", "/api/v1/bp-readings/comments?subjectId=sub-1", nil)
	rr := httptest.NewRecorder()

	bp.BPCommentsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Comments []struct {
			Date  string `json:"date"`
			Notes string `json:"notes"`
		} `json:"comments"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	if assert.Len(t, resp.Comments, 1) {
		assert.Equal(t, "skipped meds yesterday", resp.Comments[0].Notes)
	}
}

func TestBPReading_SetReminderHandler_RequiresPhoneWhenEnabled(t *testing.T) {
	bp := handlers.BPReading{DB: &mocks.UserDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","enabled":true,"phone":"123"}`)
	req := httptest.NewRequest("POST", "/api/v1/bp-reminder", body)
	rr := httptest.NewRecorder()

	bp.SetReminderHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBPReading_SetReminderHandler_RegistersWithGateway(t *testing.T) {
	gatewayCalls := make(chan map[string]interface{}, 1)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		gatewayCalls <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	db := &mocks.UserDatabase{}
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	bp := handlers.BPReading{DB: db, GatewayURL: gateway.URL}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","enabled":true,"phone":"9876543210"}`)
	req := httptest.NewRequest("POST", "/api/v1/bp-reminder", body)
	rr := httptest.NewRecorder()

	bp.SetReminderHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	select {
	case payload := <-gatewayCalls:
		assert.Equal(t, "+919876543210", payload["phone"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected the gateway to be called")
	}
}
