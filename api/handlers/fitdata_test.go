package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pulseguard/hypertension-api/api/handlers"
	"github.com/pulseguard/hypertension-api/databases/mocks"
	"github.com/pulseguard/hypertension-api/models"
)

func TestFitData_StageFitDataHandler(t *testing.T) {
	staging := &mocks.FitStagingDatabase{}
	staging.On("Stage", mock.Anything, "sub-1", "2026-08-28", mock.Anything).Return(nil)

	f := handlers.FitData{DB: &mocks.UserDatabase{}, StagingDB: staging}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","snapshot":{"date":"2026-08-28","steps":8450,"heartPoints":22,"calories":1850}}`)
	req := httptest.NewRequest("POST", "/api/v1/fit/stage", body)
	rr := httptest.NewRecorder()

	f.StageFitDataHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	staging.AssertExpectations(t)
}

func TestFitData_SaveFitDataHandler(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	f := handlers.FitData{DB: db, StagingDB: &mocks.FitStagingDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","snapshot":{"date":"2026-08-27","steps":10400}}`)
	req := httptest.NewRequest("POST", "/api/v1/fit", body)
	rr := httptest.NewRecorder()

	f.SaveFitDataHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]bool
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp["saved"])
}

func TestFitData_SaveFitDataHandler_DuplicateDayIsNoOp(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)
	db.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	f := handlers.FitData{DB: db, StagingDB: &mocks.FitStagingDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","snapshot":{"date":"2026-08-27","steps":10400}}`)
	req := httptest.NewRequest("POST", "/api/v1/fit", body)
	rr := httptest.NewRecorder()

	f.SaveFitDataHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]bool
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp["saved"])
}

func TestFitData_SaveFitDataHandler_UnknownPatient(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 0}, nil)
	db.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)

	f := handlers.FitData{DB: db, StagingDB: &mocks.FitStagingDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"ghost","snapshot":{"date":"2026-08-27","steps":10400}}`)
	req := httptest.NewRequest("POST", "/api/v1/fit", body)
	rr := httptest.NewRecorder()

	f.SaveFitDataHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var errResp models.ErrorMessageResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.Contains(t, errResp.Response, "patient not found")
}

func TestFitData_SaveFitDataHandler_RequiresDate(t *testing.T) {
	f := handlers.FitData{DB: &mocks.UserDatabase{}, StagingDB: &mocks.FitStagingDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","snapshot":{"steps":10400}}`)
	req := httptest.NewRequest("POST", "/api/v1/fit", body)
	rr := httptest.NewRecorder()

	f.SaveFitDataHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
