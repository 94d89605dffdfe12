package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pulseguard/hypertension-api/api/handlers"
	"github.com/pulseguard/hypertension-api/databases/mocks"
	"github.com/pulseguard/hypertension-api/models"
)

func TestProfile_SavePatientProfileHandler(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	p := handlers.Profile{DB: db}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","profile":{"name":"Asha Rao","age":58,"chronic_kidney_disease":"yes"}}`)
	req := httptest.NewRequest("POST", "/api/v1/patient/profile", body)
	rr := httptest.NewRecorder()

	p.SavePatientProfileHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProfile_SaveEmergencyContactsHandler_RequiresExactlyTwo(t *testing.T) {
	p := handlers.Profile{DB: &mocks.UserDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","contacts":[{"name":"Ravi","phone":"9876543210"}]}`)
	req := httptest.NewRequest("POST", "/api/v1/patient/emergency-contacts", body)
	rr := httptest.NewRecorder()

	p.SaveEmergencyContactsHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProfile_SaveEmergencyContactsHandler_RejectsBadPhone(t *testing.T) {
	p := handlers.Profile{DB: &mocks.UserDatabase{}}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","contacts":[{"name":"Ravi","phone":"9876543210"},{"name":"Meena","phone":"98765"}]}`)
	req := httptest.NewRequest("POST", "/api/v1/patient/emergency-contacts", body)
	rr := httptest.NewRecorder()

	p.SaveEmergencyContactsHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProfile_SaveEmergencyContactsHandler(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	p := handlers.Profile{DB: db}
	body := bytes.NewBufferString(`{"subjectId":"sub-1","contacts":[{"name":"Ravi","phone":"9876543210"},{"name":"Meena","phone":"9812345678"}]}`)
	req := httptest.NewRequest("POST", "/api/v1/patient/emergency-contacts", body)
	rr := httptest.NewRecorder()

	p.SaveEmergencyContactsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProfile_EmergencyContactsHandler_EmptyWhenUnset(t *testing.T) {
	patient := &models.User{
		ID:        primitive.NewObjectID(),
		SubjectID: "sub-1",
		Role:      models.RolePatient,
	}
	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(patient, nil)

	p := handlers.Profile{DB: db}
	req := httptest.NewRequest("GET", "/api/v1/patient/emergency-contacts?subjectId=sub-1", nil)
	rr := httptest.NewRecorder()

	p.EmergencyContactsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Contacts []models.EmergencyContact `json:"contacts"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Contacts)
}

func TestProfile_PatientProfileHandler_NotSet(t *testing.T) {
	patient := &models.User{
		ID:        primitive.NewObjectID(),
		SubjectID: "sub-1",
		Role:      models.RolePatient,
	}
	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(patient, nil)

	p := handlers.Profile{DB: db}
	req := httptest.NewRequest("GET", "/api/v1/patient/profile?subjectId=sub-1", nil)
	rr := httptest.NewRecorder()

	p.PatientProfileHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
