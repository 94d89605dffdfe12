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

	"github.com/pulseguard/hypertension-api/api/handlers"
	"github.com/pulseguard/hypertension-api/databases/mocks"
	"github.com/pulseguard/hypertension-api/models"
)

func sosPatient() *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		SubjectID: "sub-1",
		Role:      models.RolePatient,
		Profile: &models.PatientProfile{
			Name: "Asha Rao",
			EmergencyContacts: []models.EmergencyContact{
				{Name: "Ravi", Phone: "9876543210"},
				{Name: "Meena", Phone: "9812345678"},
			},
		},
	}
}

func TestSOS_TriggerSOSHandler(t *testing.T) {
	var gatewayPayload map[string]interface{}
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trigger-sos", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gatewayPayload)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(sosPatient(), nil)

	s := handlers.SOS{DB: db, GatewayURL: gateway.URL}
	body := bytes.NewBufferString(`{"subjectId":"sub-1"}`)
	req := httptest.NewRequest("POST", "/api/v1/sos", body)
	rr := httptest.NewRecorder()

	s.TriggerSOSHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	numbers, ok := gatewayPayload["numbers"].([]interface{})
	if assert.True(t, ok) && assert.Len(t, numbers, 2) {
		assert.Equal(t, "+919876543210", numbers[0])
		assert.Equal(t, "+919812345678", numbers[1])
	}
	assert.Equal(t, "Asha Rao", gatewayPayload["patientName"])
}

func TestSOS_TriggerSOSHandler_NoContactsConfigured(t *testing.T) {
	patient := sosPatient()
	patient.Profile.EmergencyContacts = nil

	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(patient, nil)

	s := handlers.SOS{DB: db, GatewayURL: "http://localhost:0"}
	body := bytes.NewBufferString(`{"subjectId":"sub-1"}`)
	req := httptest.NewRequest("POST", "/api/v1/sos", body)
	rr := httptest.NewRecorder()

	s.TriggerSOSHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSOS_TriggerSOSHandler_GatewayRejects(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "twilio quota exhausted", http.StatusTooManyRequests)
	}))
	defer gateway.Close()

	db := &mocks.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(sosPatient(), nil)

	s := handlers.SOS{DB: db, GatewayURL: gateway.URL}
	body := bytes.NewBufferString(`{"subjectId":"sub-1"}`)
	req := httptest.NewRequest("POST", "/api/v1/sos", body)
	rr := httptest.NewRecorder()

	s.TriggerSOSHandler(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
