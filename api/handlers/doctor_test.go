package handlers_test

import (
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

func TestDoctor_DoctorsHandler(t *testing.T) {
	doctors := []models.User{
		{
			ID:   primitive.NewObjectID(),
			Role: models.RoleDoctor,
			DoctorProfile: &models.DoctorProfile{
				Name:         "Dr. Mehta",
				Experience:   12,
				HospitalName: "Fortis",
			},
		},
		{
			ID:   primitive.NewObjectID(),
			Role: models.RoleDoctor,
			// no profile yet, must not show up in the directory
		},
	}

	db := &mocks.UserDatabase{}
	db.On("Find", mock.Anything, mock.Anything).Return(doctors, nil)

	d := handlers.Doctor{DB: db}
	req := httptest.NewRequest("GET", "/api/v1/doctors", nil)
	rr := httptest.NewRecorder()

	d.DoctorsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Doctors []struct {
			Name         string `json:"name"`
			HospitalName string `json:"hospitalName"`
		} `json:"doctors"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	if assert.Len(t, resp.Doctors, 1) {
		assert.Equal(t, "Dr. Mehta", resp.Doctors[0].Name)
		assert.Equal(t, "Fortis", resp.Doctors[0].HospitalName)
	}
}
