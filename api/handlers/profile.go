package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/config"
	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// Profile exported for testing purposes
type Profile struct {
	DB databases.UserDatabase
}

// SavePatientProfileHandler stores the patient's health profile. The yes/no
// condition strings are kept verbatim; the risk inference service consumes
// them unchanged.
func (p Profile) SavePatientProfileHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string                `json:"subjectId"`
		Profile   models.PatientProfile `json:"profile"`
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
	if body.Profile.Name == "" {
		config.ErrorStatus("profile name is required", http.StatusBadRequest, w, errors.New("missing profile name"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	body.Profile.UpdatedAt = now
	if body.Profile.CreatedAt == 0 {
		body.Profile.CreatedAt = now
	}

	res, err := p.DB.UpdateOne(ctx,
		bson.M{"subjectId": body.SubjectID, "role": models.RolePatient},
		bson.M{"$set": bson.M{"profile": body.Profile, "updatedAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to save patient profile", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, errors.New("no patient document for subject"))
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.Write(b)
}

// PatientProfileHandler returns the patient's stored health profile
func (p Profile) PatientProfileHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := p.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}
	if patient.Profile == nil {
		config.ErrorStatus("profile not set", http.StatusNotFound, w, errors.New("patient has no profile yet"))
		return
	}

	b, err := json.Marshal(patient.Profile)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// SaveEmergencyContactsHandler stores the two numbers the SOS flow dials.
// Exactly two contacts, both with 10-digit phones; the gateway dials them in
// order and we do not want a half-filled list at 3am.
func (p Profile) SaveEmergencyContactsHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string                    `json:"subjectId"`
		Contacts  []models.EmergencyContact `json:"contacts"`
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
	if len(body.Contacts) != 2 {
		config.ErrorStatus("exactly two emergency contacts are required", http.StatusBadRequest, w,
			fmt.Errorf("got %d contacts", len(body.Contacts)))
		return
	}
	for i, contact := range body.Contacts {
		if contact.Name == "" || !isTenDigitPhone(contact.Phone) {
			config.ErrorStatus("each contact needs a name and a 10-digit phone", http.StatusBadRequest, w,
				fmt.Errorf("contact %d is invalid", i))
			return
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := p.DB.UpdateOne(ctx,
		bson.M{"subjectId": body.SubjectID, "role": models.RolePatient},
		bson.M{"$set": bson.M{
			"profile.emergencyContacts": body.Contacts,
			"updatedAt":                 now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to save emergency contacts", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, errors.New("no patient document for subject"))
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.Write(b)
}

// EmergencyContactsHandler returns the saved emergency contacts, an empty
// list when none are configured yet
func (p Profile) EmergencyContactsHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := p.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}

	contacts := []models.EmergencyContact{}
	if patient.Profile != nil && patient.Profile.EmergencyContacts != nil {
		contacts = patient.Profile.EmergencyContacts
	}

	b, err := json.Marshal(map[string]interface{}{"contacts": contacts})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// PatientFullDataHandler returns the whole patient document in one shot, the
// payload the doctor's detail screen renders.
func (p Profile) PatientFullDataHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := p.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(patient)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

func isTenDigitPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
