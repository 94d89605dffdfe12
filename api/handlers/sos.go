package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/config"
	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// SOS exported for testing purposes
type SOS struct {
	DB         databases.UserDatabase
	GatewayURL string
}

// TriggerSOSHandler looks up the patient's two emergency contacts and hands
// them to the call gateway, which dials each with a text-to-speech alert.
// Indian mobile numbers are stored as bare 10-digit strings; the gateway
// wants E.164, so +91 goes on here. The alert is also broadcast to any
// doctor dashboards on the live feed.
func (s SOS) TriggerSOSHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string `json:"subjectId"`
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

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := s.DB.FindOne(ctx, bson.M{"subjectId": body.SubjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}
	if patient.Profile == nil || len(patient.Profile.EmergencyContacts) != 2 {
		config.ErrorStatus("emergency contacts are not configured", http.StatusBadRequest, w,
			errors.New("patient needs exactly two emergency contacts"))
		return
	}

	numbers := make([]string, 0, 2)
	for i, contact := range patient.Profile.EmergencyContacts {
		if !isTenDigitPhone(contact.Phone) {
			config.ErrorStatus("stored contact phone is invalid", http.StatusBadRequest, w,
				fmt.Errorf("contact %d has a malformed phone", i))
			return
		}
		numbers = append(numbers, "+91"+contact.Phone)
	}

	patientName := ""
	if patient.Profile != nil {
		patientName = patient.Profile.Name
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"numbers":     numbers,
		"patientName": patientName,
	})
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Post(s.GatewayURL+"/trigger-sos", "application/json", bytes.NewReader(payload))
	if err != nil {
		config.ErrorStatus("call gateway is unreachable", http.StatusBadGateway, w, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		gatewayBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		config.ErrorStatus("call gateway rejected the alert", http.StatusBadGateway, w,
			fmt.Errorf("gateway status %d: %s", resp.StatusCode, gatewayBody))
		return
	}

	BroadcastAlert(AlertMessage{
		Type:        "sos",
		PatientName: patientName,
		SubjectID:   body.SubjectID,
		At:          time.Now().UTC().Format(time.RFC3339),
	})

	b, _ := json.Marshal(map[string]interface{}{"success": true, "called": numbers})
	w.Write(b)
}
