package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/config"
	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// Consult exported for testing purposes
type Consult struct {
	DB   databases.UserDatabase
	Mail MailSender
}

var (
	errNoPatientCopy        = errors.New("no matching consult entry on the patient document")
	errAmbiguousPatientCopy = errors.New("more than one patient-side consult entry matches")
)

// SubmitConsultHandler files a new consult request on the patient's document.
// The entry gets a fresh ObjectID which doctor-side copies later reference
// through sourceId.
func (c Consult) SubmitConsultHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID   string `json:"subjectId"`
		Vitals      string `json:"vitals"`
		Allergies   string `json:"allergies"`
		Notes       string `json:"notes"`
		Medications string `json:"medications"`
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
	if strings.TrimSpace(body.Vitals) == "" {
		config.ErrorStatus("vitals are required", http.StatusBadRequest, w, errors.New("missing vitals"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	entry := models.ConsultRequest{
		ID:          primitive.NewObjectID(),
		Vitals:      body.Vitals,
		Allergies:   body.Allergies,
		Notes:       body.Notes,
		Medications: body.Medications,
		Status:      models.ConsultStatusPending,
		CreatedAt:   now,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := c.DB.UpdateOne(ctx,
		bson.M{"subjectId": body.SubjectID, "role": models.RolePatient},
		bson.M{
			"$push": bson.M{"consultRequests": entry},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to save consult request", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, errors.New("no patient document for subject"))
		return
	}

	b, err := json.Marshal(models.SubmitConsultResponse{Success: true, RequestID: entry.ID.Hex()})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// AssignConsultHandler copies a pending patient request onto the chosen
// doctor's document. The copy carries sourceId and patientId so later status
// changes can find their way back without guessing.
func (c Consult) AssignConsultHandler(w http.ResponseWriter, r *http.Request) {
	consultID, err := primitive.ObjectIDFromHex(mux.Vars(r)["consult_id"])
	if err != nil {
		config.ErrorStatus("consult id is invalid", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		PatientSubjectID string `json:"patientSubjectId"`
		DoctorID         string `json:"doctorId"`
	}
	err = json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.PatientSubjectID == "" || body.DoctorID == "" {
		config.ErrorStatus("patientSubjectId and doctorId are required", http.StatusBadRequest, w, errors.New("missing required fields"))
		return
	}
	doctorID, err := primitive.ObjectIDFromHex(body.DoctorID)
	if err != nil {
		config.ErrorStatus("doctor id is invalid", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := c.DB.FindOne(ctx, bson.M{"subjectId": body.PatientSubjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}

	var source *models.ConsultRequest
	for i := range patient.ConsultRequests {
		if patient.ConsultRequests[i].ID == consultID {
			source = &patient.ConsultRequests[i]
			break
		}
	}
	if source == nil {
		config.ErrorStatus("consult request not found", http.StatusNotFound, w, errors.New("no entry with the given id on the patient document"))
		return
	}

	doctor, err := c.DB.FindOne(ctx, bson.M{"_id": doctorID, "role": models.RoleDoctor})
	if err != nil {
		config.ErrorStatus("doctor not found", http.StatusNotFound, w, err)
		return
	}

	patientName := ""
	patientAge := 0
	hasCKD := false
	if patient.Profile != nil {
		patientName = patient.Profile.Name
		patientAge = patient.Profile.Age
		hasCKD = strings.EqualFold(patient.Profile.ChronicKidneyDisease, "yes")
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	sourceID := source.ID
	patientID := patient.ID
	copyEntry := models.ConsultRequest{
		ID:          primitive.NewObjectID(),
		Vitals:      source.Vitals,
		Allergies:   source.Allergies,
		Notes:       source.Notes,
		Medications: source.Medications,
		Status:      models.ConsultStatusPending,
		CreatedAt:   source.CreatedAt,
		SourceID:    &sourceID,
		PatientID:   &patientID,
		PatientName: patientName,
		PatientAge:  patientAge,
		HasCKD:      hasCKD,
		AssignedAt:  &now,
	}

	res, err := c.DB.UpdateOne(ctx,
		bson.M{"_id": doctor.ID},
		bson.M{
			"$push": bson.M{"consultRequests": copyEntry},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to assign consult request", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("doctor not found", http.StatusNotFound, w, errors.New("doctor document vanished during assignment"))
		return
	}

	b, _ := json.Marshal(map[string]interface{}{
		"success":    true,
		"doctorName": doctorDisplayName(doctor),
	})
	w.Write(b)
}

// UpdateConsultStatusHandler moves a doctor-side entry to under review or
// denied and mirrors the change onto the patient document. The patient side is
// written first so a failure can never leave the doctor ahead of the patient;
// a denied entry is dropped from the doctor's queue entirely.
func (c Consult) UpdateConsultStatusHandler(w http.ResponseWriter, r *http.Request) {
	consultID, err := primitive.ObjectIDFromHex(mux.Vars(r)["consult_id"])
	if err != nil {
		config.ErrorStatus("consult id is invalid", http.StatusBadRequest, w, err)
		return
	}
	doctorSubject := r.URL.Query().Get("subjectId")
	if doctorSubject == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	err = json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Status != models.ConsultStatusUnderReview && body.Status != models.ConsultStatusDenied {
		config.ErrorStatus("status must be 'under review' or 'denied'", http.StatusBadRequest, w, fmt.Errorf("unsupported status %q", body.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctor, err := c.DB.FindOne(ctx, bson.M{"subjectId": doctorSubject, "role": models.RoleDoctor})
	if err != nil {
		config.ErrorStatus("doctor not found", http.StatusForbidden, w, err)
		return
	}

	var entry *models.ConsultRequest
	for i := range doctor.ConsultRequests {
		if doctor.ConsultRequests[i].ID == consultID {
			entry = &doctor.ConsultRequests[i]
			break
		}
	}
	if entry == nil {
		config.ErrorStatus("consult request not found", http.StatusNotFound, w, errors.New("no entry with the given id on the doctor document"))
		return
	}

	// patient first, so the doctor queue never reflects a change the
	// patient cannot see
	err = c.propagateToPatient(ctx, *entry, bson.M{"consultRequests.$.status": body.Status})
	if err != nil {
		statusFromPropagation(w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	var update bson.M
	if body.Status == models.ConsultStatusDenied {
		update = bson.M{
			"$pull": bson.M{"consultRequests": bson.M{"_id": consultID}},
			"$set":  bson.M{"updatedAt": now},
		}
	} else {
		update = bson.M{
			"$set": bson.M{
				"consultRequests.$.status": body.Status,
				"updatedAt":                now,
			},
		}
	}
	filter := bson.M{"_id": doctor.ID}
	if body.Status != models.ConsultStatusDenied {
		filter["consultRequests._id"] = consultID
	}
	_, err = c.DB.UpdateOne(ctx, filter, update)
	if err != nil {
		// patient side already moved; a retry of the same request is safe
		zap.S().Errorw("doctor-side consult update failed after patient update",
			"consultId", consultID.Hex(),
			"status", body.Status,
			"error", err)
		config.ErrorStatus("failed to update doctor consult entry", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]interface{}{"success": true, "status": body.Status})
	w.Write(b)
}

// CompleteConsultationHandler records a prescription on the doctor-side entry
// and mirrors prescription, status and completion time onto the patient copy,
// then emails the prescription to the patient.
func (c Consult) CompleteConsultationHandler(w http.ResponseWriter, r *http.Request) {
	consultID, err := primitive.ObjectIDFromHex(mux.Vars(r)["consult_id"])
	if err != nil {
		config.ErrorStatus("consult id is invalid", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Prescription string `json:"prescription"`
	}
	err = json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	prescription := strings.TrimSpace(body.Prescription)
	if prescription == "" {
		config.ErrorStatus("prescription must not be empty", http.StatusBadRequest, w, errors.New("empty prescription"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := c.DB.UpdateOne(ctx,
		bson.M{"role": models.RoleDoctor, "consultRequests._id": consultID},
		bson.M{"$set": bson.M{
			"consultRequests.$.prescription": prescription,
			"consultRequests.$.status":       models.ConsultStatusCompleted,
			"consultRequests.$.completedAt":  now,
			"updatedAt":                      now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to complete consultation", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("consult request not found", http.StatusNotFound, w, errors.New("no doctor holds an entry with the given id"))
		return
	}

	// read the entry back to learn which patient copy to mirror onto
	doctor, err := c.DB.FindOne(ctx, bson.M{"role": models.RoleDoctor, "consultRequests._id": consultID})
	if err != nil {
		config.ErrorStatus("failed to read back consult entry", http.StatusInternalServerError, w, err)
		return
	}
	var entry *models.ConsultRequest
	for i := range doctor.ConsultRequests {
		if doctor.ConsultRequests[i].ID == consultID {
			entry = &doctor.ConsultRequests[i]
			break
		}
	}
	if entry == nil {
		config.ErrorStatus("consult request not found", http.StatusNotFound, w, errors.New("entry disappeared after completion write"))
		return
	}

	err = c.propagateToPatient(ctx, *entry, bson.M{
		"consultRequests.$.prescription": prescription,
		"consultRequests.$.status":       models.ConsultStatusCompleted,
		"consultRequests.$.completedAt":  now,
	})
	if err != nil {
		statusFromPropagation(w, err)
		return
	}

	if c.Mail != nil && entry.PatientID != nil {
		patient, ferr := c.DB.FindOne(ctx, bson.M{"_id": *entry.PatientID})
		if ferr == nil && patient.Email != "" {
			go c.sendPrescriptionEmail(patient.Email, entry.PatientName, prescription)
		}
	}

	b, _ := json.Marshal(map[string]interface{}{"success": true, "status": models.ConsultStatusCompleted})
	w.Write(b)
}

// propagateToPatient mirrors a field change onto the patient-side copy of a
// doctor-held entry. Zero matching entries is a conflict, never a silent
// success; older entries without sourceId fall back to the content-tuple
// heuristic and must match exactly one entry.
func (c Consult) propagateToPatient(ctx context.Context, entry models.ConsultRequest, set bson.M) error {
	if entry.PatientID == nil {
		return fmt.Errorf("%w: entry has no patientId", errNoPatientCopy)
	}

	patient, err := c.DB.FindOne(ctx, bson.M{"_id": *entry.PatientID})
	if err != nil {
		return fmt.Errorf("failed to load patient document: %w", err)
	}

	targetID, err := findPatientCopy(patient, entry)
	if err != nil {
		return err
	}

	set["updatedAt"] = primitive.NewDateTimeFromTime(time.Now())
	res, err := c.DB.UpdateOne(ctx,
		bson.M{"_id": patient.ID, "consultRequests._id": targetID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to write patient consult entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: entry removed between read and write", errNoPatientCopy)
	}
	return nil
}

// findPatientCopy locates the patient-side counterpart of a doctor-side
// entry. Entries written since sourceId was introduced join on the stable id;
// entries from before fall back to matching on content and creation time.
func findPatientCopy(patient *models.User, entry models.ConsultRequest) (primitive.ObjectID, error) {
	if entry.SourceID != nil {
		for _, req := range patient.ConsultRequests {
			if req.ID == *entry.SourceID {
				return req.ID, nil
			}
		}
		return primitive.NilObjectID, errNoPatientCopy
	}

	var matches []primitive.ObjectID
	for _, req := range patient.ConsultRequests {
		if req.Vitals == entry.Vitals &&
			req.Allergies == entry.Allergies &&
			req.Notes == entry.Notes &&
			req.Medications == entry.Medications &&
			req.CreatedAt == entry.CreatedAt {
			matches = append(matches, req.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return primitive.NilObjectID, errNoPatientCopy
	default:
		return primitive.NilObjectID, errAmbiguousPatientCopy
	}
}

func statusFromPropagation(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNoPatientCopy), errors.Is(err, errAmbiguousPatientCopy):
		config.ErrorStatus("patient record no longer matches this consult", http.StatusConflict, w, err)
	default:
		config.ErrorStatus("failed to update patient consult entry", http.StatusInternalServerError, w, err)
	}
}

// PatientConsultsHandler returns the caller's own consult request array,
// newest first. A missing patient yields an empty list rather than an error
// so a fresh account renders an empty screen.
func (c Consult) PatientConsultsHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := c.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		b, _ := json.Marshal(models.ConsultListResponse{Requests: []models.ConsultRequest{}})
		w.Write(b)
		return
	}

	requests := append([]models.ConsultRequest{}, patient.ConsultRequests...)
	sortConsultsNewestFirst(requests)

	b, err := json.Marshal(models.ConsultListResponse{Requests: requests})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// DoctorConsultsHandler returns the doctor's work queue, newest first.
// Entries without vitals are placeholders from partially written assignments
// and are filtered out.
func (c Consult) DoctorConsultsHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctor, err := c.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RoleDoctor})
	if err != nil {
		config.ErrorStatus("doctor not found", http.StatusNotFound, w, err)
		return
	}

	requests := make([]models.ConsultRequest, 0, len(doctor.ConsultRequests))
	for _, req := range doctor.ConsultRequests {
		if strings.TrimSpace(req.Vitals) == "" {
			continue
		}
		requests = append(requests, req)
	}
	sortConsultsNewestFirst(requests)

	b, err := json.Marshal(models.ConsultListResponse{Requests: requests})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// ConsultByIDHandler returns a single consult entry from the caller's own
// document, whichever role they hold.
func (c Consult) ConsultByIDHandler(w http.ResponseWriter, r *http.Request) {
	consultID, err := primitive.ObjectIDFromHex(mux.Vars(r)["consult_id"])
	if err != nil {
		config.ErrorStatus("consult id is invalid", http.StatusBadRequest, w, err)
		return
	}
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := c.DB.FindOne(ctx, bson.M{"subjectId": subjectID})
	if err != nil {
		config.ErrorStatus("user not found", http.StatusNotFound, w, err)
		return
	}

	for _, req := range user.ConsultRequests {
		if req.ID == consultID {
			b, merr := json.Marshal(req)
			if merr != nil {
				config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, merr)
				return
			}
			w.Write(b)
			return
		}
	}
	config.ErrorStatus("consult request not found", http.StatusNotFound, w, errors.New("no entry with the given id"))
}

// ConsultCKDHandler reports whether the patient behind a doctor-held consult
// has chronic kidney disease. The flag drives a prescription warning on the
// doctor screen.
func (c Consult) ConsultCKDHandler(w http.ResponseWriter, r *http.Request) {
	consultID, err := primitive.ObjectIDFromHex(mux.Vars(r)["consult_id"])
	if err != nil {
		config.ErrorStatus("consult id is invalid", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctor, err := c.DB.FindOne(ctx, bson.M{"role": models.RoleDoctor, "consultRequests._id": consultID})
	if err != nil {
		config.ErrorStatus("consult request not found", http.StatusNotFound, w, err)
		return
	}

	for _, req := range doctor.ConsultRequests {
		if req.ID == consultID {
			b, _ := json.Marshal(map[string]bool{"hasCKD": req.HasCKD})
			w.Write(b)
			return
		}
	}
	config.ErrorStatus("consult request not found", http.StatusNotFound, w, errors.New("no entry with the given id"))
}

// DoctorPrescriptionsHandler returns the doctor's completed consults that
// carry a prescription, newest completion first. Errors collapse to an empty
// list; the history screen is not worth a failure page.
func (c Consult) DoctorPrescriptionsHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	summaries := []models.PrescriptionSummary{}
	doctor, err := c.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RoleDoctor})
	if err == nil {
		for _, req := range doctor.ConsultRequests {
			if req.Status != models.ConsultStatusCompleted || req.Prescription == "" {
				continue
			}
			summaries = append(summaries, models.PrescriptionSummary{
				ID:           req.ID.Hex(),
				PatientName:  req.PatientName,
				PatientAge:   req.PatientAge,
				Vitals:       req.Vitals,
				Prescription: req.Prescription,
				CompletedAt:  req.CompletedAt,
			})
		}
		sort.SliceStable(summaries, func(i, j int) bool {
			var a, b primitive.DateTime
			if summaries[i].CompletedAt != nil {
				a = *summaries[i].CompletedAt
			}
			if summaries[j].CompletedAt != nil {
				b = *summaries[j].CompletedAt
			}
			return a > b
		})
	}

	b, merr := json.Marshal(map[string]interface{}{"prescriptions": summaries})
	if merr != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, merr)
		return
	}
	w.Write(b)
}

// PatientPrescriptionHandler returns the prescription for one of the
// patient's completed consults.
func (c Consult) PatientPrescriptionHandler(w http.ResponseWriter, r *http.Request) {
	consultID, err := primitive.ObjectIDFromHex(mux.Vars(r)["consult_id"])
	if err != nil {
		config.ErrorStatus("consult id is invalid", http.StatusBadRequest, w, err)
		return
	}
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := c.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RolePatient})
	if err != nil {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, err)
		return
	}

	for _, req := range patient.ConsultRequests {
		if req.ID != consultID {
			continue
		}
		if req.Status != models.ConsultStatusCompleted || req.Prescription == "" {
			config.ErrorStatus("consultation is not completed yet", http.StatusNotFound, w, errors.New("no prescription on the entry"))
			return
		}
		b, merr := json.Marshal(map[string]interface{}{
			"prescription": req.Prescription,
			"completedAt":  req.CompletedAt,
			"vitals":       req.Vitals,
		})
		if merr != nil {
			config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, merr)
			return
		}
		w.Write(b)
		return
	}
	config.ErrorStatus("consult request not found", http.StatusNotFound, w, errors.New("no entry with the given id"))
}

// ConsultHistoryHandler returns the caller's full consult array untouched,
// the raw feed the history screen groups client-side.
func (c Consult) ConsultHistoryHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := c.DB.FindOne(ctx, bson.M{"subjectId": subjectID})
	if err != nil {
		config.ErrorStatus("user not found", http.StatusNotFound, w, err)
		return
	}

	requests := user.ConsultRequests
	if requests == nil {
		requests = []models.ConsultRequest{}
	}
	b, err := json.Marshal(map[string]interface{}{"consultRequests": requests})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

func (c Consult) sendPrescriptionEmail(email, name, prescription string) {
	subject := "Your consultation is complete"
	plain := fmt.Sprintf("Hi %s,\n\nYour doctor has completed your consultation.\n\nPrescription:\n%s\n\nStay healthy,\nThe PulseGuard team", name, prescription)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your doctor has completed your consultation.</p><p><strong>Prescription:</strong></p><pre>%s</pre><p>Stay healthy,<br>The PulseGuard team</p>", name, prescription)
	err := c.Mail.Send(email, name, subject, plain, html)
	if err != nil {
		zap.S().Errorw("failed to send prescription email",
			"email", email,
			"error", err)
	}
}

func sortConsultsNewestFirst(requests []models.ConsultRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt > requests[j].CreatedAt
	})
}

func doctorDisplayName(doctor *models.User) string {
	if doctor.DoctorProfile != nil && doctor.DoctorProfile.Name != "" {
		return doctor.DoctorProfile.Name
	}
	return doctor.Email
}
