package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/config"
	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// Doctor exported for testing purposes
type Doctor struct {
	DB databases.UserDatabase
}

// SaveDoctorProfileHandler stores the doctor's professional profile
func (d Doctor) SaveDoctorProfileHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string               `json:"subjectId"`
		Profile   models.DoctorProfile `json:"profile"`
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
	if body.Profile.Name == "" || body.Profile.RegistrationID == "" {
		config.ErrorStatus("name and registrationId are required", http.StatusBadRequest, w, errors.New("missing required profile fields"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	body.Profile.UpdatedAt = now
	if body.Profile.CreatedAt == 0 {
		body.Profile.CreatedAt = now
	}

	res, err := d.DB.UpdateOne(ctx,
		bson.M{"subjectId": body.SubjectID, "role": models.RoleDoctor},
		bson.M{"$set": bson.M{"doctorProfile": body.Profile, "updatedAt": now}},
	)
	if err != nil {
		config.ErrorStatus("failed to save doctor profile", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("doctor not found", http.StatusNotFound, w, errors.New("no doctor document for subject"))
		return
	}

	b, _ := json.Marshal(map[string]bool{"success": true})
	w.Write(b)
}

// DoctorProfileHandler returns the doctor's stored profile
func (d Doctor) DoctorProfileHandler(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")
	if subjectID == "" {
		config.ErrorStatus("subjectId is required", http.StatusUnauthorized, w, errors.New("missing subjectId"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctor, err := d.DB.FindOne(ctx, bson.M{"subjectId": subjectID, "role": models.RoleDoctor})
	if err != nil {
		config.ErrorStatus("doctor not found", http.StatusNotFound, w, err)
		return
	}
	if doctor.DoctorProfile == nil {
		config.ErrorStatus("profile not set", http.StatusNotFound, w, errors.New("doctor has no profile yet"))
		return
	}

	b, err := json.Marshal(doctor.DoctorProfile)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// DoctorsHandler lists every doctor with a completed profile, the directory
// patients pick from when requesting a consult
func (d Doctor) DoctorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctors, err := d.DB.Find(ctx, bson.M{
		"role":          models.RoleDoctor,
		"doctorProfile": bson.M{"$exists": true},
	})
	if err != nil {
		config.ErrorStatus("failed to list doctors", http.StatusInternalServerError, w, err)
		return
	}

	type doctorListing struct {
		ID           string `json:"_id"`
		Name         string `json:"name"`
		Experience   int    `json:"experience"`
		HospitalName string `json:"hospitalName"`
		PhotoURL     string `json:"photoUrl,omitempty"`
	}
	listings := []doctorListing{}
	for _, doc := range doctors {
		if doc.DoctorProfile == nil {
			continue
		}
		listings = append(listings, doctorListing{
			ID:           doc.ID.Hex(),
			Name:         doc.DoctorProfile.Name,
			Experience:   doc.DoctorProfile.Experience,
			HospitalName: doc.DoctorProfile.HospitalName,
			PhotoURL:     doc.DoctorProfile.PhotoURL,
		})
	}

	b, err := json.Marshal(map[string]interface{}{"doctors": listings})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}

// UploadDoctorPhotoHandler pushes a base64 data-URI image to cloudinary and
// stores the returned secure URL on the doctor profile
func (d Doctor) UploadDoctorPhotoHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SubjectID string `json:"subjectId"`
		Image     string `json:"image"`
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
	if body.Image == "" {
		config.ErrorStatus("image is required", http.StatusBadRequest, w, errors.New("missing image"))
		return
	}

	cld, err := cloudinary.New()
	if err != nil {
		config.ErrorStatus("failed to initialize cloudinary", http.StatusInternalServerError, w, err)
		return
	}

	uploadCtx, uploadCancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer uploadCancel()
	resp, err := cld.Upload.Upload(uploadCtx, body.Image, uploader.UploadParams{
		Folder:   "doctor-profiles",
		PublicID: body.SubjectID,
	})
	if err != nil {
		config.ErrorStatus("failed to upload photo", http.StatusBadGateway, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := primitive.NewDateTimeFromTime(time.Now())
	res, err := d.DB.UpdateOne(ctx,
		bson.M{"subjectId": body.SubjectID, "role": models.RoleDoctor},
		bson.M{"$set": bson.M{
			"doctorProfile.photoUrl": resp.SecureURL,
			"updatedAt":              now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to save photo url", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("doctor not found", http.StatusNotFound, w, errors.New("no doctor document for subject"))
		return
	}

	b, _ := json.Marshal(map[string]string{"photoUrl": resp.SecureURL})
	w.Write(b)
}
