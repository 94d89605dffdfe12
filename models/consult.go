package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Consult request status values. A consult starts pending on the patient
// side; the doctor-side copy created on assignment starts pending again and
// moves through under review to completed, or gets denied.
const (
	ConsultStatusPending     = "pending"
	ConsultStatusUnderReview = "under review"
	ConsultStatusDenied      = "denied"
	ConsultStatusCompleted   = "completed"
)

// ConsultRequest is an embedded consult entry. The same struct backs both the
// patient-owned copy and the doctor-owned copy; the doctor copy additionally
// carries the assignment fields and SourceID, the _id of the patient-side
// entry it was copied from. SourceID is the join key used to propagate status
// changes back to the patient document.
type ConsultRequest struct {
	ID          primitive.ObjectID  `json:"_id" bson:"_id"`
	Vitals      string              `json:"vitals" bson:"vitals"`
	Allergies   string              `json:"allergies" bson:"allergies"`
	Notes       string              `json:"notes" bson:"notes"`
	Medications string              `json:"medications" bson:"medications"`
	Status      string              `json:"status" bson:"status"`
	CreatedAt   primitive.DateTime  `json:"createdAt" bson:"createdAt"`

	// Doctor-side copy only.
	SourceID    *primitive.ObjectID `json:"sourceId,omitempty" bson:"sourceId,omitempty"`
	PatientID   *primitive.ObjectID `json:"patientId,omitempty" bson:"patientId,omitempty"`
	PatientName string              `json:"patientName,omitempty" bson:"patientName,omitempty"`
	PatientAge  int                 `json:"patientAge,omitempty" bson:"patientAge,omitempty"`
	HasCKD      bool                `json:"hasCKD,omitempty" bson:"hasCKD,omitempty"`
	AssignedAt  *primitive.DateTime `json:"assignedAt,omitempty" bson:"assignedAt,omitempty"`

	// Set on completion, mirrored to both copies.
	Prescription string              `json:"prescription,omitempty" bson:"prescription,omitempty"`
	CompletedAt  *primitive.DateTime `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// ConsultListResponse wraps the consult arrays returned to both roles
type ConsultListResponse struct {
	Requests []ConsultRequest `json:"requests"`
}

// SubmitConsultResponse is returned when a patient files a new request
type SubmitConsultResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId"`
}

// PrescriptionSummary is one row of a doctor's completed-prescription history
type PrescriptionSummary struct {
	ID           string              `json:"_id"`
	PatientName  string              `json:"patientName"`
	PatientAge   int                 `json:"patientAge"`
	Vitals       string              `json:"vitals"`
	Prescription string              `json:"prescription"`
	CompletedAt  *primitive.DateTime `json:"completedAt"`
}
