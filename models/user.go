package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User holds the structure for the users collection in mongo. Every person is
// one document; role decides which of the embedded sections are populated.
type User struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id"`
	SubjectID       string             `json:"subjectId" bson:"subjectId"`
	Email           string             `json:"email" bson:"email"`
	Role            string             `json:"role" bson:"role"`
	Profile         *PatientProfile    `json:"profile,omitempty" bson:"profile,omitempty"`
	DoctorProfile   *DoctorProfile     `json:"doctorProfile,omitempty" bson:"doctorProfile,omitempty"`
	BPReadings      []BPReading        `json:"bpReadings" bson:"bpReadings"`
	FitData         []FitSnapshot      `json:"fitData" bson:"fitData"`
	BPReminder      *BPReminder        `json:"bpReminder,omitempty" bson:"bpReminder,omitempty"`
	ConsultRequests []ConsultRequest   `json:"consultRequests" bson:"consultRequests"`
	CreatedAt       primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt       primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Role values stored on a user document
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// PatientProfile holds the structure for the patient profile sub-document.
// The yes/no strings mirror what the risk inference service expects.
type PatientProfile struct {
	Name                 string             `json:"name" bson:"name"`
	Gender               string             `json:"gender" bson:"gender"`
	Age                  int                `json:"age" bson:"age"`
	Height               float64            `json:"height" bson:"height"`
	Weight               float64            `json:"weight" bson:"weight"`
	Smoker               string             `json:"smoker" bson:"smoker"`
	HypertensionTreated  string             `json:"hypertension_treated" bson:"hypertension_treated"`
	FamilyHistoryOfCVD   string             `json:"family_history_of_cardiovascular_disease" bson:"family_history_of_cardiovascular_disease"`
	AtrialFibrillation   string             `json:"atrial_fibrillation" bson:"atrial_fibrillation"`
	ChronicKidneyDisease string             `json:"chronic_kidney_disease" bson:"chronic_kidney_disease"`
	RheumatoidArthritis  string             `json:"rheumatoid_arthritis" bson:"rheumatoid_arthritis"`
	Diabetes             string             `json:"diabetes" bson:"diabetes"`
	ChronicObstructivePD string             `json:"chronic_obstructive_pulmonary_disorder" bson:"chronic_obstructive_pulmonary_disorder"`
	EmergencyContacts    []EmergencyContact `json:"emergencyContacts,omitempty" bson:"emergencyContacts,omitempty"`
	CreatedAt            primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt            primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// DoctorProfile holds the structure for the doctor profile sub-document
type DoctorProfile struct {
	Name           string             `json:"name" bson:"name"`
	RegistrationID string             `json:"registrationId" bson:"registrationId"`
	PhotoURL       string             `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	Experience     int                `json:"experience" bson:"experience"`
	HospitalName   string             `json:"hospitalName" bson:"hospitalName"`
	CreatedAt      primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt      primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// EmergencyContact is one of the two numbers dialed on SOS
type EmergencyContact struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
}

// BPReading is a single blood-pressure entry in the per-user history array
type BPReading struct {
	Date         string             `json:"date" bson:"date"`
	Time         string             `json:"time" bson:"time"`
	Systolic     int                `json:"systolic" bson:"systolic"`
	Diastolic    int                `json:"diastolic" bson:"diastolic"`
	SleepQuality int                `json:"sleepQuality" bson:"sleepQuality"`
	StressLevel  int                `json:"stressLevel" bson:"stressLevel"`
	Notes        string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// FitSnapshot is one day of activity data in the per-user history array
type FitSnapshot struct {
	Date        string             `json:"date" bson:"date"`
	Steps       int                `json:"steps" bson:"steps"`
	HeartPoints int                `json:"heartPoints" bson:"heartPoints"`
	Calories    int                `json:"calories" bson:"calories"`
	Distance    float64            `json:"distance" bson:"distance"`
	MoveMinutes int                `json:"moveMinutes" bson:"moveMinutes"`
	Speed       float64            `json:"speed" bson:"speed"`
	CreatedAt   primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// BPReminder holds the twice-daily call reminder settings
type BPReminder struct {
	Enabled bool   `json:"enabled" bson:"enabled"`
	Phone   string `json:"phone" bson:"phone"`
}
