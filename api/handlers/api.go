package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pulseguard/hypertension-api/api"
	"github.com/pulseguard/hypertension-api/api/scheduler"
	"github.com/pulseguard/hypertension-api/config"
	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	p := Profile{DB: databases.NewUserDatabase(a.dbHelper)}
	d := Doctor{DB: databases.NewUserDatabase(a.dbHelper)}
	bp := BPReading{DB: databases.NewUserDatabase(a.dbHelper), GatewayURL: a.Config.SOSGatewayURL}
	consult := Consult{DB: databases.NewUserDatabase(a.dbHelper), Mail: NewSendgridMailer()}
	fit := FitData{DB: databases.NewUserDatabase(a.dbHelper), StagingDB: databases.NewFitStagingDatabase(a.dbHelper)}
	sos := SOS{DB: databases.NewUserDatabase(a.dbHelper), GatewayURL: a.Config.SOSGatewayURL}
	proxy := Proxy{RiskAPIURL: a.Config.RiskAPIURL, MedSearchAPIURL: a.Config.MedSearchAPIURL}
	ops := Ops{Scheduler: a.Scheduler}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/users/sync", http.HandlerFunc(u.SyncUserHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")

	apiCreate.Handle("/patient/profile", api.Middleware(http.HandlerFunc(p.SavePatientProfileHandler))).Methods("POST")
	apiCreate.Handle("/patient/profile", api.Middleware(http.HandlerFunc(p.PatientProfileHandler))).Methods("GET")
	apiCreate.Handle("/patient/emergency-contacts", api.Middleware(http.HandlerFunc(p.EmergencyContactsHandler))).Methods("GET")
	apiCreate.Handle("/patient/emergency-contacts", api.Middleware(http.HandlerFunc(p.SaveEmergencyContactsHandler))).Methods("POST")
	apiCreate.Handle("/patient/full-data", api.Middleware(http.HandlerFunc(p.PatientFullDataHandler))).Methods("GET")

	apiCreate.Handle("/doctor/profile", api.Middleware(http.HandlerFunc(d.SaveDoctorProfileHandler))).Methods("POST")
	apiCreate.Handle("/doctor/profile", api.Middleware(http.HandlerFunc(d.DoctorProfileHandler))).Methods("GET")
	apiCreate.Handle("/doctor/photo", api.Middleware(http.HandlerFunc(d.UploadDoctorPhotoHandler))).Methods("POST")
	apiCreate.Handle("/doctors", api.Middleware(http.HandlerFunc(d.DoctorsHandler))).Methods("GET")

	apiCreate.Handle("/bp-readings", api.Middleware(http.HandlerFunc(bp.CreateBPReadingHandler))).Methods("POST")
	apiCreate.Handle("/bp-readings/today", api.Middleware(http.HandlerFunc(bp.TodayBPHandler))).Methods("GET")
	apiCreate.Handle("/bp-readings/summary", api.Middleware(http.HandlerFunc(bp.BPSummaryHandler))).Methods("GET")
	apiCreate.Handle("/bp-readings/comments", api.Middleware(http.HandlerFunc(bp.BPCommentsHandler))).Methods("GET")
	apiCreate.Handle("/bp-reminder", api.Middleware(http.HandlerFunc(bp.SetReminderHandler))).Methods("POST")
	apiCreate.Handle("/bp-reminder", api.Middleware(http.HandlerFunc(bp.ReminderHandler))).Methods("GET")

	apiCreate.Handle("/consults", api.Middleware(http.HandlerFunc(consult.SubmitConsultHandler))).Methods("POST")
	apiCreate.Handle("/consults/patient", api.Middleware(http.HandlerFunc(consult.PatientConsultsHandler))).Methods("GET")
	apiCreate.Handle("/consults/doctor", api.Middleware(http.HandlerFunc(consult.DoctorConsultsHandler))).Methods("GET")
	apiCreate.Handle("/consults/history", api.Middleware(http.HandlerFunc(consult.ConsultHistoryHandler))).Methods("GET")
	apiCreate.Handle("/consults/{consult_id}/assign", api.Middleware(http.HandlerFunc(consult.AssignConsultHandler))).Methods("POST")
	apiCreate.Handle("/consults/{consult_id}/status", api.Middleware(http.HandlerFunc(consult.UpdateConsultStatusHandler))).Methods("PUT")
	apiCreate.Handle("/consults/{consult_id}/complete", api.Middleware(http.HandlerFunc(consult.CompleteConsultationHandler))).Methods("POST")
	apiCreate.Handle("/consults/{consult_id}/ckd", api.Middleware(http.HandlerFunc(consult.ConsultCKDHandler))).Methods("GET")
	apiCreate.Handle("/consults/{consult_id}/prescription", api.Middleware(http.HandlerFunc(consult.PatientPrescriptionHandler))).Methods("GET")
	apiCreate.Handle("/consults/{consult_id}", api.Middleware(http.HandlerFunc(consult.ConsultByIDHandler))).Methods("GET")
	apiCreate.Handle("/prescriptions/doctor", api.Middleware(http.HandlerFunc(consult.DoctorPrescriptionsHandler))).Methods("GET")

	apiCreate.Handle("/fit/stage", api.Middleware(http.HandlerFunc(fit.StageFitDataHandler))).Methods("POST")
	apiCreate.Handle("/fit", api.Middleware(http.HandlerFunc(fit.SaveFitDataHandler))).Methods("POST")

	apiCreate.Handle("/sos", api.Middleware(http.HandlerFunc(sos.TriggerSOSHandler))).Methods("POST")
	apiCreate.Handle("/heart-risk", api.Middleware(http.HandlerFunc(proxy.HeartRiskHandler))).Methods("POST")
	apiCreate.Handle("/medicine-search", api.Middleware(http.HandlerFunc(proxy.MedicineSearchHandler))).Methods("POST")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	// live SOS alert feed for doctor dashboards
	r.HandleFunc("/ws/alerts", HandleAlertsWebSocket)

	// ops-only escape hatch; bearer tokens are not accepted here
	r.Handle("/internal/flush-fit-data", api.OpsMiddleware(http.HandlerFunc(ops.FlushFitDataHandler))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("hypertension-api has connected to the database")

	a.Scheduler = scheduler.NewScheduler(
		databases.NewUserDatabase(a.dbHelper),
		databases.NewFitStagingDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
