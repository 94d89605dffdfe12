package models

// ErrorMessageResponse is the body written by config.ErrorStatus; tests
// decode failure responses into it
type ErrorMessageResponse struct {
	Response string `json:"response"`
}

// HealthCheckResponse returns the health check response struct
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
