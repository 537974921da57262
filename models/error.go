package models

// HealthCheckResponse is the response for the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// ErrorMessageResponse is the body written by config.ErrorStatus; the
// response field carries the message and the underlying error joined with
// a comma
type ErrorMessageResponse struct {
	Response string `json:"response"`
}
