package server

import "github.com/SercanAkan88/siteguard/internal/model"

// ScanURLRequest is the payload of the public demo scan and quick check.
type ScanURLRequest struct {
	URL string `json:"url"`
}

// DemoScanResponse wraps a completed demo scan.
type DemoScanResponse struct {
	Success bool              `json:"success"`
	Results *model.ScanResult `json:"results"`
}

// CreateUserRequest registers the owner of one or more websites.
type CreateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CreateWebsiteRequest registers a monitoring target for a user.
type CreateWebsiteRequest struct {
	UserID string `json:"userId"`
	URL    string `json:"url"`
	Name   string `json:"name"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
