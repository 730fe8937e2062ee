// Package models defines the request and response bodies exchanged
// with clients of the shortener's HTTP API.
package models

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	// URL is the original URL to be shortened.
	URL string `json:"url"`
}

// ShortenResponse is returned when a link has been created.
type ShortenResponse struct {
	// Code is the generated short code.
	Code string `json:"code"`

	// ShortURL is the request origin joined with the code.
	ShortURL string `json:"short_url"`

	// URL echoes the original URL.
	URL string `json:"url"`
}

// ErrorResponse carries a human readable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of liveness and readiness probes.
type HealthResponse struct {
	OK bool `json:"ok"`
}
