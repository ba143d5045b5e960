package dto

import "time"

// TokenRequest exchanges the API key for a bearer token.
type TokenRequest struct {
	Key     string `json:"key"`
	Subject string `json:"subject"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
