// Package types contains the request and response bodies of the HTTP API
// that aren't todo DTOs.
package types

import "time"

// TokenRequest is the body of the token endpoint.
type TokenRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Created is returned after a resource is created.
type Created struct {
	ID uint64 `json:"id"`
}

// Purged is returned after all lists are removed.
type Purged struct {
	Count int64 `json:"count"`
}

// Health is the body of the health endpoint.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
