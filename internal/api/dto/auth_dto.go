package dto

import "time"

// ChallengeRequest payload.
type ChallengeRequest struct {
	PublicKey string `json:"public_key"`
}

// ChallengeResponse payload; the client signs Nonce with its private key.
type ChallengeResponse struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenRequest payload.
type TokenRequest struct {
	PublicKey string `json:"public_key"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

// AuthResponse returns access token metadata.
type AuthResponse struct {
	Address   string    `json:"address"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
