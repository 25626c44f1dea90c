package models

import (
	"time"
)

// AuthChallenge is a one-time message a wallet must sign to authenticate.
type AuthChallenge struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChallengeRequest starts the wallet authentication flow.
type ChallengeRequest struct {
	Address string `json:"address"`
}

// VerifyRequest completes the wallet authentication flow with a compact
// secp256k1 signature over the challenge message, hex encoded.
type VerifyRequest struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// AuthToken is the authentication token response.
type AuthToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Address   string    `json:"address"`
}
