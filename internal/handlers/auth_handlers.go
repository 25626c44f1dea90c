package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nftmart/nftmart-api/internal/models"
	"github.com/nftmart/nftmart-api/internal/services"
)

// ChallengeHandler issues a signing challenge for a wallet address
func ChallengeHandler(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ChallengeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		challenge, err := authService.Challenge(req.Address)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, challenge)
	}
}

// VerifyHandler checks a challenge signature and issues a JWT
func VerifyHandler(authService *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		token, err := authService.Verify(req)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, token)
	}
}
