package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/nftmart/nftmart-api/internal/ledger"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeLedgerError maps market errors onto HTTP statuses. The error
// text goes back to the client unchanged so wallets can match on it.
func writeLedgerError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNftNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrAlreadyMinted),
		errors.Is(err, ledger.ErrAlreadyPaidOut),
		errors.Is(err, ledger.ErrNotMinted),
		errors.Is(err, ledger.ErrSelfPurchase):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrListingExpired):
		return http.StatusGone
	case errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrEndTimeInPast),
		errors.Is(err, ledger.ErrInvalidRecipient):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
