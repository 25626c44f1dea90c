package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nftmart/nftmart-api/internal/models"
	"github.com/nftmart/nftmart-api/internal/services"
)

// GetAllNftsHandler returns every active listing, newest first
func GetAllNftsHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, market.GetAllNfts(r.Context()))
	}
}

// GetNftHandler returns a single listing by id
func GetNftHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseNftID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid nft id")
			return
		}

		nft, err := market.GetSingleNft(id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nft)
	}
}

// GetMyNftsHandler returns listings owned by the authenticated wallet
func GetMyNftsHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, market.GetMyNfts(caller))
	}
}

// CreateNftHandler lists a new nft for sale
func CreateNftHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var params models.NftParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		nft, err := market.CreateNft(r.Context(), caller, params)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, nft)
	}
}

// UpdateNftHandler changes the price of an existing listing
func UpdateNftHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := parseNftID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid nft id")
			return
		}

		var params models.NftParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		nft, err := market.UpdateNft(r.Context(), caller, id, params)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nft)
	}
}

// DeleteNftHandler takes a listing off the market
func DeleteNftHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := parseNftID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid nft id")
			return
		}

		nft, err := market.DeleteNft(r.Context(), caller, id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nft)
	}
}

// BuyNftHandler purchases a listing, escrowing the price
func BuyNftHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := parseNftID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid nft id")
			return
		}

		var req models.BuyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Value == nil {
			writeError(w, http.StatusBadRequest, "Missing payment value")
			return
		}

		nft, err := market.BuyNft(r.Context(), caller, id, req.Value)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nft)
	}
}

// PayoutHandler releases escrowed funds for a sold nft
func PayoutHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := parseNftID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid nft id")
			return
		}

		nft, err := market.Payout(r.Context(), caller, id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nft)
	}
}

// MintNftHandler marks an nft as minted without a sale
func MintNftHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := parseNftID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid nft id")
			return
		}

		nft, err := market.MintNft(r.Context(), caller, id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nft)
	}
}

// TransferNftHandler hands an nft to another wallet
func TransferNftHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id, err := parseNftID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid nft id")
			return
		}

		var req models.TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		nft, err := market.TransferOwnership(r.Context(), caller, id, req.NewOwner)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nft)
	}
}

func parseNftID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}
