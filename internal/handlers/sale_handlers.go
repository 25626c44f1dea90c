package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nftmart/nftmart-api/internal/services"
)

// GetAllSalesHandler returns the full sales ledger, newest first
func GetAllSalesHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, market.GetAllSales(r.Context()))
	}
}

// GetSaleHandler returns the sale history of a single nft
func GetSaleHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseNftID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid nft id")
			return
		}

		sales, err := market.GetSale(id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sales)
	}
}

// GetMySalesHandler returns sales where the caller was the buyer
func GetMySalesHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, market.GetMySales(caller))
	}
}

// GetBalanceHandler returns the settled balance of a wallet
func GetBalanceHandler(market *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		balance, err := market.BalanceOf(address)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch balance")
			return
		}
		writeJSON(w, http.StatusOK, balance)
	}
}
