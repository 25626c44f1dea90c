package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nftmart/nftmart-api/internal/services"
)

// NewRouter builds the HTTP surface of the marketplace.
func NewRouter(market *services.MarketService, authService *services.AuthService, hub *Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/challenge", ChallengeHandler(authService))
			r.Post("/verify", VerifyHandler(authService))
		})

		r.Route("/nfts", func(r chi.Router) {
			r.Get("/", GetAllNftsHandler(market))
			r.Get("/{id}", GetNftHandler(market))

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(authService))
				r.Get("/mine", GetMyNftsHandler(market))
				r.Post("/", CreateNftHandler(market))
				r.Put("/{id}", UpdateNftHandler(market))
				r.Delete("/{id}", DeleteNftHandler(market))
				r.Post("/{id}/buy", BuyNftHandler(market))
				r.Post("/{id}/payout", PayoutHandler(market))
				r.Post("/{id}/mint", MintNftHandler(market))
				r.Post("/{id}/transfer", TransferNftHandler(market))
			})
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", GetAllSalesHandler(market))
			r.Get("/nft/{id}", GetSaleHandler(market))

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(authService))
				r.Get("/mine", GetMySalesHandler(market))
			})
		})

		r.Get("/balances/{address}", GetBalanceHandler(market))
	})

	r.Get("/ws", ServeWs(hub))

	return r
}
