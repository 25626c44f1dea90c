package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nftmart/nftmart-api/internal/config"
	"github.com/nftmart/nftmart-api/internal/events"
	"github.com/nftmart/nftmart-api/internal/ledger"
	"github.com/nftmart/nftmart-api/internal/models"
	"github.com/nftmart/nftmart-api/internal/services"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	fees, err := ledger.NewFeeSchedule(500)
	if err != nil {
		t.Fatalf("NewFeeSchedule failed: %v", err)
	}
	bank := ledger.NewMemoryBank()
	led, err := ledger.New(fees, "0x00000000000000000000000000000000000000aa", bank)
	if err != nil {
		t.Fatalf("ledger.New failed: %v", err)
	}

	authService := services.NewAuthService(services.NewWalletService(), config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTExpiration: 1,
		ChallengeTTL:  5,
	})
	market := services.NewMarketService(led, nil, bank, nil)

	hub := NewHub()
	go hub.Run()
	return NewRouter(market, authService, hub)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/nfts"},
		{http.MethodGet, "/api/nfts/mine"},
		{http.MethodPost, "/api/nfts/1/buy"},
		{http.MethodGet, "/api/sales/mine"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestPublicReadsAreOpen(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/health", "/api/nfts", "/api/sales", "/api/balances/0x00000000000000000000000000000000000000aa"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestUnknownNftReturnsNotFound(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nfts/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/nfts/999 = %d, want 404", rec.Code)
	}
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ledger.ErrNftNotFound, http.StatusNotFound},
		{ledger.ErrUnauthorized, http.StatusForbidden},
		{ledger.ErrInsufficientFunds, http.StatusPaymentRequired},
		{ledger.ErrAlreadyMinted, http.StatusConflict},
		{ledger.ErrAlreadyPaidOut, http.StatusConflict},
		{ledger.ErrListingExpired, http.StatusGone},
		{ledger.ErrInvalidPrice, http.StatusBadRequest},
		{ledger.ErrEndTimeInPast, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func hubClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, 8), subs: make(map[uint64]bool)}
	h.clients[c] = true
	return c
}

func drain(c *Client) []WebSocketMessage {
	var got []WebSocketMessage
	for {
		select {
		case data := <-c.send:
			var msg WebSocketMessage
			if err := json.Unmarshal(data, &msg); err == nil {
				got = append(got, msg)
			}
		default:
			return got
		}
	}
}

func TestHubDispatchDeliversOnce(t *testing.T) {
	h := NewHub()
	firehose := hubClient(h)
	subscriber := hubClient(h)
	subscriber.subs[1] = true

	nft := &models.Nft{ID: 1, Name: "My NFT"}
	h.dispatch(event{eventType: events.NftSold, payload: services.MarketEvent{Nft: nft}})

	for name, c := range map[string]*Client{"firehose": firehose, "subscriber": subscriber} {
		got := drain(c)
		if len(got) != 1 {
			t.Errorf("%s client received %d messages, want 1", name, len(got))
			continue
		}
		if got[0].Type != events.NftSold {
			t.Errorf("%s client got type %q, want %q", name, got[0].Type, events.NftSold)
		}
	}
}

func TestHubDispatchFiltersBySubscription(t *testing.T) {
	h := NewHub()
	subscriber := hubClient(h)
	subscriber.subs[1] = true

	h.dispatch(event{eventType: events.NftUpdated, payload: services.MarketEvent{Nft: &models.Nft{ID: 2}}})
	if got := drain(subscriber); len(got) != 0 {
		t.Errorf("subscriber to nft 1 received %d messages for nft 2, want 0", len(got))
	}

	h.dispatch(event{eventType: events.NftUpdated, payload: services.MarketEvent{Nft: &models.Nft{ID: 1}}})
	if got := drain(subscriber); len(got) != 1 {
		t.Errorf("subscriber received %d messages for nft 1, want 1", len(got))
	}
}
