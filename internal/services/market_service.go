package services

import (
	"context"
	"log"
	"math/big"

	"github.com/nftmart/nftmart-api/internal/cache"
	"github.com/nftmart/nftmart-api/internal/events"
	"github.com/nftmart/nftmart-api/internal/ledger"
	"github.com/nftmart/nftmart-api/internal/models"
)

// Mirror persists ledger records after a successful mutation. A nil Mirror
// disables durability (tests, ephemeral deployments).
type Mirror interface {
	SaveNft(nft *models.Nft) error
	SaveSale(sale *models.Sale) error
}

// BalanceReader exposes the withdrawable balances the ledger's bank credits.
type BalanceReader interface {
	BalanceOf(addr string) (*big.Int, error)
}

// EventSink receives marketplace events (websocket hub, NATS publisher).
type EventSink interface {
	Publish(eventType string, payload interface{})
}

// MarketEvent is the payload delivered to event sinks.
type MarketEvent struct {
	Nft  *models.Nft  `json:"nft,omitempty"`
	Sale *models.Sale `json:"sale,omitempty"`
}

// MarketService fronts the ledger: it applies an operation, mirrors the
// outcome, invalidates the read cache, and fans out events. The ledger
// remains the single authority for marketplace state.
type MarketService struct {
	ledger   *ledger.Ledger
	mirror   Mirror
	balances BalanceReader
	cache    *cache.Cache
	sinks    []EventSink
}

// NewMarketService creates a new MarketService. mirror and cache may be nil.
func NewMarketService(led *ledger.Ledger, mirror Mirror, balances BalanceReader, c *cache.Cache) *MarketService {
	return &MarketService{
		ledger:   led,
		mirror:   mirror,
		balances: balances,
		cache:    c,
	}
}

// AddSink registers an event sink.
func (s *MarketService) AddSink(sink EventSink) {
	s.sinks = append(s.sinks, sink)
}

// CreateNft records a new listing owned by the caller.
func (s *MarketService) CreateNft(ctx context.Context, caller string, p models.NftParams) (*models.Nft, error) {
	id, err := s.ledger.CreateNft(caller, p.Name, p.Description, p.ImageURL, p.EndTime, weiBig(p.Price))
	if err != nil {
		return nil, err
	}
	return s.committed(ctx, id, nil, events.NftCreated)
}

// UpdateNft mutates a listing's fields.
func (s *MarketService) UpdateNft(ctx context.Context, caller string, id uint64, p models.NftParams) (*models.Nft, error) {
	if err := s.ledger.UpdateNft(caller, id, p.Name, p.Description, p.ImageURL, p.EndTime, weiBig(p.Price)); err != nil {
		return nil, err
	}
	return s.committed(ctx, id, nil, events.NftUpdated)
}

// DeleteNft soft-deletes a listing.
func (s *MarketService) DeleteNft(ctx context.Context, caller string, id uint64) (*models.Nft, error) {
	if err := s.ledger.DeleteNft(caller, id); err != nil {
		return nil, err
	}
	return s.committed(ctx, id, nil, events.NftDeleted)
}

// BuyNft purchases a listing with the attached payment.
func (s *MarketService) BuyNft(ctx context.Context, caller string, id uint64, value *models.Wei) (*models.Nft, error) {
	if err := s.ledger.BuyNft(caller, id, weiBig(value)); err != nil {
		return nil, err
	}

	var sale *models.Sale
	if sales, err := s.ledger.GetSale(id); err == nil && len(sales) > 0 {
		sale = sales[0]
	}
	return s.committed(ctx, id, sale, events.NftSold)
}

// Payout releases the held payment for a sold listing to its seller.
func (s *MarketService) Payout(ctx context.Context, caller string, id uint64) (*models.Nft, error) {
	if err := s.ledger.Payout(caller, id); err != nil {
		return nil, err
	}
	return s.committed(ctx, id, nil, events.NftPaidOut)
}

// MintNft confirms a listing as minted without a sale.
func (s *MarketService) MintNft(ctx context.Context, caller string, id uint64) (*models.Nft, error) {
	if err := s.ledger.MintNft(caller, id); err != nil {
		return nil, err
	}
	return s.committed(ctx, id, nil, events.NftMinted)
}

// TransferOwnership reassigns a listing outside the sale flow.
func (s *MarketService) TransferOwnership(ctx context.Context, caller string, id uint64, newOwner string) (*models.Nft, error) {
	if err := s.ledger.TransferOwnership(caller, id, newOwner); err != nil {
		return nil, err
	}
	return s.committed(ctx, id, nil, events.OwnershipTransferred)
}

// GetAllNfts enumerates active listings newest-first, through the cache.
func (s *MarketService) GetAllNfts(ctx context.Context) []*models.Nft {
	var nfts []*models.Nft
	if s.cache.Get(ctx, cache.KeyAllNfts, &nfts) {
		return nfts
	}
	nfts = s.ledger.GetAllNfts()
	s.cache.Set(ctx, cache.KeyAllNfts, nfts)
	return nfts
}

// GetSingleNft resolves a listing by id, soft-deleted ones included.
func (s *MarketService) GetSingleNft(id uint64) (*models.Nft, error) {
	return s.ledger.GetSingleNft(id)
}

// GetMyNfts enumerates the caller's active listings newest-first.
func (s *MarketService) GetMyNfts(caller string) []*models.Nft {
	return s.ledger.GetMyNfts(caller)
}

// GetSale returns the sales recorded against one listing.
func (s *MarketService) GetSale(id uint64) ([]*models.Sale, error) {
	return s.ledger.GetSale(id)
}

// GetAllSales enumerates every sale newest-first, through the cache.
func (s *MarketService) GetAllSales(ctx context.Context) []*models.Sale {
	var sales []*models.Sale
	if s.cache.Get(ctx, cache.KeyAllSales, &sales) {
		return sales
	}
	sales = s.ledger.GetAllSales()
	s.cache.Set(ctx, cache.KeyAllSales, sales)
	return sales
}

// GetMySales enumerates the caller's purchases newest-first.
func (s *MarketService) GetMySales(caller string) []*models.Sale {
	return s.ledger.GetMySales(caller)
}

// BalanceOf returns the withdrawable balance credited to an address.
func (s *MarketService) BalanceOf(addr string) (*models.Balance, error) {
	amount, err := s.balances.BalanceOf(addr)
	if err != nil {
		return nil, err
	}
	return &models.Balance{Address: addr, Amount: models.WeiFromBig(amount)}, nil
}

// committed runs the post-mutation bookkeeping: mirror the affected records,
// drop cached enumerations, and fan out the event. The ledger mutation has
// already succeeded; mirror failures are logged and repaired by the next
// successful write.
func (s *MarketService) committed(ctx context.Context, id uint64, sale *models.Sale, eventType string) (*models.Nft, error) {
	nft, err := s.ledger.GetSingleNft(id)
	if err != nil {
		return nil, err
	}

	if s.mirror != nil {
		if err := s.mirror.SaveNft(nft); err != nil {
			log.Printf("market: mirror nft %d: %v", nft.ID, err)
		}
		if sale != nil {
			if err := s.mirror.SaveSale(sale); err != nil {
				log.Printf("market: mirror sale %d: %v", sale.ID, err)
			}
		}
	}

	s.cache.Invalidate(ctx, cache.KeyAllNfts, cache.KeyAllSales)

	for _, sink := range s.sinks {
		sink.Publish(eventType, MarketEvent{Nft: nft, Sale: sale})
	}
	return nft, nil
}

func weiBig(w *models.Wei) *big.Int {
	if w == nil {
		return nil
	}
	return w.Big()
}
