// Package ledger reimplements the Nftmart marketplace contract as an
// in-process state machine. Every mutating call runs to completion under a
// single mutex, mirroring how the chain serializes transactions: compound
// checks are atomic and no partial mutation is ever observable.
package ledger

import (
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/nftmart/nftmart-api/internal/models"
)

// Ledger owns listings, sales, escrow, and the fee policy. The caller
// address is passed explicitly on every operation, the msg.sender analog.
type Ledger struct {
	mu       sync.Mutex
	fees     *FeeSchedule
	platform string
	bank     Bank
	now      func() time.Time

	nextNftID  uint64
	nextSaleID uint64
	nfts       map[uint64]*models.Nft
	sales      []*models.Sale
	escrow     map[uint64]*big.Int // listing id -> held payment
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces the ledger's time source. Tests use this to control
// expiry checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a ledger with the given fee schedule, platform treasury
// address, and bank for outbound transfers. The treasury address is
// required: every payout credits it, and the bank refuses transfers to
// an empty recipient.
func New(fees *FeeSchedule, platform string, bank Bank, opts ...Option) (*Ledger, error) {
	if platform == "" {
		return nil, fmt.Errorf("ledger: platform treasury address is required")
	}
	l := &Ledger{
		fees:     fees,
		platform: platform,
		bank:     bank,
		now:      time.Now,
		nfts:     make(map[uint64]*models.Nft),
		escrow:   make(map[uint64]*big.Int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Fees returns the deployment-time fee schedule.
func (l *Ledger) Fees() *FeeSchedule {
	return l.fees
}

// Platform returns the treasury address service fees are routed to.
func (l *Ledger) Platform() string {
	return l.platform
}

func (l *Ledger) nowMs() int64 {
	return l.now().UnixMilli()
}

// CreateNft records a new listing owned by the caller and returns its id.
// Ids are sequential starting at 1 and never reused.
func (l *Ledger) CreateNft(caller, name, description, imageURL string, endTime int64, price *big.Int) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if price == nil || price.Sign() <= 0 {
		return 0, ErrInvalidPrice
	}
	if endTime <= l.nowMs() {
		return 0, ErrEndTimeInPast
	}

	l.nextNftID++
	id := l.nextNftID
	l.nfts[id] = &models.Nft{
		ID:          id,
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Owner:       caller,
		Price:       models.WeiFromBig(price),
		Timestamp:   l.nowMs(),
		EndTime:     endTime,
	}
	return id, nil
}

// UpdateNft mutates a listing's fields in place. Only the current owner may
// update, and only while the listing is unsold.
func (l *Ledger) UpdateNft(caller string, id uint64, name, description, imageURL string, endTime int64, price *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nf, err := l.active(id)
	if err != nil {
		return err
	}
	if nf.Owner != caller {
		return ErrUnauthorized
	}
	if nf.Minted {
		return ErrAlreadyMinted
	}
	if price == nil || price.Sign() <= 0 {
		return ErrInvalidPrice
	}

	nf.Name = name
	nf.Description = description
	nf.ImageURL = imageURL
	nf.EndTime = endTime
	nf.Price = models.WeiFromBig(price)
	nf.Timestamp = l.nowMs()
	return nil
}

// DeleteNft soft-deletes a listing. The id remains resolvable through
// GetSingleNft but drops out of every enumeration. Irreversible.
func (l *Ledger) DeleteNft(caller string, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nf, err := l.active(id)
	if err != nil {
		return err
	}
	if nf.Owner != caller {
		return ErrUnauthorized
	}
	if nf.Minted {
		return ErrAlreadyMinted
	}

	nf.Deleted = true
	return nil
}

// BuyNft purchases a listing before its expiry. The full payment enters the
// ledger's custody; anything beyond the price is refunded to the buyer
// immediately, so escrow holds exactly the price until payout.
func (l *Ledger) BuyNft(caller string, id uint64, payment *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nf, err := l.active(id)
	if err != nil {
		return err
	}
	if nf.Minted {
		return ErrAlreadyMinted
	}
	if l.nowMs() >= nf.EndTime {
		return ErrListingExpired
	}
	price := nf.Price.Big()
	if payment == nil || payment.Cmp(price) < 0 {
		return ErrInsufficientFunds
	}
	if nf.Owner == caller {
		return ErrSelfPurchase
	}

	// Refund the overpayment before touching state: a bank failure must
	// leave the listing untouched.
	if over := new(big.Int).Sub(payment, price); over.Sign() > 0 {
		if err := l.bank.Settle(Entry{To: caller, Amount: over}); err != nil {
			return err
		}
	}

	l.escrow[id] = new(big.Int).Set(price)
	nf.Seller = nf.Owner
	nf.Owner = caller
	nf.Minted = true
	nf.Timestamp = l.nowMs()

	l.nextSaleID++
	l.sales = append(l.sales, &models.Sale{
		ID:        l.nextSaleID,
		NftID:     id,
		Owner:     caller,
		Price:     models.WeiFromBig(price),
		Timestamp: l.nowMs(),
		EndTime:   nf.EndTime,
		Minted:    true,
	})
	return nil
}

// Payout releases the held payment for a sold listing: the service fee goes
// to the platform treasury and the remainder to the seller recorded at sale
// time. Callable exactly once per listing.
func (l *Ledger) Payout(caller string, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nf, ok := l.nfts[id]
	if !ok {
		return ErrNftNotFound
	}
	if !nf.Minted {
		return ErrNotMinted
	}
	if nf.PaidOut {
		return ErrAlreadyPaidOut
	}
	if nf.Seller == "" || nf.Seller != caller {
		return ErrUnauthorized
	}

	held, ok := l.escrow[id]
	if !ok {
		held = nf.Price.Big()
	}
	serviceFee, sellerProceeds := l.fees.Split(held)
	if err := l.bank.Settle(
		Entry{To: nf.Seller, Amount: sellerProceeds},
		Entry{To: l.platform, Amount: serviceFee},
	); err != nil {
		return err
	}

	delete(l.escrow, id)
	nf.PaidOut = true
	return nil
}

// MintNft confirms a listing as minted without a sale. Only the current
// owner may call it, and only while the listing is unsold.
func (l *Ledger) MintNft(caller string, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nf, err := l.active(id)
	if err != nil {
		return err
	}
	if nf.Owner != caller {
		return ErrUnauthorized
	}
	if nf.Minted {
		return ErrAlreadyMinted
	}

	nf.Minted = true
	nf.Timestamp = l.nowMs()
	return nil
}

// TransferOwnership reassigns a listing outside the sale flow. It carries no
// payment, creates no sale record, and leaves the minted/paidOut flags alone.
func (l *Ledger) TransferOwnership(caller string, id uint64, newOwner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	nf, err := l.active(id)
	if err != nil {
		return err
	}
	if nf.Owner != caller {
		return ErrUnauthorized
	}
	if newOwner == "" {
		return ErrInvalidRecipient
	}

	nf.Owner = newOwner
	nf.Timestamp = l.nowMs()
	return nil
}

// GetSingleNft resolves a listing by id, including soft-deleted ones.
func (l *Ledger) GetSingleNft(id uint64) (*models.Nft, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nf, ok := l.nfts[id]
	if !ok {
		return nil, ErrNftNotFound
	}
	return cloneNft(nf), nil
}

// GetAllNfts enumerates active listings newest-first.
func (l *Ledger) GetAllNfts() []*models.Nft {
	return l.selectNfts(func(nf *models.Nft) bool { return !nf.Deleted })
}

// GetMyNfts enumerates the caller's active listings newest-first.
func (l *Ledger) GetMyNfts(caller string) []*models.Nft {
	return l.selectNfts(func(nf *models.Nft) bool { return !nf.Deleted && nf.Owner == caller })
}

// GetSale returns the sales recorded against one listing, newest-first.
func (l *Ledger) GetSale(nftID uint64) ([]*models.Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.nfts[nftID]; !ok {
		return nil, ErrNftNotFound
	}
	return l.selectSalesLocked(func(s *models.Sale) bool { return s.NftID == nftID }), nil
}

// GetAllSales enumerates every sale newest-first.
func (l *Ledger) GetAllSales() []*models.Sale {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectSalesLocked(func(*models.Sale) bool { return true })
}

// GetMySales enumerates the caller's purchases newest-first.
func (l *Ledger) GetMySales(caller string) []*models.Sale {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selectSalesLocked(func(s *models.Sale) bool { return s.Owner == caller })
}

// Escrow returns the total payment currently held pending payout.
func (l *Ledger) Escrow() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := new(big.Int)
	for _, held := range l.escrow {
		total.Add(total, held)
	}
	return total
}

// Restore rebuilds ledger state from mirrored records, typically at boot.
// Escrow is reconstructed for listings sold but not yet paid out.
func (l *Ledger) Restore(nfts []*models.Nft, sales []*models.Sale) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nfts = make(map[uint64]*models.Nft, len(nfts))
	l.escrow = make(map[uint64]*big.Int)
	l.nextNftID = 0
	for _, nf := range nfts {
		c := cloneNft(nf)
		l.nfts[c.ID] = c
		if c.ID > l.nextNftID {
			l.nextNftID = c.ID
		}
		if c.Minted && !c.PaidOut && c.Seller != "" {
			l.escrow[c.ID] = new(big.Int).Set(c.Price.Big())
		}
	}

	l.sales = make([]*models.Sale, 0, len(sales))
	l.nextSaleID = 0
	for _, s := range sales {
		c := cloneSale(s)
		l.sales = append(l.sales, c)
		if c.ID > l.nextSaleID {
			l.nextSaleID = c.ID
		}
	}
}

// active resolves a listing that exists and is not soft-deleted.
func (l *Ledger) active(id uint64) (*models.Nft, error) {
	nf, ok := l.nfts[id]
	if !ok || nf.Deleted {
		return nil, ErrNftNotFound
	}
	return nf, nil
}

func (l *Ledger) selectNfts(keep func(*models.Nft) bool) []*models.Nft {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []*models.Nft{}
	for _, nf := range l.nfts {
		if keep(nf) {
			out = append(out, cloneNft(nf))
		}
	}
	sortNftsNewestFirst(out)
	return out
}

func (l *Ledger) selectSalesLocked(keep func(*models.Sale) bool) []*models.Sale {
	out := []*models.Sale{}
	for _, s := range l.sales {
		if keep(s) {
			out = append(out, cloneSale(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func sortNftsNewestFirst(nfts []*models.Nft) {
	sort.Slice(nfts, func(i, j int) bool {
		if nfts[i].Timestamp != nfts[j].Timestamp {
			return nfts[i].Timestamp > nfts[j].Timestamp
		}
		return nfts[i].ID > nfts[j].ID
	})
}

func cloneNft(nf *models.Nft) *models.Nft {
	c := *nf
	c.Price = nf.Price.Clone()
	return &c
}

func cloneSale(s *models.Sale) *models.Sale {
	c := *s
	c.Price = s.Price.Clone()
	return &c
}
