package ledger

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/nftmart/nftmart-api/internal/models"
)

const (
	platform = "0x00000000000000000000000000000000000000f1"
	seller   = "0x00000000000000000000000000000000000000a1"
	buyer1   = "0x00000000000000000000000000000000000000b1"
	buyer2   = "0x00000000000000000000000000000000000000b2"

	nftName        = "My NFT"
	nftDescription = "My first nft marketplace dApp"
	nftImageURL    = "https://linktoimage.png"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func ether(eth string) *big.Int {
	// eth is a decimal with up to 3 fractional digits, enough for tests.
	r, ok := new(big.Rat).SetString(eth)
	if !ok {
		panic("bad ether amount " + eth)
	}
	wei := new(big.Rat).Mul(r, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)))
	return wei.Num()
}

func testLedger(t *testing.T) (*Ledger, *MemoryBank, *fakeClock) {
	t.Helper()
	fees, err := NewFeeSchedule(500)
	if err != nil {
		t.Fatalf("NewFeeSchedule: %v", err)
	}
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	bank := NewMemoryBank()
	l, err := New(fees, platform, bank, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l, bank, clock
}

func createListing(t *testing.T, l *Ledger, clock *fakeClock) uint64 {
	t.Helper()
	endTime := clock.Now().Add(10 * time.Minute).UnixMilli()
	id, err := l.CreateNft(seller, nftName, nftDescription, nftImageURL, endTime, ether("1.5"))
	if err != nil {
		t.Fatalf("CreateNft: %v", err)
	}
	return id
}

func balance(t *testing.T, bank *MemoryBank, addr string) *big.Int {
	t.Helper()
	b, err := bank.BalanceOf(addr)
	if err != nil {
		t.Fatalf("BalanceOf(%s): %v", addr, err)
	}
	return b
}

func TestCreateNft(t *testing.T) {
	l, _, clock := testLedger(t)
	endTime := clock.Now().Add(10 * time.Minute).UnixMilli()

	id, err := l.CreateNft(seller, nftName, nftDescription, nftImageURL, endTime, ether("1.5"))
	if err != nil {
		t.Fatalf("CreateNft: %v", err)
	}
	if id != 1 {
		t.Fatalf("first listing id = %d, want 1", id)
	}

	all := l.GetAllNfts()
	if len(all) != 1 {
		t.Fatalf("GetAllNfts returned %d listings, want 1", len(all))
	}

	mine := l.GetMyNfts(seller)
	if len(mine) != 1 {
		t.Fatalf("GetMyNfts returned %d listings, want 1", len(mine))
	}

	nf, err := l.GetSingleNft(id)
	if err != nil {
		t.Fatalf("GetSingleNft: %v", err)
	}
	if nf.Name != nftName || nf.Description != nftDescription || nf.ImageURL != nftImageURL {
		t.Errorf("metadata mismatch: %+v", nf)
	}
	if nf.Owner != seller {
		t.Errorf("owner = %s, want %s", nf.Owner, seller)
	}
	if nf.Price.Big().Cmp(ether("1.5")) != 0 {
		t.Errorf("price = %s, want %s", nf.Price, ether("1.5"))
	}
	if nf.EndTime != endTime {
		t.Errorf("endTime = %d, want %d", nf.EndTime, endTime)
	}
	if nf.Deleted || nf.Minted || nf.PaidOut || nf.Refunded {
		t.Errorf("fresh listing has flags set: %+v", nf)
	}
}

func TestCreateNftValidation(t *testing.T) {
	l, _, clock := testLedger(t)
	future := clock.Now().Add(time.Hour).UnixMilli()

	if _, err := l.CreateNft(seller, nftName, nftDescription, nftImageURL, future, big.NewInt(0)); err != ErrInvalidPrice {
		t.Errorf("zero price: got %v, want ErrInvalidPrice", err)
	}
	if _, err := l.CreateNft(seller, nftName, nftDescription, nftImageURL, future, big.NewInt(-1)); err != ErrInvalidPrice {
		t.Errorf("negative price: got %v, want ErrInvalidPrice", err)
	}
	past := clock.Now().Add(-time.Minute).UnixMilli()
	if _, err := l.CreateNft(seller, nftName, nftDescription, nftImageURL, past, ether("1")); err != ErrEndTimeInPast {
		t.Errorf("past endTime: got %v, want ErrEndTimeInPast", err)
	}
}

func TestUpdateNft(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	newEnd := clock.Now().Add(20 * time.Minute).UnixMilli()
	if err := l.UpdateNft(seller, id, "new name", "new description", "new image", newEnd, ether("2")); err != nil {
		t.Fatalf("UpdateNft: %v", err)
	}

	nf, _ := l.GetSingleNft(id)
	if nf.Name != "new name" || nf.Description != "new description" || nf.ImageURL != "new image" {
		t.Errorf("fields not updated: %+v", nf)
	}
	if nf.EndTime != newEnd {
		t.Errorf("endTime = %d, want %d", nf.EndTime, newEnd)
	}
	if nf.Price.Big().Cmp(ether("2")) != 0 {
		t.Errorf("price = %s, want %s", nf.Price, ether("2"))
	}
}

func TestUpdateNftFailures(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)
	end := clock.Now().Add(time.Hour).UnixMilli()

	if err := l.UpdateNft(seller, 99, "n", "d", "i", end, ether("1")); err != ErrNftNotFound {
		t.Errorf("unknown id: got %v, want ErrNftNotFound", err)
	}
	if err := l.UpdateNft(buyer1, id, "n", "d", "i", end, ether("1")); err != ErrUnauthorized {
		t.Errorf("non-owner: got %v, want ErrUnauthorized", err)
	}
	if err := l.UpdateNft(seller, id, "n", "d", "i", end, big.NewInt(0)); err != ErrInvalidPrice {
		t.Errorf("zero price: got %v, want ErrInvalidPrice", err)
	}

	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}
	// After a sale no one may update, including the buyer who now owns it.
	if err := l.UpdateNft(buyer1, id, "n", "d", "i", end, ether("1")); err != ErrAlreadyMinted {
		t.Errorf("update after mint: got %v, want ErrAlreadyMinted", err)
	}
}

func TestDeleteNft(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.DeleteNft(buyer1, id); err != ErrUnauthorized {
		t.Errorf("non-owner delete: got %v, want ErrUnauthorized", err)
	}
	if err := l.DeleteNft(seller, id); err != nil {
		t.Fatalf("DeleteNft: %v", err)
	}

	if all := l.GetAllNfts(); len(all) != 0 {
		t.Errorf("GetAllNfts returned %d listings after delete, want 0", len(all))
	}
	if mine := l.GetMyNfts(seller); len(mine) != 0 {
		t.Errorf("GetMyNfts returned %d listings after delete, want 0", len(mine))
	}

	nf, err := l.GetSingleNft(id)
	if err != nil {
		t.Fatalf("GetSingleNft after delete: %v", err)
	}
	if !nf.Deleted {
		t.Errorf("deleted flag not set")
	}

	// Soft-deleted listings behave as missing for further mutations.
	if err := l.DeleteNft(seller, id); err != ErrNftNotFound {
		t.Errorf("double delete: got %v, want ErrNftNotFound", err)
	}
}

func TestDeleteSoldNft(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)
	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}
	if err := l.DeleteNft(buyer1, id); err != ErrAlreadyMinted {
		t.Errorf("delete after sale: got %v, want ErrAlreadyMinted", err)
	}
}

func TestBuyNft(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}

	nf, _ := l.GetSingleNft(id)
	if nf.Owner != buyer1 {
		t.Errorf("owner = %s, want %s", nf.Owner, buyer1)
	}
	if !nf.Minted {
		t.Errorf("minted flag not set")
	}
	if nf.Price.Big().Cmp(ether("1.5")) != 0 {
		t.Errorf("price changed on sale: %s", nf.Price)
	}

	if mine := l.GetMyNfts(buyer1); len(mine) != 1 || mine[0].ID != id {
		t.Errorf("buyer's GetMyNfts = %+v, want the bought listing", mine)
	}

	sales, err := l.GetSale(id)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("GetSale returned %d records, want 1", len(sales))
	}
	s := sales[0]
	if s.NftID != id || s.Owner != buyer1 {
		t.Errorf("sale record = %+v", s)
	}
	if s.Price.Big().Cmp(ether("1.5")) != 0 {
		t.Errorf("sale price = %s, want listing price", s.Price)
	}
	if s.EndTime != nf.EndTime {
		t.Errorf("sale endTime = %d, want %d", s.EndTime, nf.EndTime)
	}
	if !s.Minted || s.Refunded {
		t.Errorf("sale flags = %+v", s)
	}

	if held := l.Escrow(); held.Cmp(ether("1.5")) != 0 {
		t.Errorf("escrow = %s, want listing price", held)
	}
}

func TestBuyNftInsufficientFunds(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.BuyNft(buyer1, id, ether("1")); err != ErrInsufficientFunds {
		t.Fatalf("underpayment: got %v, want ErrInsufficientFunds", err)
	}

	nf, _ := l.GetSingleNft(id)
	if nf.Owner != seller || nf.Minted {
		t.Errorf("failed purchase mutated state: %+v", nf)
	}
}

func TestBuyNftTwice(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if err := l.BuyNft(buyer2, id, ether("1.5")); err != ErrAlreadyMinted {
		t.Fatalf("second purchase: got %v, want ErrAlreadyMinted", err)
	}

	nf, _ := l.GetSingleNft(id)
	if nf.Owner != buyer1 {
		t.Errorf("owner = %s, first buyer must keep the listing", nf.Owner)
	}
}

func TestBuyOwnNft(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.BuyNft(seller, id, ether("1.5")); err != ErrSelfPurchase {
		t.Errorf("self purchase: got %v, want ErrSelfPurchase", err)
	}
}

func TestBuyExpiredNft(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	clock.Advance(11 * time.Minute)
	if err := l.BuyNft(buyer1, id, ether("1.5")); err != ErrListingExpired {
		t.Errorf("expired purchase: got %v, want ErrListingExpired", err)
	}
}

func TestBuyDeletedNft(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)
	if err := l.DeleteNft(seller, id); err != nil {
		t.Fatalf("DeleteNft: %v", err)
	}
	if err := l.BuyNft(buyer1, id, ether("1.5")); err != ErrNftNotFound {
		t.Errorf("buying deleted listing: got %v, want ErrNftNotFound", err)
	}
}

func TestBuyNftOverpaymentRefunded(t *testing.T) {
	l, bank, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.BuyNft(buyer1, id, ether("2")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}

	if got := balance(t, bank, buyer1); got.Cmp(ether("0.5")) != 0 {
		t.Errorf("buyer refund = %s, want 0.5 ether", got)
	}
	if held := l.Escrow(); held.Cmp(ether("1.5")) != 0 {
		t.Errorf("escrow = %s, want exactly the price", held)
	}
}

func TestPayout(t *testing.T) {
	l, bank, clock := testLedger(t)
	id := createListing(t, l, clock)
	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}

	if err := l.Payout(seller, id); err != nil {
		t.Fatalf("Payout: %v", err)
	}

	if got := balance(t, bank, seller); got.Cmp(ether("1.425")) != 0 {
		t.Errorf("seller proceeds = %s, want 1.425 ether", got)
	}
	if got := balance(t, bank, platform); got.Cmp(ether("0.075")) != 0 {
		t.Errorf("platform fee = %s, want 0.075 ether", got)
	}

	nf, _ := l.GetSingleNft(id)
	if !nf.PaidOut {
		t.Errorf("paidOut flag not set")
	}
	if held := l.Escrow(); held.Sign() != 0 {
		t.Errorf("escrow = %s after payout, want 0", held)
	}
}

func TestPayoutTwice(t *testing.T) {
	l, bank, clock := testLedger(t)
	id := createListing(t, l, clock)
	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}
	if err := l.Payout(seller, id); err != nil {
		t.Fatalf("first payout: %v", err)
	}

	sellerBefore := balance(t, bank, seller)
	platformBefore := balance(t, bank, platform)

	if err := l.Payout(seller, id); err != ErrAlreadyPaidOut {
		t.Fatalf("second payout: got %v, want ErrAlreadyPaidOut", err)
	}

	if got := balance(t, bank, seller); got.Cmp(sellerBefore) != 0 {
		t.Errorf("seller balance changed on failed payout")
	}
	if got := balance(t, bank, platform); got.Cmp(platformBefore) != 0 {
		t.Errorf("platform balance changed on failed payout")
	}
}

func TestPayoutUnauthorized(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)
	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}

	// Neither the buyer (current owner) nor a stranger is the seller.
	if err := l.Payout(buyer1, id); err != ErrUnauthorized {
		t.Errorf("buyer payout: got %v, want ErrUnauthorized", err)
	}
	if err := l.Payout(buyer2, id); err != ErrUnauthorized {
		t.Errorf("stranger payout: got %v, want ErrUnauthorized", err)
	}
}

func TestPayoutNotSold(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.Payout(seller, id); err != ErrNotMinted {
		t.Errorf("payout before sale: got %v, want ErrNotMinted", err)
	}
}

func TestMintNft(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.MintNft(buyer1, id); err != ErrUnauthorized {
		t.Errorf("non-owner mint: got %v, want ErrUnauthorized", err)
	}
	if err := l.MintNft(seller, id); err != nil {
		t.Fatalf("MintNft: %v", err)
	}
	nf, _ := l.GetSingleNft(id)
	if !nf.Minted {
		t.Errorf("minted flag not set")
	}
	if err := l.MintNft(seller, id); err != ErrAlreadyMinted {
		t.Errorf("double mint: got %v, want ErrAlreadyMinted", err)
	}
}

func TestTransferOwnership(t *testing.T) {
	l, _, clock := testLedger(t)
	id := createListing(t, l, clock)

	if err := l.TransferOwnership(buyer1, id, buyer2); err != ErrUnauthorized {
		t.Errorf("non-owner transfer: got %v, want ErrUnauthorized", err)
	}
	if err := l.TransferOwnership(seller, id, ""); err != ErrInvalidRecipient {
		t.Errorf("empty recipient: got %v, want ErrInvalidRecipient", err)
	}
	if err := l.TransferOwnership(seller, id, buyer2); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}

	nf, _ := l.GetSingleNft(id)
	if nf.Owner != buyer2 {
		t.Errorf("owner = %s, want %s", nf.Owner, buyer2)
	}
	if nf.Minted || nf.PaidOut {
		t.Errorf("transfer touched sale flags: %+v", nf)
	}
	if sales := l.GetAllSales(); len(sales) != 0 {
		t.Errorf("transfer created %d sale records, want 0", len(sales))
	}
}

func TestEnumerationNewestFirst(t *testing.T) {
	l, _, clock := testLedger(t)

	var ids []uint64
	for i := 0; i < 3; i++ {
		ids = append(ids, createListing(t, l, clock))
		clock.Advance(time.Second)
	}

	all := l.GetAllNfts()
	if len(all) != 3 {
		t.Fatalf("GetAllNfts returned %d listings, want 3", len(all))
	}
	for i, nf := range all {
		want := ids[len(ids)-1-i]
		if nf.ID != want {
			t.Errorf("position %d: id = %d, want %d", i, nf.ID, want)
		}
	}
}

func TestSalesEnumeration(t *testing.T) {
	l, _, clock := testLedger(t)

	first := createListing(t, l, clock)
	second := createListing(t, l, clock)
	if err := l.BuyNft(buyer1, first, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}
	clock.Advance(time.Second)
	if err := l.BuyNft(buyer2, second, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}

	all := l.GetAllSales()
	if len(all) != 2 {
		t.Fatalf("GetAllSales returned %d records, want 2", len(all))
	}
	if all[0].NftID != second || all[1].NftID != first {
		t.Errorf("sales not newest-first: %+v", all)
	}

	mine := l.GetMySales(buyer1)
	if len(mine) != 1 || mine[0].NftID != first {
		t.Errorf("GetMySales(buyer1) = %+v", mine)
	}

	if _, err := l.GetSale(99); err != ErrNftNotFound {
		t.Errorf("GetSale(unknown): got %v, want ErrNftNotFound", err)
	}
}

func TestEndToEndSaleAndPayout(t *testing.T) {
	l, bank, clock := testLedger(t)

	endTime := clock.Now().Add(7 * 24 * time.Hour).UnixMilli()
	id, err := l.CreateNft(seller, nftName, nftDescription, nftImageURL, endTime, ether("1.5"))
	if err != nil {
		t.Fatalf("CreateNft: %v", err)
	}

	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}
	nf, _ := l.GetSingleNft(id)
	if nf.Owner != buyer1 || !nf.Minted {
		t.Fatalf("post-purchase state: %+v", nf)
	}

	if err := l.Payout(seller, id); err != nil {
		t.Fatalf("Payout: %v", err)
	}
	if got := balance(t, bank, seller); got.Cmp(ether("1.425")) != 0 {
		t.Errorf("seller balance = %s, want 1.425 ether", got)
	}
	if got := balance(t, bank, platform); got.Cmp(ether("0.075")) != 0 {
		t.Errorf("platform balance = %s, want 0.075 ether", got)
	}
	nf, _ = l.GetSingleNft(id)
	if !nf.PaidOut {
		t.Errorf("paidOut flag not set")
	}
}

func TestRestore(t *testing.T) {
	l, bank, clock := testLedger(t)
	sold := createListing(t, l, clock)
	open := createListing(t, l, clock)
	if err := l.BuyNft(buyer1, sold, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}

	var nfts []*models.Nft
	for _, id := range []uint64{sold, open} {
		nf, err := l.GetSingleNft(id)
		if err != nil {
			t.Fatalf("GetSingleNft(%d): %v", id, err)
		}
		nfts = append(nfts, nf)
	}
	sales := l.GetAllSales()

	fees, _ := NewFeeSchedule(500)
	restored, err := New(fees, platform, bank, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	restored.Restore(nfts, sales)

	// Escrow for the sold listing survives the restart; payout still works.
	if held := restored.Escrow(); held.Cmp(ether("1.5")) != 0 {
		t.Fatalf("restored escrow = %s, want 1.5 ether", held)
	}
	if err := restored.Payout(seller, sold); err != nil {
		t.Fatalf("payout after restore: %v", err)
	}

	// Id sequence continues past the restored maximum.
	next, err := restored.CreateNft(seller, nftName, nftDescription, nftImageURL,
		clock.Now().Add(time.Hour).UnixMilli(), ether("1"))
	if err != nil {
		t.Fatalf("CreateNft after restore: %v", err)
	}
	if next != open+1 {
		t.Errorf("next id = %d, want %d", next, open+1)
	}
}

// flakyBank fails settlement on demand, standing in for a bank outage.
type flakyBank struct {
	inner *MemoryBank
	fail  bool
}

func (b *flakyBank) Settle(entries ...Entry) error {
	if b.fail {
		return errors.New("bank unavailable")
	}
	return b.inner.Settle(entries...)
}

func TestNewRequiresPlatformAddress(t *testing.T) {
	fees, err := NewFeeSchedule(500)
	if err != nil {
		t.Fatalf("NewFeeSchedule: %v", err)
	}
	if _, err := New(fees, "", NewMemoryBank()); err == nil {
		t.Fatal("New accepted an empty platform address")
	}
}

func TestMemoryBankSettleAtomic(t *testing.T) {
	bank := NewMemoryBank()

	err := bank.Settle(
		Entry{To: seller, Amount: ether("1.425")},
		Entry{To: "", Amount: ether("0.075")},
	)
	if err == nil {
		t.Fatal("Settle accepted an empty recipient")
	}
	if got := balance(t, bank, seller); got.Sign() != 0 {
		t.Errorf("seller credited %s by a failed settle, want 0", got)
	}
}

func TestPayoutRetryAfterBankFailure(t *testing.T) {
	fees, err := NewFeeSchedule(500)
	if err != nil {
		t.Fatalf("NewFeeSchedule: %v", err)
	}
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	bank := &flakyBank{inner: NewMemoryBank()}
	l, err := New(fees, platform, bank, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id := createListing(t, l, clock)
	if err := l.BuyNft(buyer1, id, ether("1.5")); err != nil {
		t.Fatalf("BuyNft: %v", err)
	}

	// Two failed payouts must not move any money or consume the escrow.
	bank.fail = true
	for i := 0; i < 2; i++ {
		if err := l.Payout(seller, id); err == nil {
			t.Fatalf("payout %d succeeded with the bank down", i+1)
		}
		if got := balance(t, bank.inner, seller); got.Sign() != 0 {
			t.Fatalf("seller credited %s by failed payout %d, want 0", got, i+1)
		}
	}
	nf, _ := l.GetSingleNft(id)
	if nf.PaidOut {
		t.Fatal("paidOut set by a failed payout")
	}
	if held := l.Escrow(); held.Cmp(ether("1.5")) != 0 {
		t.Fatalf("escrow = %s after failed payouts, want 1.5 ether", held)
	}

	// The retry pays out exactly once.
	bank.fail = false
	if err := l.Payout(seller, id); err != nil {
		t.Fatalf("Payout retry: %v", err)
	}
	if got := balance(t, bank.inner, seller); got.Cmp(ether("1.425")) != 0 {
		t.Errorf("seller proceeds = %s, want 1.425 ether", got)
	}
	if got := balance(t, bank.inner, platform); got.Cmp(ether("0.075")) != 0 {
		t.Errorf("platform fee = %s, want 0.075 ether", got)
	}
	if held := l.Escrow(); held.Sign() != 0 {
		t.Errorf("escrow = %s after payout, want 0", held)
	}
}
