package ledger

import (
	"errors"
	"math/big"
)

// BpsBase is the denominator for basis-point math: 10000 bps = 100%.
var BpsBase = big.NewInt(10000)

// DefaultFeeBps is the fee the marketplace deploys with (5%).
const DefaultFeeBps = 500

// ErrFeeOutOfRange rejects fee schedules outside [0, 10000] bps.
var ErrFeeOutOfRange = errors.New("ledger: fee must be between 0 and 10000 basis points")

// FeeSchedule holds the platform fee fixed at deployment. Amounts are
// big.Int because wei-scale prices leave no headroom in int64.
type FeeSchedule struct {
	bps *big.Int
}

// NewFeeSchedule validates and fixes the platform fee in basis points.
func NewFeeSchedule(bps int64) (*FeeSchedule, error) {
	if bps < 0 || bps > 10000 {
		return nil, ErrFeeOutOfRange
	}
	return &FeeSchedule{bps: big.NewInt(bps)}, nil
}

// Bps returns the fee in basis points.
func (f *FeeSchedule) Bps() int64 {
	return f.bps.Int64()
}

// Split divides a sale price into the platform's service fee and the seller's
// proceeds. Floor division; the remainder stays with the seller, so
// serviceFee + sellerProceeds == price holds exactly.
func (f *FeeSchedule) Split(price *big.Int) (serviceFee, sellerProceeds *big.Int) {
	serviceFee = new(big.Int).Mul(price, f.bps)
	serviceFee.Div(serviceFee, BpsBase)
	sellerProceeds = new(big.Int).Sub(price, serviceFee)
	return serviceFee, sellerProceeds
}
