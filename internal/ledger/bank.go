package ledger

import (
	"fmt"
	"math/big"
	"sync"
)

// Entry is one outbound transfer from the ledger's escrow.
type Entry struct {
	To     string
	Amount *big.Int
}

// Bank receives value leaving the ledger's escrow. A call with multiple
// entries must apply all of them or none; the ledger relies on that to keep
// payouts all-or-nothing.
type Bank interface {
	Settle(entries ...Entry) error
}

// MemoryBank is an in-process balance book. It backs tests and single-node
// deployments that do not need durable balances.
type MemoryBank struct {
	mu       sync.Mutex
	balances map[string]*big.Int
}

// NewMemoryBank creates an empty balance book.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[string]*big.Int)}
}

// Settle credits every entry's recipient. All entries are validated
// before any balance changes, so a rejected entry never leaves a
// partial settlement behind.
func (b *MemoryBank) Settle(entries ...Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range entries {
		if e.To == "" {
			return fmt.Errorf("bank: empty recipient address")
		}
		if e.Amount == nil || e.Amount.Sign() < 0 {
			return fmt.Errorf("bank: invalid amount for %s", e.To)
		}
	}

	for _, e := range entries {
		cur, ok := b.balances[e.To]
		if !ok {
			cur = new(big.Int)
			b.balances[e.To] = cur
		}
		cur.Add(cur, e.Amount)
	}
	return nil
}

// BalanceOf returns the credited balance for an address (zero when unknown).
func (b *MemoryBank) BalanceOf(addr string) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.balances[addr]; ok {
		return new(big.Int).Set(cur), nil
	}
	return new(big.Int), nil
}
