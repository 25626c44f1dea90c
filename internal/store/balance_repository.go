package store

import (
	"database/sql"
	"fmt"
	"math/big"

	"github.com/jmoiron/sqlx"
	"github.com/nftmart/nftmart-api/internal/ledger"
	"github.com/nftmart/nftmart-api/internal/models"
)

// BalanceRepository persists the withdrawable balances the ledger credits on
// payouts and refunds. It is the durable Bank implementation: a multi-entry
// settle runs inside one transaction so payouts stay all-or-nothing.
type BalanceRepository struct {
	db *Database
}

// NewBalanceRepository creates a new BalanceRepository
func NewBalanceRepository(db *Database) *BalanceRepository {
	return &BalanceRepository{
		db: db,
	}
}

// Settle implements ledger.Bank.
func (r *BalanceRepository) Settle(entries ...ledger.Entry) error {
	for _, e := range entries {
		if e.To == "" {
			return fmt.Errorf("bank: empty recipient address")
		}
		if e.Amount == nil || e.Amount.Sign() < 0 {
			return fmt.Errorf("bank: invalid amount for %s", e.To)
		}
	}

	return r.db.Transaction(func(tx *sqlx.Tx) error {
		for _, e := range entries {
			query := `INSERT INTO balances (address, amount) VALUES ($1, $2)
					  ON CONFLICT (address) DO UPDATE SET
					  amount = balances.amount + EXCLUDED.amount`
			if _, err := tx.Exec(query, e.To, models.WeiFromBig(e.Amount)); err != nil {
				return err
			}
		}
		return nil
	})
}

// BalanceOf returns the credited balance for an address (zero when unknown).
func (r *BalanceRepository) BalanceOf(addr string) (*big.Int, error) {
	var amount models.Wei
	query := `SELECT amount FROM balances WHERE address = $1`

	err := r.db.GetDB().Get(&amount, query, addr)
	if err != nil {
		if err == sql.ErrNoRows {
			return new(big.Int), nil
		}
		return nil, err
	}

	return new(big.Int).Set(amount.Big()), nil
}
