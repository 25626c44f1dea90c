package store

import (
	"github.com/nftmart/nftmart-api/internal/models"
)

// SaleRepository mirrors the ledger's append-only sale records.
type SaleRepository struct {
	db *Database
}

// NewSaleRepository creates a new SaleRepository
func NewSaleRepository(db *Database) *SaleRepository {
	return &SaleRepository{
		db: db,
	}
}

// Upsert writes a sale record. Sales never mutate after creation, so the
// conflict branch only exists to make replays idempotent.
func (r *SaleRepository) Upsert(sale *models.Sale) error {
	query := `INSERT INTO sales (id, nft_id, owner, price, timestamp, end_time, minted, refunded)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (id) DO UPDATE SET
			  minted = EXCLUDED.minted, refunded = EXCLUDED.refunded`

	_, err := r.db.GetDB().Exec(query,
		sale.ID, sale.NftID, sale.Owner, sale.Price,
		sale.Timestamp, sale.EndTime, sale.Minted, sale.Refunded)

	return err
}

// ListAll loads every sale for ledger restore, oldest first.
func (r *SaleRepository) ListAll() ([]*models.Sale, error) {
	sales := []*models.Sale{}
	query := `SELECT id, nft_id, owner, price, timestamp, end_time, minted, refunded
			  FROM sales ORDER BY id ASC`

	if err := r.db.GetDB().Select(&sales, query); err != nil {
		return nil, err
	}

	return sales, nil
}
