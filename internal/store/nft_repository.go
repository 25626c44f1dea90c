package store

import (
	"github.com/nftmart/nftmart-api/internal/models"
)

// NftRepository mirrors ledger listings into Postgres. The ledger is the
// authority; rows here exist for durability and restarts.
type NftRepository struct {
	db *Database
}

// NewNftRepository creates a new NftRepository
func NewNftRepository(db *Database) *NftRepository {
	return &NftRepository{
		db: db,
	}
}

// Upsert writes the listing's current state.
func (r *NftRepository) Upsert(nft *models.Nft) error {
	query := `INSERT INTO nfts (id, name, description, image_url, owner, seller, price,
			  timestamp, end_time, deleted, minted, paid_out, refunded)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  ON CONFLICT (id) DO UPDATE SET
			  name = EXCLUDED.name, description = EXCLUDED.description,
			  image_url = EXCLUDED.image_url, owner = EXCLUDED.owner,
			  seller = EXCLUDED.seller, price = EXCLUDED.price,
			  timestamp = EXCLUDED.timestamp, end_time = EXCLUDED.end_time,
			  deleted = EXCLUDED.deleted, minted = EXCLUDED.minted,
			  paid_out = EXCLUDED.paid_out, refunded = EXCLUDED.refunded`

	_, err := r.db.GetDB().Exec(query,
		nft.ID, nft.Name, nft.Description, nft.ImageURL, nft.Owner, nft.Seller,
		nft.Price, nft.Timestamp, nft.EndTime,
		nft.Deleted, nft.Minted, nft.PaidOut, nft.Refunded)

	return err
}

// ListAll loads every listing, soft-deleted ones included, for ledger restore.
func (r *NftRepository) ListAll() ([]*models.Nft, error) {
	nfts := []*models.Nft{}
	query := `SELECT id, name, description, image_url, owner, seller, price,
			  timestamp, end_time, deleted, minted, paid_out, refunded
			  FROM nfts ORDER BY id ASC`

	if err := r.db.GetDB().Select(&nfts, query); err != nil {
		return nil, err
	}

	return nfts, nil
}
