package store

import (
	"github.com/nftmart/nftmart-api/internal/models"
)

// Mirror bundles the listing and sale repositories behind the service
// layer's persistence interface.
type Mirror struct {
	nfts  *NftRepository
	sales *SaleRepository
}

// NewMirror creates a new Mirror
func NewMirror(nfts *NftRepository, sales *SaleRepository) *Mirror {
	return &Mirror{nfts: nfts, sales: sales}
}

// SaveNft writes a listing's current state.
func (m *Mirror) SaveNft(nft *models.Nft) error {
	return m.nfts.Upsert(nft)
}

// SaveSale writes a sale record.
func (m *Mirror) SaveSale(sale *models.Sale) error {
	return m.sales.Upsert(sale)
}

// Load reads every mirrored record for ledger restore at boot.
func (m *Mirror) Load() ([]*models.Nft, []*models.Sale, error) {
	nfts, err := m.nfts.ListAll()
	if err != nil {
		return nil, nil, err
	}
	sales, err := m.sales.ListAll()
	if err != nil {
		return nil, nil, err
	}
	return nfts, sales, nil
}
