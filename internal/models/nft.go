package models

// Nft represents one marketplace listing. JSON field names follow the wire
// shape the dApp front-end consumes, so they stay camelCase.
type Nft struct {
	ID          uint64 `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	ImageURL    string `json:"imageUrl" db:"image_url"`
	Owner       string `json:"owner" db:"owner"`
	Price       *Wei   `json:"price" db:"price"`
	Timestamp   int64  `json:"timestamp" db:"timestamp"` // ms since epoch, last mutation
	EndTime     int64  `json:"endTime" db:"end_time"`    // ms since epoch, listing expiry
	Deleted     bool   `json:"deleted" db:"deleted"`
	Minted      bool   `json:"minted" db:"minted"`
	PaidOut     bool   `json:"paidOut" db:"paid_out"`
	Refunded    bool   `json:"refunded" db:"refunded"`

	// Seller is the owner at sale time, the only principal allowed to call
	// payout. Not part of the wire shape.
	Seller string `json:"-" db:"seller"`
}

// Sale is an immutable record of one completed purchase against a listing.
type Sale struct {
	ID        uint64 `json:"id" db:"id"`
	NftID     uint64 `json:"nftId" db:"nft_id"`
	Owner     string `json:"owner" db:"owner"` // buyer address at time of sale
	Price     *Wei   `json:"price" db:"price"`
	Timestamp int64  `json:"timestamp" db:"timestamp"`
	EndTime   int64  `json:"endTime" db:"end_time"`
	Minted    bool   `json:"minted" db:"minted"`
	Refunded  bool   `json:"refunded" db:"refunded"`
}

// NftParams is the payload submitted when creating or updating a listing.
type NftParams struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	EndTime     int64  `json:"endTime"` // ms since epoch
	Price       *Wei   `json:"price"`
}

// BuyRequest carries the payment attached to a purchase.
type BuyRequest struct {
	Value *Wei `json:"value"`
}

// TransferRequest reassigns a listing outside the sale flow.
type TransferRequest struct {
	NewOwner string `json:"newOwner"`
}

// Balance is a withdrawable amount credited by the ledger's payouts.
type Balance struct {
	Address string `json:"address" db:"address"`
	Amount  *Wei   `json:"amount" db:"amount"`
}
