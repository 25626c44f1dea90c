package ledger

import "errors"

// Revert reasons. The strings are observable contract behavior that existing
// callers match on, so they are kept verbatim even where they break Go error
// string conventions.
var (
	ErrInvalidPrice      = errors.New("Price should be greater than zero")
	ErrEndTimeInPast     = errors.New("End time should be in the future")
	ErrNftNotFound       = errors.New("Nft does not exist")
	ErrUnauthorized      = errors.New("Unauthorized entity")
	ErrAlreadyMinted     = errors.New("Nft already minted")
	ErrNotMinted         = errors.New("Nft has not been sold")
	ErrAlreadyPaidOut    = errors.New("Nft already paid out")
	ErrInsufficientFunds = errors.New("Insufficient funds")
	ErrListingExpired    = errors.New("Nft listing has expired")
	ErrSelfPurchase      = errors.New("You cannot buy your own nft")
	ErrInvalidRecipient  = errors.New("Invalid recipient address")
)
