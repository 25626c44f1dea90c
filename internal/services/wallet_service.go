package services

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// signPrefix is mixed into every challenge hash so a signature produced for
// the marketplace can never double as a signature over arbitrary data.
const signPrefix = "Nftmart Signed Message:\n"

// WalletService handles wallet signature operations
type WalletService struct{}

// NewWalletService creates a new WalletService
func NewWalletService() *WalletService {
	return &WalletService{}
}

// MessageHash returns the digest wallets sign for a challenge message.
func MessageHash(message string) []byte {
	return chainhash.HashB([]byte(signPrefix + message))
}

// AddressFromPubKey derives the marketplace address for a public key: the
// last 20 bytes of the hashed compressed key, 0x-prefixed hex.
func AddressFromPubKey(pub *btcec.PublicKey) string {
	h := chainhash.HashB(pub.SerializeCompressed())
	return "0x" + hex.EncodeToString(h[len(h)-20:])
}

// SignMessage produces the hex compact signature clients submit. Exposed for
// the client adapter and tests.
func SignMessage(priv *btcec.PrivateKey, message string) string {
	sig := ecdsa.SignCompact(priv, MessageHash(message), true)
	return hex.EncodeToString(sig)
}

// VerifySignature recovers the signer from a compact secp256k1 signature and
// checks that the derived address matches the claimed one.
func (s *WalletService) VerifySignature(address, message, signature string) (bool, error) {
	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature format: %w", err)
	}

	pub, _, err := ecdsa.RecoverCompact(sigBytes, MessageHash(message))
	if err != nil {
		return false, fmt.Errorf("failed to recover public key: %w", err)
	}

	return strings.EqualFold(AddressFromPubKey(pub), address), nil
}

// IsAddressValid checks the marketplace address format.
func (s *WalletService) IsAddressValid(address string) bool {
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return false
	}
	_, err := hex.DecodeString(address[2:])
	return err == nil
}
