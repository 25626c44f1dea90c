package client

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/nftmart/nftmart-api/internal/models"
)

// etherDecimals is the number of wei digits in one ether.
const etherDecimals = 18

// ParseEther converts a decimal ether amount ("1.5") into wei. Amounts
// with more than 18 fractional digits are rejected rather than rounded.
func ParseEther(amount string) (*models.Wei, error) {
	s := strings.TrimSpace(amount)
	if s == "" || s == "." {
		return nil, fmt.Errorf("invalid ether amount: %q", amount)
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("ether amount cannot be negative: %q", amount)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > etherDecimals {
		return nil, fmt.Errorf("ether amount has more than %d decimals: %q", etherDecimals, amount)
	}
	frac += strings.Repeat("0", etherDecimals-len(frac))

	wei, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid ether amount: %q", amount)
	}
	return models.WeiFromBig(wei), nil
}

// FormatEther renders a wei amount as a decimal ether string with
// trailing zeros trimmed.
func FormatEther(w *models.Wei) string {
	if w == nil {
		return "0"
	}
	s := w.Big().String()
	if len(s) <= etherDecimals {
		s = strings.Repeat("0", etherDecimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-etherDecimals], s[len(s)-etherDecimals:]
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// EtherToWei converts a float ether amount via its shortest decimal
// representation, so 1.5 maps to exactly 1500000000000000000 wei.
func EtherToWei(amount float64) (*models.Wei, error) {
	return ParseEther(strconv.FormatFloat(amount, 'f', -1, 64))
}

// WeiToEther converts wei to a float ether amount. Precision past
// float64 is lost, which is fine for display.
func WeiToEther(w *models.Wei) float64 {
	f, _ := strconv.ParseFloat(FormatEther(w), 64)
	return f
}
