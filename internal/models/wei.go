package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strings"
)

// Wei is a monetary amount in the ledger's smallest unit. It marshals to a
// decimal string on the wire (big-integer amounts do not survive JSON float
// encoding) and maps to NUMERIC in Postgres.
type Wei struct {
	big.Int
}

// NewWei creates a Wei from an int64 amount.
func NewWei(v int64) *Wei {
	w := &Wei{}
	w.SetInt64(v)
	return w
}

// WeiFromBig copies a big.Int into a Wei.
func WeiFromBig(v *big.Int) *Wei {
	w := &Wei{}
	if v != nil {
		w.Set(v)
	}
	return w
}

// ParseWei parses a base-10 string into a Wei.
func ParseWei(s string) (*Wei, error) {
	w := &Wei{}
	if _, ok := w.SetString(strings.TrimSpace(s), 10); !ok {
		return nil, fmt.Errorf("invalid wei amount: %q", s)
	}
	return w, nil
}

// Big returns the underlying big.Int.
func (w *Wei) Big() *big.Int {
	return &w.Int
}

// Clone returns an independent copy.
func (w *Wei) Clone() *Wei {
	if w == nil {
		return nil
	}
	return WeiFromBig(&w.Int)
}

// MarshalJSON encodes the amount as a decimal string.
func (w Wei) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.String() + `"`), nil
}

// UnmarshalJSON accepts both a decimal string and a bare JSON number.
func (w *Wei) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		w.SetInt64(0)
		return nil
	}
	if _, ok := w.SetString(s, 10); !ok {
		return fmt.Errorf("invalid wei amount: %q", s)
	}
	return nil
}

// Value implements driver.Valuer for NUMERIC columns.
func (w Wei) Value() (driver.Value, error) {
	return w.String(), nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (w *Wei) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		w.SetInt64(0)
		return nil
	case int64:
		w.SetInt64(v)
		return nil
	case []byte:
		return w.scanString(string(v))
	case string:
		return w.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Wei", src)
	}
}

func (w *Wei) scanString(s string) error {
	// NUMERIC may come back with a fractional part of zeros.
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if _, ok := w.SetString(s, 10); !ok {
		return fmt.Errorf("invalid numeric value: %q", s)
	}
	return nil
}
