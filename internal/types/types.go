// =================================
// File: internal/types/types.go
// =================================
package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Address identifies an account, token, curve or pool inside the launchpad.
// Addresses are opaque handles; ordering between them carries no meaning.
type Address string

// ZeroAddress is returned by lookups that find nothing.
const ZeroAddress Address = ""

// NewAddress mints a fresh unique address.
func NewAddress() Address {
	id := uuid.New()
	return Address("0x" + hex.EncodeToString(id[:]))
}

// IsZero reports whether the address is the zero/empty address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}

// ParseAddress validates an address supplied by an external caller.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ZeroAddress, fmt.Errorf("empty address")
	}
	return Address(s), nil
}

// ParseAmount parses a non-negative decimal integer amount in base units.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return v, nil
}

// FormatAmount renders an amount for JSON/log surfaces.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
