// =================================
// File: internal/types/types_test.go
// =================================
package types

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddressIsUnique(t *testing.T) {
	seen := make(map[Address]bool)
	for i := 0; i < 100; i++ {
		addr := NewAddress()
		assert.False(t, addr.IsZero())
		assert.True(t, strings.HasPrefix(addr.String(), "0x"))
		assert.False(t, seen[addr], "duplicate address %s", addr)
		seen[addr] = true
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("  0xabc  ")
	require.NoError(t, err)
	assert.Equal(t, Address("0xabc"), addr)

	_, err = ParseAddress("")
	assert.Error(t, err)
	_, err = ParseAddress("   ")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "12345", "12345", false},
		{"zero", "0", "0", false},
		{"trimmed", " 42 ", "42", false},
		{"very large", "1000000000000000000000000000", "1000000000000000000000000000", false},
		{"empty", "", "", true},
		{"negative", "-5", "", true},
		{"not a number", "12x3", "", true},
		{"hex", "0xff", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(nil))
	assert.Equal(t, "12345", FormatAmount(big.NewInt(12345)))
}
