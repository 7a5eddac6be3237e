package payment

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature_AcceptsCorrectDigest(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	assert.True(t, VerifySignature("secret", "order_1", "pay_1", sig))
}

func TestVerifySignature_RejectsEverySingleBitFlip(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")
	raw, err := hex.DecodeString(sig)
	require.NoError(t, err)

	for i := 0; i < len(raw)*8; i++ {
		flipped := make([]byte, len(raw))
		copy(flipped, raw)
		flipped[i/8] ^= 1 << (i % 8)
		assert.False(t, VerifySignature("secret", "order_1", "pay_1", hex.EncodeToString(flipped)), "bit %d", i)
	}
}

func TestVerifySignature_Rejects(t *testing.T) {
	sig := Sign("secret", "order_1", "pay_1")

	tests := []struct {
		name                       string
		secret, order, payment, in string
	}{
		{"wrong secret", "other", "order_1", "pay_1", sig},
		{"swapped ids", "secret", "pay_1", "order_1", sig},
		{"other order", "secret", "order_2", "pay_1", sig},
		{"empty signature", "secret", "order_1", "pay_1", ""},
		{"empty secret", "", "order_1", "pay_1", Sign("", "order_1", "pay_1")},
		{"double encoded", "secret", "order_1", "pay_1", hex.EncodeToString([]byte(sig))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifySignature(tt.secret, tt.order, tt.payment, tt.in))
		})
	}
}
