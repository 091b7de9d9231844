package midtrans

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func sign(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func TestSignatureVerifier_Verify(t *testing.T) {
	const serverKey = "SB-Mid-server-testkey"
	v := NewSignatureVerifier(Config{ServerKey: serverKey})

	orderID := "LD-20260901-A1B2C3"
	statusCode := "200"
	grossAmount := "150000.00"
	valid := sign(orderID, statusCode, grossAmount, serverKey)

	var tests = []struct {
		name        string
		orderID     string
		statusCode  string
		grossAmount string
		signature   string
		expected    bool
	}{
		{
			name:    "valid signature",
			orderID: orderID, statusCode: statusCode, grossAmount: grossAmount,
			signature: valid,
			expected:  true,
		},
		{
			name:    "tampered order id",
			orderID: "LD-20260901-A1B2C4", statusCode: statusCode, grossAmount: grossAmount,
			signature: valid,
			expected:  false,
		},
		{
			name:    "tampered status code",
			orderID: orderID, statusCode: "201", grossAmount: grossAmount,
			signature: valid,
			expected:  false,
		},
		{
			name:    "tampered gross amount",
			orderID: orderID, statusCode: statusCode, grossAmount: "150001.00",
			signature: valid,
			expected:  false,
		},
		{
			name:    "tampered signature",
			orderID: orderID, statusCode: statusCode, grossAmount: grossAmount,
			signature: valid[:len(valid)-1] + "0",
			expected:  false,
		},
		{
			name:    "empty signature",
			orderID: orderID, statusCode: statusCode, grossAmount: grossAmount,
			signature: "",
			expected:  false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := v.Verify(tt.orderID, tt.statusCode, tt.grossAmount, tt.signature)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestSignatureVerifier_KeyMatters(t *testing.T) {
	sig := sign("o1", "200", "1000.00", "key-a")

	require.True(t, NewSignatureVerifier(Config{ServerKey: "key-a"}).Verify("o1", "200", "1000.00", sig))
	require.False(t, NewSignatureVerifier(Config{ServerKey: "key-b"}).Verify("o1", "200", "1000.00", sig))
}
