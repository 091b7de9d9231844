package midtrans

import (
	"testing"

	"github.com/laundrydesk/laundry-payments/internal/payment/domain"
	"github.com/stretchr/testify/require"
)

func TestMapTransactionStatus(t *testing.T) {
	var tests = []struct {
		transactionStatus string
		expected          domain.Status
	}{
		{"capture", domain.StatusVerified},
		{"settlement", domain.StatusVerified},
		{"cancel", domain.StatusRejected},
		{"expire", domain.StatusRejected},
		{"failure", domain.StatusRejected},
		{"pending", domain.StatusPending},
		{"authorize", domain.StatusPending},
		{"deny", domain.StatusPending},
		{"", domain.StatusPending},
		{"anything-unknown", domain.StatusPending},
	}

	for _, tt := range tests {
		tt := tt
		t.Run("status "+tt.transactionStatus, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, MapTransactionStatus(tt.transactionStatus))
		})
	}
}
