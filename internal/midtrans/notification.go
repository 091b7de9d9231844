package midtrans

import "github.com/laundrydesk/laundry-payments/internal/payment/domain"

// Notification is the payload Midtrans POSTs to the merchant callback URL.
// It is untrusted input; only its derived effects are persisted.
type Notification struct {
	TransactionType   string `json:"transaction_type,omitempty"`
	TransactionTime   string `json:"transaction_time,omitempty"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusMessage     string `json:"status_message,omitempty"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	SettlementTime    string `json:"settlement_time,omitempty"`
	PaymentType       string `json:"payment_type"`
	OrderID           string `json:"order_id"`
	MerchantID        string `json:"merchant_id,omitempty"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	Currency          string `json:"currency,omitempty"`
}

// MapTransactionStatus translates the gateway's transaction_status vocabulary
// into the internal payment status. Total: unrecognized keywords (pending,
// authorize, anything future) leave the payment Pending rather than erroring.
// Gateway keywords must not leak past this function.
func MapTransactionStatus(transactionStatus string) domain.Status {
	switch transactionStatus {
	case "capture", "settlement":
		return domain.StatusVerified
	case "cancel", "expire", "failure":
		return domain.StatusRejected
	default:
		return domain.StatusPending
	}
}
