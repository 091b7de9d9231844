package domain

type PaymentVerified struct {
	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id"`
	AmountCents   int64  `json:"amount_cents"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaymentType   string `json:"payment_type,omitempty"`
	VerifiedBy    string `json:"verified_by,omitempty"`
}

type PaymentRejected struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Reason    string `json:"reason,omitempty"`
}
