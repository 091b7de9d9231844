package domain

import "time"

type Status string

const (
	StatusPending  Status = "Pending"
	StatusVerified Status = "Verified"
	StatusRejected Status = "Rejected"
)

// Terminal reports whether no further automatic transition is expected.
func (s Status) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

type Method string

const (
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
	MethodEWallet      Method = "ewallet"
	MethodCOD          Method = "cod"
)

type Payment struct {
	ID                    string
	OrderID               string
	AmountCents           int64
	Method                Method
	Status                Status
	MidtransTransactionID *string
	MidtransPaymentType   *string
	ProofURL              *string
	VerifiedAt            *time.Time
	VerifiedBy            *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func NewPayment(id, orderID string, amountCents int64, method Method) Payment {
	now := time.Now().UTC()
	return Payment{
		ID:          id,
		OrderID:     orderID,
		AmountCents: amountCents,
		Method:      method,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
