package application

import (
	"context"
	"time"

	"github.com/laundrydesk/laundry-payments/internal/midtrans"
	"github.com/laundrydesk/laundry-payments/internal/payment/domain"
)

// NotificationUpdate is the write derived from a verified, mapped gateway
// notification. VerifiedAt is set only for Verified transitions; a nil value
// must leave the stored timestamp untouched.
type NotificationUpdate struct {
	OrderID       string
	Status        domain.Status
	TransactionID string
	PaymentType   string
	VerifiedAt    *time.Time
}

// ManualDecision is an authenticated admin verify/reject.
type ManualDecision struct {
	Status    domain.Status
	Actor     string
	DecidedAt time.Time
}

type PaymentRepository interface {
	// Save inserts a Pending payment; inserting again for the same order is
	// a no-op (order events may be redelivered).
	Save(ctx context.Context, p domain.Payment) error
	FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error)
	GetByID(ctx context.Context, id string) (domain.Payment, error)
	List(ctx context.Context, status *domain.Status) ([]domain.Payment, error)
	// ApplyNotification performs the guarded reconciliation write and, when
	// eventType is non-empty and a Pending row actually transitioned, records
	// the outbox event in the same transaction. applied=false means the row
	// was already terminal and was left as is.
	ApplyNotification(ctx context.Context, upd NotificationUpdate, eventType string, payload []byte) (p domain.Payment, applied bool, err error)
	// Finalize applies a manual decision to a Pending payment, recording the
	// outbox event transactionally. Terminal rows yield ErrAlreadyFinalized.
	Finalize(ctx context.Context, paymentID string, d ManualDecision, eventType string, payload []byte) (domain.Payment, error)
}

type Gateway interface {
	Charge(ctx context.Context, req midtrans.ChargeRequest) (midtrans.ChargeResponse, error)
	TransactionStatus(ctx context.Context, orderID string) (midtrans.TransactionStatusResponse, error)
}

type SignatureVerifier interface {
	Verify(orderID, statusCode, grossAmount, signatureKey string) bool
}
