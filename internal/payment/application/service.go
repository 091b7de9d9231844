package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/laundry-payments/internal/midtrans"
	"github.com/laundrydesk/laundry-payments/internal/payment/domain"
)

const (
	EventPaymentVerified = "PaymentVerified"
	EventPaymentRejected = "PaymentRejected"
)

type Service struct {
	repo     PaymentRepository
	verifier SignatureVerifier
	gateway  Gateway
}

func NewService(repo PaymentRepository, verifier SignatureVerifier, gateway Gateway) *Service {
	return &Service{repo: repo, verifier: verifier, gateway: gateway}
}

// Reconcile applies a gateway notification to the matching payment. The
// signature check runs before any store access; unverifiable notifications
// never touch the database. Redelivered notifications are no-op successes,
// and a terminal payment is never moved to a different terminal state.
func (s *Service) Reconcile(ctx context.Context, n midtrans.Notification) (domain.Payment, error) {
	if !s.verifier.Verify(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		return domain.Payment{}, ErrInvalidSignature
	}

	mapped := midtrans.MapTransactionStatus(n.TransactionStatus)

	p, err := s.repo.FindByOrderID(ctx, n.OrderID)
	if err != nil {
		return domain.Payment{}, err
	}

	upd := NotificationUpdate{
		OrderID:       n.OrderID,
		Status:        mapped,
		TransactionID: n.TransactionID,
		PaymentType:   n.PaymentType,
	}

	var eventType string
	var payload []byte
	switch mapped {
	case domain.StatusVerified:
		now := time.Now().UTC()
		upd.VerifiedAt = &now
		eventType = EventPaymentVerified
		payload, _ = json.Marshal(domain.PaymentVerified{
			PaymentID:     p.ID,
			OrderID:       p.OrderID,
			AmountCents:   p.AmountCents,
			TransactionID: n.TransactionID,
			PaymentType:   n.PaymentType,
		})
	case domain.StatusRejected:
		eventType = EventPaymentRejected
		payload, _ = json.Marshal(domain.PaymentRejected{
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Reason:    n.TransactionStatus,
		})
	}

	updated, _, err := s.repo.ApplyNotification(ctx, upd, eventType, payload)
	if err != nil {
		return domain.Payment{}, err
	}
	return updated, nil
}

// CreateForOrder registers a Pending payment when an order is placed.
func (s *Service) CreateForOrder(ctx context.Context, orderID string, amountCents int64, method domain.Method) (domain.Payment, error) {
	p := domain.NewPayment(uuid.NewString(), orderID, amountCents, method)
	if err := s.repo.Save(ctx, p); err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}

// Verify is the manual admin path. It bypasses the signature check (the
// caller is authenticated) but not the terminal-state guard. The event
// payload is built from the stored payment so the order-side rollup receives
// the order id, same as the notification path.
func (s *Service) Verify(ctx context.Context, paymentID, actor string) (domain.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	d := ManualDecision{Status: domain.StatusVerified, Actor: actor, DecidedAt: time.Now().UTC()}
	payload, _ := json.Marshal(domain.PaymentVerified{
		PaymentID:   p.ID,
		OrderID:     p.OrderID,
		AmountCents: p.AmountCents,
		VerifiedBy:  actor,
	})
	return s.repo.Finalize(ctx, paymentID, d, EventPaymentVerified, payload)
}

func (s *Service) Reject(ctx context.Context, paymentID, actor string) (domain.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	d := ManualDecision{Status: domain.StatusRejected, Actor: actor, DecidedAt: time.Now().UTC()}
	payload, _ := json.Marshal(domain.PaymentRejected{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Reason:    "manual rejection",
	})
	return s.repo.Finalize(ctx, paymentID, d, EventPaymentRejected, payload)
}

func (s *Service) Get(ctx context.Context, paymentID string) (domain.Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

func (s *Service) List(ctx context.Context, status *domain.Status) ([]domain.Payment, error) {
	return s.repo.List(ctx, status)
}

// ChargeInput identifies the pending payment to open with the gateway.
type ChargeInput struct {
	OrderID  string
	Customer midtrans.CustomerDetails
}

// CreateCharge opens a gateway transaction for a pending payment and returns
// the redirect data for the customer-facing flow.
func (s *Service) CreateCharge(ctx context.Context, in ChargeInput) (midtrans.ChargeResponse, error) {
	p, err := s.repo.FindByOrderID(ctx, in.OrderID)
	if err != nil {
		return midtrans.ChargeResponse{}, err
	}
	if p.Status.Terminal() {
		return midtrans.ChargeResponse{}, ErrAlreadyFinalized
	}

	return s.gateway.Charge(ctx, midtrans.ChargeRequest{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     p.OrderID,
			GrossAmount: p.AmountCents,
		},
		CustomerDetails: in.Customer,
		EnabledPayments: midtrans.DefaultEnabledPayments,
	})
}

// GatewayStatus asks the gateway for its side of a payment, for manual
// reconciliation when a notification is suspected lost.
func (s *Service) GatewayStatus(ctx context.Context, orderID string) (midtrans.TransactionStatusResponse, error) {
	if _, err := s.repo.FindByOrderID(ctx, orderID); err != nil {
		return midtrans.TransactionStatusResponse{}, err
	}
	return s.gateway.TransactionStatus(ctx, orderID)
}
