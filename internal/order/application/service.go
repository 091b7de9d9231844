package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/laundrydesk/laundry-payments/internal/order/domain"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	repo OrderRepository
}

func NewService(repo OrderRepository) *Service {
	return &Service{repo: repo}
}

type CreateOrderInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	PickupAddress string
	ServiceType   string
	WeightKg      float64
	TotalCents    int64
	PickupDate    time.Time
	Notes         string
	PaymentMethod string
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	o := domain.NewOrder(uuid.NewString(), newOrderNumber(), in.TotalCents)
	o.CustomerName = in.CustomerName
	o.CustomerPhone = in.CustomerPhone
	o.CustomerEmail = in.CustomerEmail
	o.PickupAddress = in.PickupAddress
	o.ServiceType = in.ServiceType
	o.WeightKg = in.WeightKg
	o.PickupDate = in.PickupDate
	o.Notes = in.Notes

	event := domain.OrderCreated{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		TotalCents:    o.TotalCents,
		PaymentMethod: in.PaymentMethod,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.SaveWithOutbox(ctx, o, "OrderCreated", payload); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status *domain.Status) ([]domain.Order, error) {
	return s.repo.List(ctx, status)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, next domain.Status) (domain.Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !domain.CanTransition(o.Status, next) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	return s.repo.UpdateStatus(ctx, id, next)
}

// MarkPaid and MarkFailed roll the payment outcome up onto the order. Driven
// by payment events; the order API never writes payment_status directly.
func (s *Service) MarkPaid(ctx context.Context, orderID string) error {
	return s.repo.SetPaymentStatus(ctx, orderID, domain.PaymentPaid)
}

func (s *Service) MarkFailed(ctx context.Context, orderID string) error {
	return s.repo.SetPaymentStatus(ctx, orderID, domain.PaymentFailed)
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("LD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
