package application

import (
	"context"

	"github.com/laundrydesk/laundry-payments/internal/order/domain"
)

type OrderRepository interface {
	SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, status *domain.Status) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, ps domain.PaymentStatus) error
}
