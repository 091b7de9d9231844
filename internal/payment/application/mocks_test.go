package application

import (
	"context"

	"github.com/laundrydesk/laundry-payments/internal/midtrans"
	"github.com/laundrydesk/laundry-payments/internal/payment/domain"
	"github.com/stretchr/testify/mock"
)

type RepositoryMock struct{ mock.Mock }

func (m *RepositoryMock) Save(ctx context.Context, p domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *RepositoryMock) FindByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(domain.Payment), args.Error(1)
}

func (m *RepositoryMock) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Payment), args.Error(1)
}

func (m *RepositoryMock) List(ctx context.Context, status *domain.Status) ([]domain.Payment, error) {
	args := m.Called(ctx, status)
	payments, _ := args.Get(0).([]domain.Payment)
	return payments, args.Error(1)
}

func (m *RepositoryMock) ApplyNotification(ctx context.Context, upd NotificationUpdate, eventType string, payload []byte) (domain.Payment, bool, error) {
	args := m.Called(ctx, upd, eventType, payload)
	return args.Get(0).(domain.Payment), args.Bool(1), args.Error(2)
}

func (m *RepositoryMock) Finalize(ctx context.Context, paymentID string, d ManualDecision, eventType string, payload []byte) (domain.Payment, error) {
	args := m.Called(ctx, paymentID, d, eventType, payload)
	return args.Get(0).(domain.Payment), args.Error(1)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) Charge(ctx context.Context, req midtrans.ChargeRequest) (midtrans.ChargeResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(midtrans.ChargeResponse), args.Error(1)
}

func (m *GatewayMock) TransactionStatus(ctx context.Context, orderID string) (midtrans.TransactionStatusResponse, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(midtrans.TransactionStatusResponse), args.Error(1)
}
