package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/laundrydesk/laundry-payments/internal/order/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepositoryMock struct{ mock.Mock }

func (m *RepositoryMock) SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error {
	args := m.Called(ctx, o, eventType, payload)
	return args.Error(0)
}

func (m *RepositoryMock) Get(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *RepositoryMock) List(ctx context.Context, status *domain.Status) ([]domain.Order, error) {
	args := m.Called(ctx, status)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *RepositoryMock) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Order, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *RepositoryMock) SetPaymentStatus(ctx context.Context, orderID string, ps domain.PaymentStatus) error {
	args := m.Called(ctx, orderID, ps)
	return args.Error(0)
}

func TestService_CreateOrder(t *testing.T) {
	ctx := context.Background()
	repo := new(RepositoryMock)

	var captured []byte
	repo.On("SaveWithOutbox", ctx, mock.MatchedBy(func(o domain.Order) bool {
		return o.ID != "" && o.OrderNumber != "" &&
			o.Status == domain.StatusPending && o.TotalCents == 120000
	}), "OrderCreated", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(3).([]byte) }).
		Return(nil)

	svc := NewService(repo)
	o, err := svc.CreateOrder(ctx, CreateOrderInput{
		CustomerName:  "Siti Rahma",
		TotalCents:    120000,
		ServiceType:   "wash-and-iron",
		PaymentMethod: "ewallet",
	})
	require.NoError(t, err)
	require.Equal(t, "Siti Rahma", o.CustomerName)

	var event domain.OrderCreated
	require.NoError(t, json.Unmarshal(captured, &event))
	require.Equal(t, o.ID, event.OrderID)
	require.Equal(t, o.OrderNumber, event.OrderNumber)
	require.Equal(t, int64(120000), event.TotalCents)
	require.Equal(t, "ewallet", event.PaymentMethod)
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed transition persists", func(t *testing.T) {
		repo := new(RepositoryMock)
		current := domain.NewOrder("o1", "LD-1", 1000)
		repo.On("Get", ctx, "o1").Return(current, nil)

		updated := current
		updated.Status = domain.StatusConfirmed
		repo.On("UpdateStatus", ctx, "o1", domain.StatusConfirmed).Return(updated, nil)

		svc := NewService(repo)
		o, err := svc.UpdateStatus(ctx, "o1", domain.StatusConfirmed)
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, o.Status)
	})

	t.Run("skipping the lifecycle is refused", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("Get", ctx, "o1").Return(domain.NewOrder("o1", "LD-1", 1000), nil)

		svc := NewService(repo)
		_, err := svc.UpdateStatus(ctx, "o1", domain.StatusDelivered)
		require.ErrorIs(t, err, ErrInvalidTransition)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing order", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("Get", ctx, "nope").Return(domain.Order{}, ErrOrderNotFound)

		svc := NewService(repo)
		_, err := svc.UpdateStatus(ctx, "nope", domain.StatusConfirmed)
		require.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_PaymentRollup(t *testing.T) {
	ctx := context.Background()
	repo := new(RepositoryMock)
	repo.On("SetPaymentStatus", ctx, "o1", domain.PaymentPaid).Return(nil)
	repo.On("SetPaymentStatus", ctx, "o2", domain.PaymentFailed).Return(nil)

	svc := NewService(repo)
	require.NoError(t, svc.MarkPaid(ctx, "o1"))
	require.NoError(t, svc.MarkFailed(ctx, "o2"))
	repo.AssertExpectations(t)
}
