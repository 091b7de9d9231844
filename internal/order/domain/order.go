package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPickedUp  Status = "picked_up"
	StatusInProcess Status = "in_process"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus is the order-side rollup of the payment outcome. It is
// written only by the payment-events consumer, never by order handlers.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInProcess},
	StatusInProcess: {StatusReady},
	StatusReady:     {StatusDelivered},
}

// Valid reports whether s is one of the fulfilment lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPickedUp, StatusInProcess,
		StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the fulfilment lifecycle allows from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID            string
	OrderNumber   string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	PickupAddress string
	ServiceType   string
	WeightKg      float64
	TotalCents    int64
	PickupDate    time.Time
	Notes         string
	Status        Status
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewOrder(id, orderNumber string, totalCents int64) Order {
	now := time.Now().UTC()
	return Order{
		ID:            id,
		OrderNumber:   orderNumber,
		TotalCents:    totalCents,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
