package domain

type OrderCreated struct {
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	CustomerName  string `json:"customer_name"`
	TotalCents    int64  `json:"total_cents"`
	PaymentMethod string `json:"payment_method"`
}
