package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/laundrydesk/laundry-payments/internal/order/application"
	"github.com/laundrydesk/laundry-payments/internal/order/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Patch("/orders/{id}/status", h.updateStatus)

	return r
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type createOrderReq struct {
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	PickupAddress string    `json:"pickup_address"`
	ServiceType   string    `json:"service_type"`
	WeightKg      float64   `json:"weight_kg"`
	TotalCents    int64     `json:"total_cents"`
	PickupDate    time.Time `json:"pickup_date"`
	Notes         string    `json:"notes"`
	PaymentMethod string    `json:"payment_method"`
}

type orderView struct {
	ID            string    `json:"id"`
	OrderNumber   string    `json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	PickupAddress string    `json:"pickup_address"`
	ServiceType   string    `json:"service_type"`
	WeightKg      float64   `json:"weight_kg"`
	TotalCents    int64     `json:"total_cents"`
	PickupDate    time.Time `json:"pickup_date"`
	Notes         string    `json:"notes"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toView(o domain.Order) orderView {
	return orderView{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		CustomerEmail: o.CustomerEmail,
		PickupAddress: o.PickupAddress,
		ServiceType:   o.ServiceType,
		WeightKg:      o.WeightKg,
		TotalCents:    o.TotalCents,
		PickupDate:    o.PickupDate,
		Notes:         o.Notes,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid body"})
		return
	}
	if req.CustomerName == "" || req.TotalCents <= 0 {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "customer_name and a positive total_cents are required"})
		return
	}

	o, err := h.service.CreateOrder(ctx, application.CreateOrderInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		PickupAddress: req.PickupAddress,
		ServiceType:   req.ServiceType,
		WeightKg:      req.WeightKg,
		TotalCents:    req.TotalCents,
		PickupDate:    req.PickupDate,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.log.Error("create order failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Failed to create order"})
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: toView(o)})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	var status *domain.Status
	if s := r.URL.Query().Get("status"); s != "" && s != "all" {
		v := domain.Status(s)
		if !v.Valid() {
			writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "unknown status filter"})
			return
		}
		status = &v
	}

	orders, err := h.service.List(ctx, status)
	if err != nil {
		h.log.Error("list orders failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Failed to fetch orders"})
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toView(o))
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: views})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, application.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "order not found"})
		return
	case err != nil:
		h.log.Error("get order failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Failed to fetch order"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toView(o)})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid body"})
		return
	}

	o, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "id"), domain.Status(req.Status))
	switch {
	case errors.Is(err, application.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "order not found"})
		return
	case errors.Is(err, application.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, envelope{Success: false, Message: err.Error()})
		return
	case err != nil:
		h.log.Error("update order failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Failed to update order"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toView(o)})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
