package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/laundrydesk/laundry-payments/internal/midtrans"
	"github.com/laundrydesk/laundry-payments/internal/payment/application"
	"github.com/laundrydesk/laundry-payments/internal/payment/domain"
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
		tracer:  otel.Tracer("payment-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	// The notification route is called server-to-server by the gateway and
	// carries no session; the signature check is its only authentication.
	r.Post("/payments/midtrans/notification", h.midtransNotification)
	r.Post("/payments/midtrans", h.createCharge)
	r.Get("/payments/midtrans/{orderID}/status", h.gatewayStatus)
	r.Get("/payments", h.listPayments)
	r.Get("/payments/{id}", h.getPayment)
	r.Post("/payments/{id}/verify", h.verifyPayment)
	r.Post("/payments/{id}/reject", h.rejectPayment)

	return r
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type paymentView struct {
	ID                    string     `json:"id"`
	OrderID               string     `json:"order_id"`
	AmountCents           int64      `json:"amount_cents"`
	Method                string     `json:"method"`
	Status                string     `json:"status"`
	MidtransTransactionID *string    `json:"midtrans_transaction_id"`
	MidtransPaymentType   *string    `json:"midtrans_payment_type"`
	ProofURL              *string    `json:"proof_url"`
	VerifiedAt            *time.Time `json:"verified_at"`
	VerifiedBy            *string    `json:"verified_by"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func toView(p domain.Payment) paymentView {
	return paymentView{
		ID:                    p.ID,
		OrderID:               p.OrderID,
		AmountCents:           p.AmountCents,
		Method:                string(p.Method),
		Status:                string(p.Status),
		MidtransTransactionID: p.MidtransTransactionID,
		MidtransPaymentType:   p.MidtransPaymentType,
		ProofURL:              p.ProofURL,
		VerifiedAt:            p.VerifiedAt,
		VerifiedBy:            p.VerifiedBy,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (h *Handler) midtransNotification(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MidtransNotification")
	defer span.End()

	var n midtrans.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid body"})
		return
	}

	p, err := h.service.Reconcile(ctx, n)
	switch {
	case errors.Is(err, application.ErrInvalidSignature):
		h.log.Warn("notification rejected", "order_id", n.OrderID)
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "Invalid signature"})
		return
	case errors.Is(err, application.ErrPaymentNotFound):
		// Gateway/local inconsistency; non-2xx so the gateway redelivers
		// while someone investigates.
		h.log.Error("notification for unknown payment", "order_id", n.OrderID, "transaction_id", n.TransactionID)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "payment not found"})
		return
	case err != nil:
		h.log.Error("notification reconcile failed", "order_id", n.OrderID, "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Failed to update payment"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toView(p)})
}

type chargeReq struct {
	OrderID  string                   `json:"order_id"`
	Customer midtrans.CustomerDetails `json:"customer_details"`
}

func (h *Handler) createCharge(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCharge")
	defer span.End()

	var req chargeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid body"})
		return
	}

	resp, err := h.service.CreateCharge(ctx, application.ChargeInput{OrderID: req.OrderID, Customer: req.Customer})
	switch {
	case errors.Is(err, application.ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "payment not found"})
		return
	case errors.Is(err, application.ErrAlreadyFinalized):
		writeJSON(w, http.StatusConflict, envelope{Success: false, Message: "payment already finalized"})
		return
	case err != nil:
		h.log.Error("charge failed", "order_id", req.OrderID, "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Failed to create payment"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]string{
		"token":          resp.Token,
		"redirect_url":   resp.RedirectURL,
		"transaction_id": resp.TransactionID,
		"order_id":       req.OrderID,
	}})
}

func (h *Handler) gatewayStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GatewayStatus")
	defer span.End()

	resp, err := h.service.GatewayStatus(ctx, chi.URLParam(r, "orderID"))
	switch {
	case errors.Is(err, application.ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "payment not found"})
		return
	case err != nil:
		h.log.Error("gateway status failed", "err", err)
		writeJSON(w, http.StatusBadGateway, envelope{Success: false, Message: "Failed to query gateway"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: resp})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListPayments")
	defer span.End()

	var status *domain.Status
	if s := r.URL.Query().Get("status"); s != "" && s != "all" {
		v := domain.Status(s)
		if v != domain.StatusPending && v != domain.StatusVerified && v != domain.StatusRejected {
			writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "unknown status filter"})
			return
		}
		status = &v
	}

	payments, err := h.service.List(ctx, status)
	if err != nil {
		h.log.Error("list payments failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Failed to fetch payments"})
		return
	}

	views := make([]paymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, toView(p))
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: views})
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetPayment")
	defer span.End()

	p, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, application.ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "payment not found"})
		return
	case err != nil:
		h.log.Error("get payment failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "Failed to fetch payment"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toView(p)})
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "VerifyPayment")
	defer span.End()

	p, err := h.service.Verify(ctx, chi.URLParam(r, "id"), actor(r))
	h.writeDecision(w, p, err, "Failed to verify payment")
}

func (h *Handler) rejectPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RejectPayment")
	defer span.End()

	p, err := h.service.Reject(ctx, chi.URLParam(r, "id"), actor(r))
	h.writeDecision(w, p, err, "Failed to reject payment")
}

func (h *Handler) writeDecision(w http.ResponseWriter, p domain.Payment, err error, failMsg string) {
	switch {
	case errors.Is(err, application.ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "payment not found"})
	case errors.Is(err, application.ErrAlreadyFinalized):
		writeJSON(w, http.StatusConflict, envelope{Success: false, Message: "payment already finalized"})
	case err != nil:
		h.log.Error("manual decision failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: failMsg})
	default:
		writeJSON(w, http.StatusOK, envelope{Success: true, Data: toView(p)})
	}
}

// actor identifies the admin behind a manual action. Upstream auth middleware
// sets the header; the fallback mirrors the legacy dashboard behavior.
func actor(r *http.Request) string {
	if v := r.Header.Get("X-Admin-ID"); v != "" {
		return v
	}
	return "admin"
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
