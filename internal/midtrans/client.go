package midtrans

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type ChargeRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	EnabledPayments    []string           `json:"enabled_payments,omitempty"`
}

type ChargeResponse struct {
	Token             string `json:"token,omitempty"`
	RedirectURL       string `json:"redirect_url,omitempty"`
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
}

type TransactionStatusResponse struct {
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
	GrossAmount       string `json:"gross_amount"`
	StatusCode        string `json:"status_code"`
}

// DefaultEnabledPayments mirrors the channels the storefront offers.
var DefaultEnabledPayments = []string{
	"credit_card", "bca_va", "bni_va", "bri_va",
	"echannel", "permata_va", "other_va", "gopay", "shopeepay",
}

// Client talks to the Midtrans Core API, sandbox or live per Config.
type Client struct {
	log     *slog.Logger
	cfg     Config
	baseURL string
	http    *http.Client
}

func NewClient(log *slog.Logger, cfg Config) *Client {
	return &Client{
		log:     log,
		cfg:     cfg,
		baseURL: cfg.BaseURL(),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.cfg.ServerKey+":"))
}

func (c *Client) Charge(ctx context.Context, req ChargeRequest) (ChargeResponse, error) {
	var out ChargeResponse

	body, err := json.Marshal(req)
	if err != nil {
		return out, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charge", bytes.NewReader(body))
	if err != nil {
		return out, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.authHeader())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("midtrans charge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Error("midtrans charge rejected", "status", resp.StatusCode, "body", string(raw))
		return out, fmt.Errorf("midtrans charge: http %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("midtrans charge decode: %w", err)
	}
	return out, nil
}

// TransactionStatus queries the gateway-side state of a transaction by order
// id, used for manual reconciliation from the dashboard.
func (c *Client) TransactionStatus(ctx context.Context, orderID string) (TransactionStatusResponse, error) {
	var out TransactionStatusResponse

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+orderID+"/status", nil)
	if err != nil {
		return out, err
	}
	httpReq.Header.Set("Authorization", c.authHeader())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("midtrans status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return out, fmt.Errorf("midtrans status: http %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("midtrans status decode: %w", err)
	}
	return out, nil
}
