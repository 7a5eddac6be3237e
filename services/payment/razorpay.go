package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// OrderRequest is the body of POST /v1/orders. Amount is in paise.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's order resource
type Order struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// OrderCreator opens checkout orders at the gateway
type OrderCreator interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// RazorpayConfig holds the API credentials
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// RazorpayClient talks to the Razorpay Orders API
type RazorpayClient struct {
	client *resty.Client
}

// NewRazorpayClient builds a client authenticated with basic auth
func NewRazorpayClient(cfg RazorpayConfig) *RazorpayClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RazorpayClient{client: client}
}

// CreateOrder calls POST /v1/orders. Failures are not retried.
func (r *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var order Order
	var apiErr razorpayError

	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&order).
		SetError(&apiErr).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d %s %s", ErrGateway, resp.StatusCode(), apiErr.Error.Code, apiErr.Error.Description)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: order id missing in response", ErrGateway)
	}
	return &order, nil
}

// ToPaise converts rupees to the smallest currency unit
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
