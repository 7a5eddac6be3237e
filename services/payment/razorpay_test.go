package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayClient_CreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_secret", pass)

		var req OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(100000), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "enr_7", req.Receipt)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Order{ID: "order_ABC", Entity: "order", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"})
	}))
	defer server.Close()

	client := NewRazorpayClient(RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "rzp_secret", BaseURL: server.URL})
	order, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 100000, Currency: "INR", Receipt: "enr_7"})
	require.NoError(t, err)
	assert.Equal(t, "order_ABC", order.ID)
	assert.Equal(t, "created", order.Status)
}

func TestRazorpayClient_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`))
	}))
	defer server.Close()

	client := NewRazorpayClient(RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: server.URL})
	_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 10, Currency: "INR", Receipt: "enr_1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGateway)
	assert.Contains(t, err.Error(), "BAD_REQUEST_ERROR")
}

func TestToPaise(t *testing.T) {
	assert.Equal(t, int64(100000), ToPaise(decimal.NewFromInt(1000)))
	assert.Equal(t, int64(89999), ToPaise(decimal.RequireFromString("899.99")))
	assert.Equal(t, int64(1), ToPaise(decimal.RequireFromString("0.005")))
}
