package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "rzp_key", "rzp_secret", 5*time.Second)
}

func TestClient_CreateOrder(t *testing.T) {
	var got createOrderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_ABC","amount":5000,"currency":"INR","receipt":"r1","status":"created"}`))
	})

	out, err := c.CreateOrder(context.Background(), usecase.GatewayOrderRequest{
		Amount:   5000,
		Currency: "INR",
		Receipt:  "r1",
		Notes:    map[string]string{"order_id": "o1"},
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.GatewayOrder{ID: "order_ABC", Amount: 5000, Currency: "INR", Receipt: "r1", Status: "created"}, out)
	assert.Equal(t, int64(5000), got.Amount)
	assert.Equal(t, "o1", got.Notes["order_id"])
}

func TestClient_CreateOrder_ClientErrorPassesThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	})

	_, err := c.CreateOrder(context.Background(), usecase.GatewayOrderRequest{Amount: 100, Currency: "INR"})

	ge, ok := usecase.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, ge.HTTPStatus)
	assert.Equal(t, "Authentication failed", ge.Description)
}

func TestClient_CreateOrder_ServerErrorBecomes400(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`oops`))
	})

	_, err := c.CreateOrder(context.Background(), usecase.GatewayOrderRequest{Amount: 100, Currency: "INR"})

	ge, ok := usecase.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ge.HTTPStatus)
	assert.Equal(t, "payment gateway error", ge.Description)
}

func TestClient_CreateOrder_InvalidBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amount":100}`))
	})

	_, err := c.CreateOrder(context.Background(), usecase.GatewayOrderRequest{Amount: 100, Currency: "INR"})
	assert.Equal(t, http.StatusBadGateway, usecase.StatusCode(err))
}

func TestClient_CreateOrder_MissingCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "rzp_secret", time.Second)
	_, err := c.CreateOrder(context.Background(), usecase.GatewayOrderRequest{Amount: 100, Currency: "INR"})

	assert.True(t, errors.Is(err, usecase.ErrConfiguration))
	assert.False(t, called)
}

func TestClient_CreateOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "rzp_key", "rzp_secret", time.Second)
	_, err := c.CreateOrder(context.Background(), usecase.GatewayOrderRequest{Amount: 100, Currency: "INR"})
	assert.Equal(t, http.StatusBadGateway, usecase.StatusCode(err))
}
