package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-go/storefront/internal/order"
)

type fakeOrderRepo struct {
	orders map[string][]order.Order
	err    error
}

func (f *fakeOrderRepo) PlaceOrder(ctx context.Context, userID string, items []order.Item) (*order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o := order.Order{
		ID:        "order-1",
		UserID:    userID,
		Items:     items,
		Total:     decimal.RequireFromString("24.98"),
		Status:    order.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if f.orders == nil {
		f.orders = map[string][]order.Order{}
	}
	f.orders[userID] = append(f.orders[userID], o)
	return &o, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders[userID], nil
}

func TestPlaceOrder(t *testing.T) {
	repo := &fakeOrderRepo{}
	router := testRouter(t, nil, nil, repo)

	body := `{"userId":"alice","products":[{"product_id":1,"quantity":2},{"product_id":2,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Message string      `json:"message"`
		Order   order.Order `json:"order"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Order created", resp.Message)
	assert.Equal(t, "order-1", resp.Order.ID)
	assert.Equal(t, "alice", resp.Order.UserID)
	assert.Equal(t, order.StatusPending, resp.Order.Status)
	assert.True(t, resp.Order.Total.Equal(decimal.RequireFromString("24.98")))
	require.Len(t, repo.orders["alice"], 1)
}

func TestPlaceOrderValidation(t *testing.T) {
	repo := &fakeOrderRepo{}
	router := testRouter(t, nil, nil, repo)

	tests := []struct {
		name string
		body string
	}{
		{"missing user", `{"products":[{"product_id":1,"quantity":1}]}`},
		{"empty products", `{"userId":"alice","products":[]}`},
		{"zero quantity", `{"userId":"alice","products":[{"product_id":1,"quantity":0}]}`},
		{"bad product id", `{"userId":"alice","products":[{"product_id":0,"quantity":1}]}`},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Empty(t, repo.orders, "a rejected order must not be stored")
		})
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	repo := &fakeOrderRepo{err: order.ErrUnknownProduct}
	router := testRouter(t, nil, nil, repo)

	body := `{"userId":"alice","products":[{"product_id":42,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "one or more product ids are invalid")
}

func TestPlaceOrderServerError(t *testing.T) {
	repo := &fakeOrderRepo{err: errors.New("connection reset")}
	router := testRouter(t, nil, nil, repo)

	body := `{"userId":"alice","products":[{"product_id":1,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// the cause stays in the log, never in the response
	assert.Contains(t, rec.Body.String(), "Server error")
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestListOrdersByUser(t *testing.T) {
	repo := &fakeOrderRepo{}
	router := testRouter(t, nil, nil, repo)

	_, err := repo.PlaceOrder(context.Background(), "alice", []order.Item{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders/alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var orders []order.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "alice", orders[0].UserID)

	// a user with no orders gets an empty array
	req = httptest.NewRequest(http.MethodGet, "/orders/nobody", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
