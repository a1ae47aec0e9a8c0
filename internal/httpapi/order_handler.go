package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storefront-go/storefront/internal/order"
)

type OrderHandler struct {
	svc    *order.Service
	logger *log.Logger
}

func NewOrderHandler(svc *order.Service, logger *log.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

type placeOrderReq struct {
	UserID   string       `json:"userId"`
	Products []order.Item `json:"products"`
}

// PlaceOrder handles POST /orders. Validation failures never touch the
// store; unknown product ids abort the checkout with no order and no
// cart mutation.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	o, err := h.svc.PlaceOrder(r.Context(), req.UserID, req.Products)
	if err != nil {
		if order.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Printf("place order: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created",
		"order":   o,
	})
}

func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	orders, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		if order.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Printf("list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
