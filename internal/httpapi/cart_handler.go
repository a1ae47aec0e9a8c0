package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/storefront-go/storefront/internal/cart"
)

type CartHandler struct {
	repo   cart.Repository
	logger *log.Logger
}

func NewCartHandler(repo cart.Repository, logger *log.Logger) *CartHandler {
	return &CartHandler{repo: repo, logger: logger}
}

type addItemReq struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddItem handles POST /cart/{userId}. It answers 200 when the line was
// merged into an existing one and 201 when a new line was created.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID <= 0 || req.Quantity == 0 {
		writeError(w, http.StatusBadRequest, "Product ID and quantity are required")
		return
	}

	merged, err := h.repo.AddOrMerge(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) || errors.Is(err, cart.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.serverError(w, "add cart item", err)
		return
	}

	if merged {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Cart updated successfully"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Product added to cart"})
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	lines, err := h.repo.List(r.Context(), userID)
	if err != nil {
		h.serverError(w, "list cart", err)
		return
	}
	if lines == nil {
		lines = []cart.Line{}
	}
	writeJSON(w, http.StatusOK, lines)
}

// RemoveItem handles DELETE /cart/{userId}/item/{productId}; removing an
// absent line still answers 200.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || productID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.repo.Remove(r.Context(), userID, productID); err != nil {
		h.serverError(w, "remove cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product removed from cart"})
}

func (h *CartHandler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "Server error")
}
