package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/catalog"
)

type ProductHandler struct {
	repo   catalog.Repository
	logger *log.Logger
}

func NewProductHandler(repo catalog.Repository, logger *log.Logger) *ProductHandler {
	return &ProductHandler{repo: repo, logger: logger}
}

// List handles GET /products?category=&inStock=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var f catalog.Filter
	f.Category = r.URL.Query().Get("category")
	if raw := r.URL.Query().Get("inStock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "inStock must be a boolean")
			return
		}
		f.InStock = inStock
	}

	products, err := h.repo.List(r.Context(), f)
	if err != nil {
		h.serverError(w, "list products", err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.serverError(w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type createProductReq struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	Stock       *int             `json:"stock"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Price == nil || req.Stock == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must be >= 0")
		return
	}
	if *req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "stock must be >= 0")
		return
	}

	p, err := h.repo.Create(r.Context(), catalog.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Stock:       *req.Stock,
	})
	if err != nil {
		h.serverError(w, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	p, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrEmptyUpdate):
			writeError(w, http.StatusBadRequest, "No updates provided")
		case errors.Is(err, catalog.ErrBadField):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		default:
			h.serverError(w, "update product", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.serverError(w, "delete product", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *ProductHandler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "Server error")
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}
