package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/storefront-go/storefront/internal/cart"
	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/order"
)

type Deps struct {
	Catalog catalog.Repository
	Carts   cart.Repository
	Orders  *order.Service
	Logger  *log.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	p := NewProductHandler(d.Catalog, d.Logger)
	r.Route("/products", func(r chi.Router) {
		r.Get("/", p.List)
		r.Post("/", p.Create)
		r.Get("/{id}", p.Get)
		r.Put("/{id}", p.Update)
		r.Delete("/{id}", p.Delete)
	})

	c := NewCartHandler(d.Carts, d.Logger)
	r.Route("/cart/{userId}", func(r chi.Router) {
		r.Get("/", c.List)
		r.Post("/", c.AddItem)
		r.Delete("/item/{productId}", c.RemoveItem)
	})

	o := NewOrderHandler(d.Orders, d.Logger)
	r.Post("/orders", o.PlaceOrder)
	r.Get("/orders/{userId}", o.ListByUser)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
