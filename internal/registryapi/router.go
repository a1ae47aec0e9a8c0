package registryapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/storefront-go/storefront/internal/registry"
)

func NewRouter(store *registry.Store, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	h := NewHandler(store, logger)

	r.Get("/health", healthHandler)
	r.Get("/getServer", h.GetServer)
	r.Post("/setServer", h.SetServer)
	r.Post("/failover", h.Failover)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "registry",
	})
}
