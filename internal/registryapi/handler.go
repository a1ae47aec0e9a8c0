package registryapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/storefront-go/storefront/internal/registry"
)

type Handler struct {
	store  *registry.Store
	logger *log.Logger
}

func NewHandler(store *registry.Store, logger *log.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

type serverResponse struct {
	Code   int    `json:"code"`
	Server string `json:"server"`
}

// GetServer handles GET /getServer.
func (h *Handler) GetServer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, serverResponse{Code: http.StatusOK, Server: h.store.Current()})
}

type setServerReq struct {
	Server string `json:"server"`
}

// SetServer handles POST /setServer.
func (h *Handler) SetServer(w http.ResponseWriter, r *http.Request) {
	var req setServerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.store.Set(req.Server); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid server URL")
		return
	}
	h.logger.Printf("active server set to %s", req.Server)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "DNS updated",
		"server":  req.Server,
	})
}

// Failover handles POST /failover. It pins the backup endpoint no matter
// what the current value is.
func (h *Handler) Failover(w http.ResponseWriter, r *http.Request) {
	server := h.store.Failover()
	h.logger.Printf("failover triggered, switching to %s", server)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Failover activated",
		"server":  server,
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
