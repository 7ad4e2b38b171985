package rates

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the carrier-service rate callback. It answers HTTP 200
// with a rates body for every request the checkout sends, including
// malformed ones: the platform may abandon the cart on any error status.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/rates", h.quote) // POST /api/v1/rates
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An undecodable body carries no destination; same path as a
		// missing postcode.
		req = RateRequest{}
	}
	resp := h.service.Quote(r.Context(), req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
