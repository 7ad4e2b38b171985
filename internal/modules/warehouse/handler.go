package warehouse

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes warehouse and zone admin HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/warehouses", func(r chi.Router) {
		r.Post("/", h.createWarehouse)              // POST   /api/v1/warehouses
		r.Get("/", h.listWarehouses)                // GET    /api/v1/warehouses
		r.Get("/{id}", h.getWarehouse)              // GET    /api/v1/warehouses/{id}
		r.Patch("/{id}/status", h.updateStatus)     // PATCH  /api/v1/warehouses/{id}/status
		r.Delete("/{id}", h.deleteWarehouse)        // DELETE /api/v1/warehouses/{id}
		r.Post("/{id}/zones", h.createZone)         // POST   /api/v1/warehouses/{id}/zones
		r.Get("/{id}/zones", h.listZones)           // GET    /api/v1/warehouses/{id}/zones
	})
	r.Delete("/api/v1/zones/{id}", h.deleteZone)    // DELETE /api/v1/zones/{id}
}

func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var req CreateWarehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	wh, err := h.service.CreateWarehouse(r.Context(), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, wh)
}

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.service.ListWarehouses(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, warehouses)
}

func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	wh, err := h.service.GetWarehouse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, wh)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	wh, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, wh)
}

func (h *Handler) deleteWarehouse(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteWarehouse(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createZone(w http.ResponseWriter, r *http.Request) {
	var req CreateZoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	z, err := h.service.CreateZone(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, z)
}

func (h *Handler) listZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.service.ListZones(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, zones)
}

func (h *Handler) deleteZone(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteZone(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	msg := err.Error()
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "pattern") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
