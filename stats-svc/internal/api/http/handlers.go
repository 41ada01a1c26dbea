package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kebab-orders/pkg/domain"
	"kebab-orders/stats-svc/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Stats service.StatsServiceInterface
}

func NewHandler(svc service.StatsServiceInterface) *Handler {
	return &Handler{Stats: svc}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/api/stats/daily", h.getDaily).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "stats-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getDaily(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Daily(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
