package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartq/internal/analytics"
	"smartq/internal/logger"
	"smartq/internal/queue"
	"smartq/internal/utils"
)

type Handler struct {
	AnalyticsService *analytics.Service
	Logger           *logger.Logger
}

func NewHandler(analyticsService *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{AnalyticsService: analyticsService, Logger: log}
}

func (h *Handler) GetSalonAnalytics(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")
	h.Logger.Info("API", fmt.Sprintf("GetSalonAnalytics: salonID=%s", salonID))

	snapshot, err := h.AnalyticsService.GetSalonAnalytics(r.Context(), salonID)
	if err != nil {
		if errors.Is(err, queue.ErrNotFound) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(utils.ErrorResponse("Salon not found", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetSalonAnalytics: %v", err))
		http.Error(w, "Could not compute analytics: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(utils.SuccessResponse("Salon analytics", snapshot)); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSalonAnalytics: failed to encode response: %v", err))
	}
}
