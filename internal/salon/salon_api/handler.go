package salon_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartq/internal/auth"
	"smartq/internal/logger"
	"smartq/internal/models"
	"smartq/internal/salon"
	"smartq/internal/utils"
)

type Handler struct {
	SalonService *salon.Service
	Logger       *logger.Logger
}

func NewHandler(salonService *salon.Service, log *logger.Logger) *Handler {
	return &Handler{SalonService: salonService, Logger: log}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, salon.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, salon.ErrNotAuthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", message, err))
	}
	h.writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
	}
	return identity, ok
}

func (h *Handler) ListSalons(w http.ResponseWriter, r *http.Request) {
	listings, err := h.SalonService.ListSalons(r.Context())
	if err != nil {
		h.writeError(w, "Could not list salons", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Salons", listings))
}

func (h *Handler) GetSalon(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")

	sal, err := h.SalonService.GetSalon(r.Context(), salonID)
	if err != nil {
		h.writeError(w, "Salon not found", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Salon", sal))
}

func (h *Handler) CreateSalon(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	sal, err := h.SalonService.CreateSalon(r.Context(), identity, req.Name, req.Address, req.Phone)
	if err != nil {
		h.writeError(w, "Could not create salon", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateSalon: %s created by %s", sal.ID, identity.UserID))
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Salon created", sal))
}

func (h *Handler) UpdateSalon(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	salonID := chi.URLParam(r, "salonID")

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Phone   string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	sal, err := h.SalonService.UpdateSalon(r.Context(), identity, models.Salon{
		ID:      salonID,
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		h.writeError(w, "Could not update salon", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Salon updated", sal))
}

func (h *Handler) DeleteSalon(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	salonID := chi.URLParam(r, "salonID")

	if err := h.SalonService.DeleteSalon(r.Context(), identity, salonID); err != nil {
		h.writeError(w, "Could not delete salon", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")

	services, err := h.SalonService.ListServices(r.Context(), salonID)
	if err != nil {
		h.writeError(w, "Could not list services", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Services", services))
}

func (h *Handler) AddService(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	salonID := chi.URLParam(r, "salonID")

	var req struct {
		Name            string  `json:"name"`
		Price           float64 `json:"price"`
		DurationMinutes int     `json:"duration_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	svc, err := h.SalonService.AddService(r.Context(), identity, salonID, req.Name, req.Price, req.DurationMinutes)
	if err != nil {
		h.writeError(w, "Could not create service", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Service created", svc))
}

func (h *Handler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	salonID := chi.URLParam(r, "salonID")

	var req struct {
		Title           string `json:"title"`
		DiscountPercent int    `json:"discount_percent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DiscountPercent <= 0 || req.DiscountPercent > 100 {
		http.Error(w, "discount_percent must be in 1..100", http.StatusBadRequest)
		return
	}

	offer, err := h.SalonService.CreateOffer(r.Context(), identity, salonID, req.Title, req.DiscountPercent)
	if err != nil {
		h.writeError(w, "Could not create offer", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Offer created", offer))
}

func (h *Handler) SetOfferActive(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	offerID := chi.URLParam(r, "offerID")

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	offer, err := h.SalonService.SetOfferActive(r.Context(), identity, offerID, req.Active)
	if err != nil {
		h.writeError(w, "Could not update offer", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Offer updated", offer))
}
