package review_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartq/internal/auth"
	"smartq/internal/logger"
	"smartq/internal/review"
	"smartq/internal/utils"
)

type Handler struct {
	ReviewService *review.Service
	Logger        *logger.Logger
}

func NewHandler(reviewService *review.Service, log *logger.Logger) *Handler {
	return &Handler{ReviewService: reviewService, Logger: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	rev, err := h.ReviewService.CreateReview(r.Context(), identity, salonID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidRating):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, review.ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Salon not found", err.Error()))
		default:
			h.Logger.Error("API", fmt.Sprintf("CreateReview: %v", err))
			h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not create review", err.Error()))
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Review created", rev))
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")

	reviews, err := h.ReviewService.ListReviews(r.Context(), salonID)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Salon not found", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ListReviews: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Could not list reviews", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Reviews", reviews))
}
