package queue_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartq/internal/auth"
	"smartq/internal/logger"
	"smartq/internal/queue"
	"smartq/internal/utils"
)

type Handler struct {
	QueueService *queue.Service
	Logger       *logger.Logger
}

func NewHandler(queueService *queue.Service, log *logger.Logger) *Handler {
	return &Handler{
		QueueService: queueService,
		Logger:       log,
	}
}

// statusFromError maps the queue package's typed failures to HTTP codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, queue.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, queue.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, queue.ErrDuplicateActiveEntry):
		return http.StatusConflict
	case errors.Is(err, queue.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
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
	} else {
		h.Logger.Warn("API", fmt.Sprintf("%s: %v", message, err))
	}
	h.writeJSON(w, status, utils.ErrorResponse(message, err.Error()))
}

func (h *Handler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")
	h.Logger.Info("API", fmt.Sprintf("JoinQueue: salonID=%s", salonID))

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req struct {
		ServiceID string `json:"service_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ServiceID == "" {
		http.Error(w, "service_id is required", http.StatusBadRequest)
		return
	}

	result, err := h.QueueService.JoinQueue(r.Context(), identity, salonID, req.ServiceID)
	if err != nil {
		h.writeError(w, "Could not join queue", err)
		return
	}

	h.Logger.LogQueue("JOIN", result.Entry.ID, fmt.Sprintf("customer %s joined salon %s at position %d", identity.UserID, salonID, result.Entry.Position))
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Joined queue", result))
}

func (h *Handler) GetMyPosition(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	position, err := h.QueueService.GetMyPosition(r.Context(), identity.UserID, salonID)
	if err != nil {
		h.writeError(w, "Could not compute position", err)
		return
	}
	if position == nil {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Not in queue", "no active entry for this salon"))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Current position", position))
}

func (h *Handler) GetSalonQueue(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")

	snapshot, err := h.QueueService.SalonQueue(r.Context(), salonID)
	if err != nil {
		h.writeError(w, "Could not load queue", err)
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Salon queue", snapshot))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	h.Logger.Info("API", fmt.Sprintf("UpdateStatus: entryID=%s", entryID))

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.QueueService.UpdateStatus(r.Context(), identity, entryID, req.Status)
	if err != nil {
		h.writeError(w, "Could not update status", err)
		return
	}

	h.Logger.LogQueue("STATUS", entry.ID, fmt.Sprintf("now %s", entry.Status))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Status updated", entry))
}

func (h *Handler) LeaveQueue(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	h.Logger.Info("API", fmt.Sprintf("LeaveQueue: entryID=%s", entryID))

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	if err := h.QueueService.LeaveQueue(r.Context(), identity, entryID); err != nil {
		h.writeError(w, "Could not leave queue", err)
		return
	}

	h.Logger.LogQueue("LEAVE", entryID, "entry removed")
	w.WriteHeader(http.StatusNoContent)
}
