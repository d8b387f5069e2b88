package queue_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartq/internal/auth"
	"smartq/internal/broadcast"
	"smartq/internal/logger"
)

// SSEHandler streams queue snapshots for salon dashboards over
// Server-Sent Events. It shares the broadcast hub with the websocket
// channel; authentication comes from the regular bearer middleware
// instead of an in-band handshake.
type SSEHandler struct {
	Hub    *broadcast.Hub
	Logger *logger.Logger
}

func NewSSEHandler(hub *broadcast.Hub, log *logger.Logger) *SSEHandler {
	return &SSEHandler{Hub: hub, Logger: log}
}

func (h *SSEHandler) HandleQueueStream(w http.ResponseWriter, r *http.Request) {
	salonID := chi.URLParam(r, "salonID")
	if salonID == "" {
		http.Error(w, "Salon ID is required", http.StatusBadRequest)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ctx := r.Context()
	sub := h.Hub.Subscribe(salonID, identity.UserID)
	defer h.Hub.Unsubscribe(sub)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"salon_id\":\"%s\"}\n\n", salonID)
	flusher.Flush()

	h.Logger.LogBroadcast(salonID, fmt.Sprintf("SSE client %s connected", identity.UserID))

	for {
		select {
		case snapshot, ok := <-sub.Send:
			if !ok {
				return
			}

			jsonData, err := json.Marshal(snapshot)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize queue snapshot: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: queue\ndata: %s\n\n", jsonData)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("SSE client %s disconnected from salon %s", identity.UserID, salonID))
			return
		}
	}
}
