package queue_api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartq/internal/broadcast"
	"smartq/internal/logger"
	"smartq/internal/models"
)

func TestQueueStream(t *testing.T) {
	hub := broadcast.New()
	log := logger.NewLogger()
	t.Cleanup(log.Close)

	handler := NewSSEHandler(hub, log)

	r := chi.NewRouter()
	r.Get("/api/salons/{salonID}/queue/stream", handler.HandleQueueStream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/salons/salon-1/queue/stream", nil).WithContext(ctx)
	req = asIdentity(req, models.Identity{UserID: "owner-1", Role: models.RoleSalonOwner})
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool {
		return hub.SubscriberCount("salon-1") == 1
	}, time.Second, 10*time.Millisecond)

	hub.PublishQueue(models.QueueSnapshot{SalonID: "salon-1", WaitingCount: 4})

	// Give the handler a moment to flush the event before tearing down.
	require.Eventually(t, func() bool {
		return strings.Contains(rec.Body.String(), "event: queue")
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, `"waiting_count":4`)
	assert.Equal(t, 0, hub.SubscriberCount("salon-1"))
}

func TestQueueStream_RequiresIdentity(t *testing.T) {
	hub := broadcast.New()
	log := logger.NewLogger()
	t.Cleanup(log.Close)

	handler := NewSSEHandler(hub, log)

	r := chi.NewRouter()
	r.Get("/api/salons/{salonID}/queue/stream", handler.HandleQueueStream)

	req := httptest.NewRequest(http.MethodGet, "/api/salons/salon-1/queue/stream", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
