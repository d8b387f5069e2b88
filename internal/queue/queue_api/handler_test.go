package queue_api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartq/internal/auth"
	"smartq/internal/logger"
	"smartq/internal/models"
	"smartq/internal/queue"
	"smartq/internal/utils"
)

// In-memory store backing the real queue service in handler tests.

type fakeDB struct {
	entries  map[string]*models.QueueEntry
	salons   map[string]*models.Salon
	services map[string]*models.Service
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		entries:  make(map[string]*models.QueueEntry),
		salons:   make(map[string]*models.Salon),
		services: make(map[string]*models.Service),
	}
}

func (f *fakeDB) CreateEntry(ctx context.Context, entry models.QueueEntry) error {
	f.entries[entry.ID] = &entry
	return nil
}

func (f *fakeDB) GetEntryByID(ctx context.Context, id string) (*models.QueueEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (f *fakeDB) UpdateEntry(ctx context.Context, entry models.QueueEntry) error {
	f.entries[entry.ID] = &entry
	return nil
}

func (f *fakeDB) DeleteEntry(ctx context.Context, id string) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeDB) ListBySalon(ctx context.Context, salonID string) ([]models.QueueEntry, error) {
	var out []models.QueueEntry
	for _, e := range f.entries {
		if e.SalonID == salonID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeDB) HasActiveEntry(ctx context.Context, salonID, customerID string) (bool, error) {
	for _, e := range f.entries {
		if e.SalonID == salonID && e.CustomerID == customerID && e.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) CountWaiting(ctx context.Context, salonID string) (int, error) {
	count := 0
	for _, e := range f.entries {
		if e.SalonID == salonID && e.Status == models.StatusWaiting {
			count++
		}
	}
	return count, nil
}

func (f *fakeDB) GetSalonByID(ctx context.Context, id string) (*models.Salon, error) {
	return f.salons[id], nil
}

func (f *fakeDB) GetServiceByID(ctx context.Context, id string) (*models.Service, error) {
	return f.services[id], nil
}

func setupRouter(t *testing.T) (*chi.Mux, *fakeDB) {
	db := newFakeDB()
	db.salons["salon-1"] = &models.Salon{ID: "salon-1", OwnerID: "owner-1", Name: "Fade Factory"}
	db.services["service-1"] = &models.Service{ID: "service-1", SalonID: "salon-1", Name: "Haircut", Price: 25, DurationMinutes: 30}

	log := logger.NewLogger()
	t.Cleanup(log.Close)

	svc := queue.NewService(db, nil, nil, nil, nil, log, 15)
	handler := NewHandler(svc, log)

	r := chi.NewRouter()
	r.Post("/api/queue/{salonID}/join", handler.JoinQueue)
	r.Get("/api/queue/{salonID}/me", handler.GetMyPosition)
	r.Get("/api/salons/{salonID}/queue", handler.GetSalonQueue)
	r.Patch("/api/queue/entries/{entryID}/status", handler.UpdateStatus)
	r.Delete("/api/queue/entries/{entryID}", handler.LeaveQueue)

	return r, db
}

func asIdentity(req *http.Request, identity models.Identity) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), identity))
}

var (
	customer = models.Identity{UserID: "alice", Role: models.RoleCustomer}
	owner    = models.Identity{UserID: "owner-1", Role: models.RoleSalonOwner}
)

func joinQueue(t *testing.T, router *chi.Mux, identity models.Identity, salonID string) queue.JoinResult {
	body := bytes.NewBufferString(`{"service_id":"service-1"}`)
	req := asIdentity(httptest.NewRequest(http.MethodPost, "/api/queue/"+salonID+"/join", body), identity)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data queue.JoinResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func TestJoinQueueHandler(t *testing.T) {
	router, _ := setupRouter(t)

	result := joinQueue(t, router, customer, "salon-1")
	assert.Equal(t, 1, result.Entry.Position)
	assert.Equal(t, models.StatusWaiting, result.Entry.Status)
	assert.Equal(t, 1, result.Position.Rank)
}

func TestJoinQueueHandler_Validation(t *testing.T) {
	router, _ := setupRouter(t)

	// No identity in context.
	req := httptest.NewRequest(http.MethodPost, "/api/queue/salon-1/join", bytes.NewBufferString(`{"service_id":"service-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Missing service_id.
	req = asIdentity(httptest.NewRequest(http.MethodPost, "/api/queue/salon-1/join", bytes.NewBufferString(`{}`)), customer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed body.
	req = asIdentity(httptest.NewRequest(http.MethodPost, "/api/queue/salon-1/join", bytes.NewBufferString(`not json`)), customer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown salon.
	req = asIdentity(httptest.NewRequest(http.MethodPost, "/api/queue/no-such-salon/join", bytes.NewBufferString(`{"service_id":"service-1"}`)), customer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinQueueHandler_DuplicateConflict(t *testing.T) {
	router, _ := setupRouter(t)

	joinQueue(t, router, customer, "salon-1")

	req := asIdentity(httptest.NewRequest(http.MethodPost, "/api/queue/salon-1/join", bytes.NewBufferString(`{"service_id":"service-1"}`)), customer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestGetMyPositionHandler(t *testing.T) {
	router, _ := setupRouter(t)

	// Not in the queue yet.
	req := asIdentity(httptest.NewRequest(http.MethodGet, "/api/queue/salon-1/me", nil), customer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	joinQueue(t, router, customer, "salon-1")

	req = asIdentity(httptest.NewRequest(http.MethodGet, "/api/queue/salon-1/me", nil), customer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.QueuePosition `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Rank)
	assert.Equal(t, 1, resp.Data.WaitingCount)
}

func TestGetSalonQueueHandler(t *testing.T) {
	router, _ := setupRouter(t)

	joinQueue(t, router, customer, "salon-1")

	req := httptest.NewRequest(http.MethodGet, "/api/salons/salon-1/queue", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.QueueSnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.WaitingCount)
	assert.Equal(t, 15, resp.Data.EstimatedMinutes)

	req = httptest.NewRequest(http.MethodGet, "/api/salons/no-such-salon/queue", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatusHandler(t *testing.T) {
	router, _ := setupRouter(t)

	result := joinQueue(t, router, customer, "salon-1")

	patch := func(identity models.Identity, status string) *httptest.ResponseRecorder {
		body := bytes.NewBufferString(`{"status":"` + status + `"}`)
		req := asIdentity(httptest.NewRequest(http.MethodPatch, "/api/queue/entries/"+result.Entry.ID+"/status", body), identity)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// Customers cannot drive the status machine.
	rec := patch(customer, models.StatusInProgress)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = patch(owner, models.StatusInProgress)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.QueueEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusInProgress, resp.Data.Status)

	// Invalid transition.
	rec = patch(owner, models.StatusNoShow)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = patch(owner, models.StatusCompleted)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLeaveQueueHandler(t *testing.T) {
	router, db := setupRouter(t)

	result := joinQueue(t, router, customer, "salon-1")

	// A stranger cannot remove the entry.
	stranger := models.Identity{UserID: "mallory", Role: models.RoleCustomer}
	req := asIdentity(httptest.NewRequest(http.MethodDelete, "/api/queue/entries/"+result.Entry.ID, nil), stranger)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = asIdentity(httptest.NewRequest(http.MethodDelete, "/api/queue/entries/"+result.Entry.ID, nil), customer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, db.entries)

	// Already gone.
	req = asIdentity(httptest.NewRequest(http.MethodDelete, "/api/queue/entries/"+result.Entry.ID, nil), customer)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
