package broadcast

import (
	"encoding/json"
	"sync"

	"smartq/internal/models"
)

// Hub is the per-salon topic registry. A connection only becomes a
// subscriber after an explicit authenticate handshake; subscribers are
// keyed by customer identity, not by transport connection. Delivery is
// at-most-once and fire-and-forget: a slow or dead subscriber is
// skipped, never retried, and a late joiner has to use the synchronous
// read path to catch up.
type Hub struct {
	mu     sync.RWMutex
	salons map[string]map[*Subscriber]struct{}
}

// Subscriber is one authenticated listener on a salon's channel.
type Subscriber struct {
	CustomerID string
	SalonID    string
	Send       chan models.QueueSnapshot
}

// AuthenticateMessage is the handshake a socket must send before it
// receives anything.
type AuthenticateMessage struct {
	Action  string `json:"action"`
	Token   string `json:"token"`
	SalonID string `json:"salon_id"`
}

// ParseAuthenticate decodes a handshake frame. Returns false for
// anything that is not a well-formed authenticate action.
func ParseAuthenticate(data []byte) (AuthenticateMessage, bool) {
	var msg AuthenticateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return AuthenticateMessage{}, false
	}
	if msg.Action != "authenticate" || msg.SalonID == "" {
		return AuthenticateMessage{}, false
	}
	return msg, true
}

func New() *Hub {
	return &Hub{salons: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers an authenticated listener for a salon and returns
// its subscriber handle. The send channel is buffered; a full buffer
// means dropped snapshots for that listener only.
func (h *Hub) Subscribe(salonID, customerID string) *Subscriber {
	sub := &Subscriber{
		CustomerID: customerID,
		SalonID:    salonID,
		Send:       make(chan models.QueueSnapshot, 10),
	}

	h.mu.Lock()
	if h.salons[salonID] == nil {
		h.salons[salonID] = make(map[*Subscriber]struct{})
	}
	h.salons[salonID][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Unsubscribe removes a listener and closes its channel. Safe to call
// once per subscriber.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.salons[sub.SalonID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.Send)

	if len(subs) == 0 {
		delete(h.salons, sub.SalonID)
	}
}

// PublishQueue fans a snapshot out to every subscriber of the salon.
// Sends are non-blocking so one stuck listener cannot hold up the rest.
// Sending happens under the read lock; Unsubscribe closes channels under
// the write lock, so a send can never hit a closed channel.
func (h *Hub) PublishQueue(snapshot models.QueueSnapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.salons[snapshot.SalonID] {
		select {
		case sub.Send <- snapshot:
		default:
			// Buffer full, skip this listener for this event.
		}
	}
}

// SubscriberCount returns how many listeners a salon currently has.
func (h *Hub) SubscriberCount(salonID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.salons[salonID])
}
