package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Queue entry statuses. Waiting and InProgress count as "active";
// Completed and NoShow are terminal.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusNoShow     = "no_show"
)

// RankBeingServed is reported instead of a numeric rank while the
// customer's entry is in progress.
const RankBeingServed = 0

type QueueEntry struct {
	bun.BaseModel `bun:"table:queue_entries"`

	ID         string `bun:"id,pk" json:"id"`
	SalonID    string `bun:"salon_id,notnull" json:"salon_id"`
	CustomerID string `bun:"customer_id,notnull" json:"customer_id"`
	ServiceID  string `bun:"service_id,notnull" json:"service_id"`
	Status     string `bun:"status,notnull" json:"status"`

	// Position is the ticket number stamped at creation (waiting count + 1).
	// It is never renumbered; live rank is always recomputed from the
	// creation-ordered scan.
	Position int `bun:"position,notnull" json:"position"`

	// EstimatedWaitTime is advisory, in minutes.
	EstimatedWaitTime int       `bun:"estimated_wait_time,nullzero" json:"estimated_wait_time,omitempty"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// IsActive reports whether the entry still occupies the customer's
// one-active-entry-per-salon slot.
func (e *QueueEntry) IsActive() bool {
	return e.Status == StatusWaiting || e.Status == StatusInProgress
}

// QueuePosition is the live view of one customer's place in a salon queue.
type QueuePosition struct {
	Rank             int `json:"rank"`
	WaitingCount     int `json:"waiting_count"`
	EstimatedMinutes int `json:"estimated_minutes"`
}

// QueueSnapshot is the payload broadcast to subscribers after a mutation.
type QueueSnapshot struct {
	SalonID          string       `json:"salon_id"`
	Entries          []QueueEntry `json:"entries"`
	WaitingCount     int          `json:"waiting_count"`
	EstimatedMinutes int          `json:"estimated_minutes"`
	GeneratedAt      time.Time    `json:"generated_at"`
}
