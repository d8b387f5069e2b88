package queue

import (
	"sort"
	"time"

	"smartq/internal/models"
)

// Live position math. Ranks are always derived from the creation-ordered
// entry set; the ticket position stored on each entry never participates.

// sortByCreation orders entries by creation time, id as tie-break. The
// store already returns creation order, this keeps the calculation
// correct for callers that assembled the slice themselves.
func sortByCreation(entries []models.QueueEntry) []models.QueueEntry {
	sorted := make([]models.QueueEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

// WaitingEntries filters to status=waiting, preserving creation order.
func WaitingEntries(entries []models.QueueEntry) []models.QueueEntry {
	waiting := make([]models.QueueEntry, 0, len(entries))
	for _, e := range sortByCreation(entries) {
		if e.Status == models.StatusWaiting {
			waiting = append(waiting, e)
		}
	}
	return waiting
}

// EstimateWait converts a waiting count into minutes using the flat
// per-customer slot assumption.
func EstimateWait(waitingCount, slotMinutes int) int {
	return waitingCount * slotMinutes
}

// PositionFor computes one customer's live position within a salon's
// entry set. Returns nil when the customer has no active entry. An
// in-progress entry reports the being-served sentinel rank.
func PositionFor(entries []models.QueueEntry, customerID string, slotMinutes int) *models.QueuePosition {
	waiting := WaitingEntries(entries)
	waitingCount := len(waiting)

	for _, e := range sortByCreation(entries) {
		if e.CustomerID == customerID && e.Status == models.StatusInProgress {
			return &models.QueuePosition{
				Rank:             models.RankBeingServed,
				WaitingCount:     waitingCount,
				EstimatedMinutes: 0,
			}
		}
	}

	for i, e := range waiting {
		if e.CustomerID == customerID {
			rank := i + 1
			return &models.QueuePosition{
				Rank:             rank,
				WaitingCount:     waitingCount,
				EstimatedMinutes: EstimateWait(rank-1, slotMinutes),
			}
		}
	}

	return nil
}

// BuildSnapshot assembles the broadcast payload for a salon: all active
// entries in creation order plus the derived aggregates.
func BuildSnapshot(salonID string, entries []models.QueueEntry, slotMinutes int) models.QueueSnapshot {
	active := make([]models.QueueEntry, 0, len(entries))
	for _, e := range sortByCreation(entries) {
		if e.IsActive() {
			active = append(active, e)
		}
	}

	waitingCount := len(WaitingEntries(entries))
	return models.QueueSnapshot{
		SalonID:          salonID,
		Entries:          active,
		WaitingCount:     waitingCount,
		EstimatedMinutes: EstimateWait(waitingCount, slotMinutes),
		GeneratedAt:      time.Now(),
	}
}
