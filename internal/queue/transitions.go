package queue

import "smartq/internal/models"

// Allowed forward transitions. Completed and no_show are terminal;
// same-state transitions are rejected as no-ops.
var allowedTransitions = map[string][]string{
	models.StatusWaiting:    {models.StatusInProgress, models.StatusNoShow},
	models.StatusInProgress: {models.StatusCompleted},
	models.StatusCompleted:  {},
	models.StatusNoShow:     {},
}

// ValidStatus reports whether s is a member of the status enumeration.
func ValidStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether an entry may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
