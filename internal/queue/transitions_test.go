package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartq/internal/models"
)

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(models.StatusWaiting))
	assert.True(t, ValidStatus(models.StatusInProgress))
	assert.True(t, ValidStatus(models.StatusCompleted))
	assert.True(t, ValidStatus(models.StatusNoShow))
	assert.False(t, ValidStatus("cancelled"))
	assert.False(t, ValidStatus(""))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.StatusWaiting, models.StatusInProgress, true},
		{models.StatusWaiting, models.StatusNoShow, true},
		{models.StatusInProgress, models.StatusCompleted, true},

		{models.StatusWaiting, models.StatusCompleted, false},
		{models.StatusInProgress, models.StatusNoShow, false},
		{models.StatusInProgress, models.StatusWaiting, false},
		{models.StatusCompleted, models.StatusWaiting, false},
		{models.StatusCompleted, models.StatusInProgress, false},
		{models.StatusNoShow, models.StatusWaiting, false},
		{models.StatusNoShow, models.StatusInProgress, false},

		// Same-state moves are rejected as no-ops.
		{models.StatusWaiting, models.StatusWaiting, false},
		{models.StatusCompleted, models.StatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
