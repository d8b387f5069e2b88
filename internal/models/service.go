package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID      string  `bun:"id,pk" json:"id"`
	SalonID string  `bun:"salon_id,notnull" json:"salon_id"`
	Name    string  `bun:"name,notnull" json:"name"`
	Price   float64 `bun:"price,notnull" json:"price"`
	// DurationMinutes feeds the per-entry advisory wait estimate.
	DurationMinutes int       `bun:"duration_minutes,nullzero" json:"duration_minutes,omitempty"`
	Active          bool      `bun:"active,notnull,default:true" json:"active"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
