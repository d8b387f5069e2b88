package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Review struct {
	bun.BaseModel `bun:"table:reviews"`

	ID         string    `bun:"id,pk" json:"id"`
	SalonID    string    `bun:"salon_id,notnull" json:"salon_id"`
	CustomerID string    `bun:"customer_id,notnull" json:"customer_id"`
	Rating     int       `bun:"rating,notnull" json:"rating"`
	Comment    string    `bun:"comment,nullzero" json:"comment,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
