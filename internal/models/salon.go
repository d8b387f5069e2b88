package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Salon struct {
	bun.BaseModel `bun:"table:salons"`

	ID      string `bun:"id,pk" json:"id"`
	OwnerID string `bun:"owner_id,notnull" json:"owner_id"`
	Name    string `bun:"name,notnull" json:"name"`
	Address string `bun:"address,nullzero" json:"address,omitempty"`
	Phone   string `bun:"phone,nullzero" json:"phone,omitempty"`

	// Rating is a denormalized mean of review ratings, reconciled after
	// each review write. Not transactional with the review itself.
	Rating    float64   `bun:"rating,nullzero" json:"rating"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// SalonListing is the read model for salon search results: the stored
// row plus queue-derived fields and the best active offer.
type SalonListing struct {
	Salon
	QueueCount       int    `json:"queue_count"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	BestDiscount     int    `json:"best_discount,omitempty"`
	BestOfferTitle   string `json:"best_offer_title,omitempty"`
}

type Offer struct {
	bun.BaseModel `bun:"table:offers"`

	ID              string    `bun:"id,pk" json:"id"`
	SalonID         string    `bun:"salon_id,notnull" json:"salon_id"`
	Title           string    `bun:"title,notnull" json:"title"`
	DiscountPercent int       `bun:"discount_percent,notnull" json:"discount_percent"`
	Active          bool      `bun:"active,notnull,default:true" json:"active"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
