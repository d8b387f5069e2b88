package analytics

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"smartq/internal/models"
)

// DB fetches the record sets the snapshot is computed from.
type DB struct {
	Bun *bun.DB
}

func NewDB(db *bun.DB) *DB {
	return &DB{Bun: db}
}

func (d *DB) GetSalonByID(ctx context.Context, id string) (*models.Salon, error) {
	var salon models.Salon
	err := d.Bun.NewSelect().
		Model(&salon).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &salon, nil
}

func (d *DB) GetEntriesBySalon(ctx context.Context, salonID string) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := d.Bun.NewSelect().
		Model(&entries).
		Where("salon_id = ?", salonID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	return entries, err
}

func (d *DB) GetServicesBySalon(ctx context.Context, salonID string) ([]models.Service, error) {
	var services []models.Service
	err := d.Bun.NewSelect().
		Model(&services).
		Where("salon_id = ?", salonID).
		Order("created_at ASC").
		Scan(ctx)
	return services, err
}

func (d *DB) GetReviewsBySalon(ctx context.Context, salonID string) ([]models.Review, error) {
	var reviews []models.Review
	err := d.Bun.NewSelect().
		Model(&reviews).
		Where("salon_id = ?", salonID).
		Order("created_at ASC").
		Scan(ctx)
	return reviews, err
}
