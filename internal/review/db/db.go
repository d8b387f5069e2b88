package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"smartq/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateReview(ctx context.Context, review models.Review) error {
	_, err := d.Bun.NewInsert().Model(&review).Exec(ctx)
	return err
}

func (d *DB) ListBySalon(ctx context.Context, salonID string) ([]models.Review, error) {
	var reviews []models.Review
	err := d.Bun.NewSelect().
		Model(&reviews).
		Where("salon_id = ?", salonID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return reviews, nil
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

func (d *DB) SetSalonRating(ctx context.Context, salonID string, rating float64) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Salon)(nil)).
		Set("rating = ?", rating).
		Where("id = ?", salonID).
		Exec(ctx)
	return err
}
