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

func (d *DB) CreateEntry(ctx context.Context, entry models.QueueEntry) error {
	_, err := d.Bun.NewInsert().Model(&entry).Exec(ctx)
	return err
}

func (d *DB) GetEntryByID(ctx context.Context, id string) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	err := d.Bun.NewSelect().
		Model(&entry).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (d *DB) UpdateEntry(ctx context.Context, entry models.QueueEntry) error {
	_, err := d.Bun.NewUpdate().
		Model(&entry).
		Column("status", "estimated_wait_time", "updated_at").
		Where("id = ?", entry.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteEntry(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.QueueEntry)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListBySalon returns a salon's entries in stable creation order, which
// is the order the position calculation ranks by.
func (d *DB) ListBySalon(ctx context.Context, salonID string) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := d.Bun.NewSelect().
		Model(&entries).
		Where("salon_id = ?", salonID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// HasActiveEntry reports whether the customer already holds a waiting or
// in-progress entry for the salon.
func (d *DB) HasActiveEntry(ctx context.Context, salonID, customerID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.QueueEntry)(nil)).
		Where("salon_id = ?", salonID).
		Where("customer_id = ?", customerID).
		Where("status IN (?)", bun.In([]string{models.StatusWaiting, models.StatusInProgress})).
		Exists(ctx)
}

func (d *DB) CountWaiting(ctx context.Context, salonID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.QueueEntry)(nil)).
		Where("salon_id = ?", salonID).
		Where("status = ?", models.StatusWaiting).
		Count(ctx)
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

func (d *DB) GetServiceByID(ctx context.Context, id string) (*models.Service, error) {
	var svc models.Service
	err := d.Bun.NewSelect().
		Model(&svc).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}
