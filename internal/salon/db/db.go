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

// ---------------- SALONS ----------------

func (d *DB) CreateSalon(ctx context.Context, salon models.Salon) error {
	_, err := d.Bun.NewInsert().Model(&salon).Exec(ctx)
	return err
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

func (d *DB) UpdateSalon(ctx context.Context, salon models.Salon) error {
	_, err := d.Bun.NewUpdate().
		Model(&salon).
		Column("name", "address", "phone", "rating").
		Where("id = ?", salon.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteSalon(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Salon)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) ListSalons(ctx context.Context) ([]models.Salon, error) {
	var salons []models.Salon
	err := d.Bun.NewSelect().
		Model(&salons).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return salons, nil
}

// ---------------- SERVICES ----------------

func (d *DB) CreateService(ctx context.Context, svc models.Service) error {
	_, err := d.Bun.NewInsert().Model(&svc).Exec(ctx)
	return err
}

func (d *DB) ListServicesBySalon(ctx context.Context, salonID string) ([]models.Service, error) {
	var services []models.Service
	err := d.Bun.NewSelect().
		Model(&services).
		Where("salon_id = ?", salonID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return services, nil
}

// ---------------- OFFERS ----------------

func (d *DB) CreateOffer(ctx context.Context, offer models.Offer) error {
	_, err := d.Bun.NewInsert().Model(&offer).Exec(ctx)
	return err
}

func (d *DB) GetOfferByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	err := d.Bun.NewSelect().
		Model(&offer).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (d *DB) UpdateOffer(ctx context.Context, offer models.Offer) error {
	_, err := d.Bun.NewUpdate().
		Model(&offer).
		Column("title", "discount_percent", "active").
		Where("id = ?", offer.ID).
		Exec(ctx)
	return err
}

func (d *DB) ListOffersBySalon(ctx context.Context, salonID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := d.Bun.NewSelect().
		Model(&offers).
		Where("salon_id = ?", salonID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// ---------------- QUEUE DERIVED ----------------

func (d *DB) CountWaiting(ctx context.Context, salonID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.QueueEntry)(nil)).
		Where("salon_id = ?", salonID).
		Where("status = ?", models.StatusWaiting).
		Count(ctx)
}
