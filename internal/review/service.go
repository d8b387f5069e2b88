package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartq/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

type DBLayer interface {
	CreateReview(ctx context.Context, review models.Review) error
	ListBySalon(ctx context.Context, salonID string) ([]models.Review, error)
	GetSalonByID(ctx context.Context, id string) (*models.Salon, error)
	SetSalonRating(ctx context.Context, salonID string, rating float64) error
}

type logSink interface {
	Warn(category, message string)
}

// Service stores reviews and keeps the salon's denormalized rating in
// step. The reconciliation is a separate write after the review commit:
// eventually consistent, and a failed reconciliation leaves a stale
// cache rather than a lost review.
type Service struct {
	DB     DBLayer
	Logger logSink
}

func NewService(db DBLayer, log logSink) *Service {
	return &Service{DB: db, Logger: log}
}

func (s *Service) CreateReview(ctx context.Context, identity models.Identity, salonID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	salon, err := s.DB.GetSalonByID(ctx, salonID)
	if err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", salonID, ErrNotFound)
	}

	review := models.Review{
		ID:         uuid.New().String(),
		SalonID:    salonID,
		CustomerID: identity.UserID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now(),
	}
	if err := s.DB.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.ReconcileRating(ctx, salonID); err != nil && s.Logger != nil {
		s.Logger.Warn("REVIEW", fmt.Sprintf("rating reconciliation for salon %s failed: %v", salonID, err))
	}

	return &review, nil
}

func (s *Service) ListReviews(ctx context.Context, salonID string) ([]models.Review, error) {
	if salon, err := s.DB.GetSalonByID(ctx, salonID); err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", salonID, ErrNotFound)
	}
	reviews, err := s.DB.ListBySalon(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for salon %s: %w", salonID, err)
	}
	return reviews, nil
}

// ReconcileRating recomputes the salon's mean rating from the full
// review set and writes it back to the salon row.
func (s *Service) ReconcileRating(ctx context.Context, salonID string) error {
	reviews, err := s.DB.ListBySalon(ctx, salonID)
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}

	var rating float64
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		rating = float64(total) / float64(len(reviews))
	}

	return s.DB.SetSalonRating(ctx, salonID, rating)
}
