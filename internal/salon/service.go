package salon

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"smartq/internal/models"
	"smartq/internal/queue"
)

type DBLayer interface {
	CreateSalon(ctx context.Context, salon models.Salon) error
	GetSalonByID(ctx context.Context, id string) (*models.Salon, error)
	UpdateSalon(ctx context.Context, salon models.Salon) error
	DeleteSalon(ctx context.Context, id string) error
	ListSalons(ctx context.Context) ([]models.Salon, error)

	CreateService(ctx context.Context, svc models.Service) error
	ListServicesBySalon(ctx context.Context, salonID string) ([]models.Service, error)

	CreateOffer(ctx context.Context, offer models.Offer) error
	GetOfferByID(ctx context.Context, id string) (*models.Offer, error)
	UpdateOffer(ctx context.Context, offer models.Offer) error
	ListOffersBySalon(ctx context.Context, salonID string) ([]models.Offer, error)

	CountWaiting(ctx context.Context, salonID string) (int, error)
}

// Service covers the salon-owner surface: the salon record itself, its
// service catalog, and promotional offers. Offers have a lifecycle of
// their own and only influence listing order and display.
type Service struct {
	DB          DBLayer
	SlotMinutes int
}

func NewService(db DBLayer, slotMinutes int) *Service {
	if slotMinutes <= 0 {
		slotMinutes = 15
	}
	return &Service{DB: db, SlotMinutes: slotMinutes}
}

func (s *Service) CreateSalon(ctx context.Context, identity models.Identity, name, address, phone string) (*models.Salon, error) {
	if !identity.IsOwner() {
		return nil, ErrNotAuthorized
	}

	salon := models.Salon{
		ID:        uuid.New().String(),
		OwnerID:   identity.UserID,
		Name:      name,
		Address:   address,
		Phone:     phone,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateSalon(ctx, salon); err != nil {
		return nil, fmt.Errorf("failed to create salon: %w", err)
	}
	return &salon, nil
}

func (s *Service) GetSalon(ctx context.Context, id string) (*models.Salon, error) {
	salon, err := s.DB.GetSalonByID(ctx, id)
	if err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", id, ErrNotFound)
	}
	return salon, nil
}

func (s *Service) UpdateSalon(ctx context.Context, identity models.Identity, updated models.Salon) (*models.Salon, error) {
	existing, err := s.ownedSalon(ctx, identity, updated.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = updated.Name
	existing.Address = updated.Address
	existing.Phone = updated.Phone

	if err := s.DB.UpdateSalon(ctx, *existing); err != nil {
		return nil, fmt.Errorf("failed to update salon %s: %w", updated.ID, err)
	}
	return existing, nil
}

func (s *Service) DeleteSalon(ctx context.Context, identity models.Identity, id string) error {
	if _, err := s.ownedSalon(ctx, identity, id); err != nil {
		return err
	}
	if err := s.DB.DeleteSalon(ctx, id); err != nil {
		return fmt.Errorf("failed to delete salon %s: %w", id, err)
	}
	return nil
}

// ListSalons returns every salon with its queue-derived fields and best
// active offer, ordered by best discount then rating.
func (s *Service) ListSalons(ctx context.Context) ([]models.SalonListing, error) {
	salons, err := s.DB.ListSalons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list salons: %w", err)
	}

	listings := make([]models.SalonListing, 0, len(salons))
	for _, sal := range salons {
		waiting, err := s.DB.CountWaiting(ctx, sal.ID)
		if err != nil {
			return nil, fmt.Errorf("waiting count for salon %s: %w", sal.ID, err)
		}

		listing := models.SalonListing{
			Salon:            sal,
			QueueCount:       waiting,
			EstimatedMinutes: queue.EstimateWait(waiting, s.SlotMinutes),
		}

		offers, err := s.DB.ListOffersBySalon(ctx, sal.ID)
		if err != nil {
			return nil, fmt.Errorf("offers for salon %s: %w", sal.ID, err)
		}
		for _, offer := range offers {
			if offer.Active && offer.DiscountPercent > listing.BestDiscount {
				listing.BestDiscount = offer.DiscountPercent
				listing.BestOfferTitle = offer.Title
			}
		}

		listings = append(listings, listing)
	}

	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].BestDiscount != listings[j].BestDiscount {
			return listings[i].BestDiscount > listings[j].BestDiscount
		}
		return listings[i].Rating > listings[j].Rating
	})

	return listings, nil
}

func (s *Service) AddService(ctx context.Context, identity models.Identity, salonID, name string, price float64, durationMinutes int) (*models.Service, error) {
	if _, err := s.ownedSalon(ctx, identity, salonID); err != nil {
		return nil, err
	}

	svc := models.Service{
		ID:              uuid.New().String(),
		SalonID:         salonID,
		Name:            name,
		Price:           price,
		DurationMinutes: durationMinutes,
		Active:          true,
		CreatedAt:       time.Now(),
	}
	if err := s.DB.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return &svc, nil
}

func (s *Service) ListServices(ctx context.Context, salonID string) ([]models.Service, error) {
	if salon, err := s.DB.GetSalonByID(ctx, salonID); err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", salonID, ErrNotFound)
	}
	services, err := s.DB.ListServicesBySalon(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services for salon %s: %w", salonID, err)
	}
	return services, nil
}

func (s *Service) CreateOffer(ctx context.Context, identity models.Identity, salonID, title string, discountPercent int) (*models.Offer, error) {
	if _, err := s.ownedSalon(ctx, identity, salonID); err != nil {
		return nil, err
	}

	offer := models.Offer{
		ID:              uuid.New().String(),
		SalonID:         salonID,
		Title:           title,
		DiscountPercent: discountPercent,
		Active:          true,
		CreatedAt:       time.Now(),
	}
	if err := s.DB.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	return &offer, nil
}

func (s *Service) SetOfferActive(ctx context.Context, identity models.Identity, offerID string, active bool) (*models.Offer, error) {
	offer, err := s.DB.GetOfferByID(ctx, offerID)
	if err != nil || offer == nil {
		return nil, fmt.Errorf("offer %s: %w", offerID, ErrNotFound)
	}
	if _, err := s.ownedSalon(ctx, identity, offer.SalonID); err != nil {
		return nil, err
	}

	offer.Active = active
	if err := s.DB.UpdateOffer(ctx, *offer); err != nil {
		return nil, fmt.Errorf("failed to update offer %s: %w", offerID, err)
	}
	return offer, nil
}

func (s *Service) ownedSalon(ctx context.Context, identity models.Identity, salonID string) (*models.Salon, error) {
	salon, err := s.DB.GetSalonByID(ctx, salonID)
	if err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", salonID, ErrNotFound)
	}
	if !identity.IsOwner() || salon.OwnerID != identity.UserID {
		return nil, ErrNotAuthorized
	}
	return salon, nil
}
