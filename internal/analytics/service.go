package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"smartq/internal/models"
	"smartq/internal/queue"
)

// SalonAnalytics is the read-only performance snapshot for one salon.
type SalonAnalytics struct {
	SalonID         string         `json:"salon_id"`
	CustomersToday  int            `json:"customers_today"`
	TotalCustomers  int            `json:"total_customers"`
	AvgWaitTime     float64        `json:"avg_wait_time"`
	Rating          float64        `json:"rating"`
	ShowRate        float64        `json:"show_rate"`
	Revenue         float64        `json:"revenue"`
	PopularServices []ServiceUsage `json:"popular_services"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// ServiceUsage annotates a service with how many entries booked it.
type ServiceUsage struct {
	Service  models.Service `json:"service"`
	Bookings int            `json:"bookings"`
}

type DBLayer interface {
	GetSalonByID(ctx context.Context, id string) (*models.Salon, error)
	GetEntriesBySalon(ctx context.Context, salonID string) ([]models.QueueEntry, error)
	GetServicesBySalon(ctx context.Context, salonID string) ([]models.Service, error)
	GetReviewsBySalon(ctx context.Context, salonID string) ([]models.Review, error)
}

// Service computes salon analytics. It never mutates anything; missing
// nested data degrades to zero-valued fields instead of erroring.
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

func (s *Service) GetSalonAnalytics(ctx context.Context, salonID string) (*SalonAnalytics, error) {
	salon, err := s.DB.GetSalonByID(ctx, salonID)
	if err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", salonID, queue.ErrNotFound)
	}

	entries, err := s.DB.GetEntriesBySalon(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("entries for salon %s: %w", salonID, err)
	}
	services, err := s.DB.GetServicesBySalon(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("services for salon %s: %w", salonID, err)
	}
	reviews, err := s.DB.GetReviewsBySalon(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("reviews for salon %s: %w", salonID, err)
	}

	snapshot := ComputeSnapshot(salonID, entries, services, reviews, time.Now(), s.SlotMinutes)
	return &snapshot, nil
}

// ComputeSnapshot derives the full analytics snapshot from the current
// record sets. Pure function; now is injected for the same-day window.
func ComputeSnapshot(salonID string, entries []models.QueueEntry, services []models.Service, reviews []models.Review, now time.Time, slotMinutes int) SalonAnalytics {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	serviceByID := make(map[string]models.Service, len(services))
	for _, svc := range services {
		serviceByID[svc.ID] = svc
	}

	var (
		customersToday int
		completedCount int
		revenue        float64
		waitSum        float64
	)
	bookings := make(map[string]int)

	for _, e := range entries {
		if !e.CreatedAt.Before(startOfDay) {
			customersToday++
		}

		// Entries with no recorded estimate count at the flat slot
		// assumption so the average stays comparable.
		if e.EstimatedWaitTime > 0 {
			waitSum += float64(e.EstimatedWaitTime)
		} else {
			waitSum += float64(slotMinutes)
		}

		if e.Status == models.StatusCompleted {
			completedCount++
			if svc, ok := serviceByID[e.ServiceID]; ok {
				revenue += svc.Price
			}
		}

		bookings[e.ServiceID]++
	}

	total := len(entries)

	avgWait := 0.0
	if total > 0 {
		avgWait = waitSum / float64(total)
	}

	// A salon with no history has disappointed nobody.
	showRate := 100.0
	if total > 0 {
		showRate = float64(completedCount) / float64(total) * 100
	}

	rating := 0.0
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		rating = float64(sum) / float64(len(reviews))
	}

	popular := make([]ServiceUsage, 0, len(services))
	for _, svc := range services {
		popular = append(popular, ServiceUsage{Service: svc, Bookings: bookings[svc.ID]})
	}
	// Stable sort keeps catalog order between services with equal counts.
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Bookings > popular[j].Bookings
	})

	return SalonAnalytics{
		SalonID:         salonID,
		CustomersToday:  customersToday,
		TotalCustomers:  total,
		AvgWaitTime:     avgWait,
		Rating:          rating,
		ShowRate:        showRate,
		Revenue:         revenue,
		PopularServices: popular,
		GeneratedAt:     now,
	}
}
