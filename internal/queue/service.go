package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartq/internal/models"
)

type DBLayer interface {
	CreateEntry(ctx context.Context, entry models.QueueEntry) error
	GetEntryByID(ctx context.Context, id string) (*models.QueueEntry, error)
	UpdateEntry(ctx context.Context, entry models.QueueEntry) error
	DeleteEntry(ctx context.Context, id string) error
	ListBySalon(ctx context.Context, salonID string) ([]models.QueueEntry, error)
	HasActiveEntry(ctx context.Context, salonID, customerID string) (bool, error)
	CountWaiting(ctx context.Context, salonID string) (int, error)
	GetSalonByID(ctx context.Context, id string) (*models.Salon, error)
	GetServiceByID(ctx context.Context, id string) (*models.Service, error)
}

type JoinLock interface {
	LockJoin(ctx context.Context, salonID, customerID string) (bool, error)
	UnlockJoin(ctx context.Context, salonID, customerID string) error
}

type EventPublisher interface {
	PublishQueueJoined(entry models.QueueEntry) error
	PublishQueueUpdated(entry models.QueueEntry) error
	PublishQueueLeft(entry models.QueueEntry) error
}

type Broadcaster interface {
	PublishQueue(snapshot models.QueueSnapshot)
}

type PassGenerator interface {
	GeneratePass(entry models.QueueEntry) ([]byte, error)
}

type logSink interface {
	Info(category, message string)
	Warn(category, message string)
	Error(category, message string)
}

// Service orchestrates queue mutations: every successful write re-reads
// the salon's entry set, recomputes derived state and broadcasts the
// snapshot. Broadcast and event-stream failures never fail the request.
type Service struct {
	DB          DBLayer
	Locks       JoinLock
	Events      EventPublisher
	Broadcast   Broadcaster
	Passes      PassGenerator
	Logger      logSink
	SlotMinutes int
}

func NewService(db DBLayer, locks JoinLock, events EventPublisher, broadcast Broadcaster, passes PassGenerator, log logSink, slotMinutes int) *Service {
	if slotMinutes <= 0 {
		slotMinutes = 15
	}
	return &Service{
		DB:          db,
		Locks:       locks,
		Events:      events,
		Broadcast:   broadcast,
		Passes:      passes,
		Logger:      log,
		SlotMinutes: slotMinutes,
	}
}

// JoinResult is what a customer gets back after joining: the stored
// entry, its live position and an encrypted QR pass for check-in.
type JoinResult struct {
	Entry    models.QueueEntry    `json:"entry"`
	Position models.QueuePosition `json:"position"`
	Pass     []byte               `json:"pass,omitempty"`
}

func (s *Service) JoinQueue(ctx context.Context, identity models.Identity, salonID, serviceID string) (*JoinResult, error) {
	salon, err := s.DB.GetSalonByID(ctx, salonID)
	if err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", salonID, ErrNotFound)
	}

	svc, err := s.DB.GetServiceByID(ctx, serviceID)
	if err != nil || svc == nil || svc.SalonID != salonID {
		return nil, fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
	}

	// Short lock per (salon, customer) so a double-tap cannot slip two
	// entries past the active-entry check. Distinct customers are not
	// serialized; their ticket positions stay advisory.
	if s.Locks != nil {
		ok, err := s.Locks.LockJoin(ctx, salonID, identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("join lock: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateActiveEntry
		}
		defer func() {
			_ = s.Locks.UnlockJoin(ctx, salonID, identity.UserID)
		}()
	}

	active, err := s.DB.HasActiveEntry(ctx, salonID, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("active entry check: %w", err)
	}
	if active {
		return nil, ErrDuplicateActiveEntry
	}

	waiting, err := s.DB.CountWaiting(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("waiting count: %w", err)
	}

	estimate := svc.DurationMinutes
	if estimate <= 0 {
		estimate = s.SlotMinutes
	}

	entry := models.QueueEntry{
		ID:                uuid.New().String(),
		SalonID:           salonID,
		CustomerID:        identity.UserID,
		ServiceID:         serviceID,
		Status:            models.StatusWaiting,
		Position:          waiting + 1,
		EstimatedWaitTime: estimate,
		CreatedAt:         time.Now(),
	}

	if err := s.DB.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create queue entry: %w", err)
	}

	var pass []byte
	if s.Passes != nil {
		pass, err = s.Passes.GeneratePass(entry)
		if err != nil {
			s.logWarn("QUEUE", fmt.Sprintf("pass generation failed for entry %s: %v", entry.ID, err))
			pass = nil
		}
	}

	if s.Events != nil {
		if err := s.Events.PublishQueueJoined(entry); err != nil {
			s.logError("KAFKA", fmt.Sprintf("publish joined event for %s: %v", entry.ID, err))
		}
	}

	snapshot := s.recomputeAndBroadcast(ctx, salonID)

	position := models.QueuePosition{
		Rank:             entry.Position,
		WaitingCount:     snapshot.WaitingCount,
		EstimatedMinutes: EstimateWait(snapshot.WaitingCount-1, s.SlotMinutes),
	}
	if live := PositionFor(snapshot.Entries, identity.UserID, s.SlotMinutes); live != nil {
		position = *live
	}

	return &JoinResult{Entry: entry, Position: position, Pass: pass}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, identity models.Identity, entryID, newStatus string) (*models.QueueEntry, error) {
	entry, err := s.DB.GetEntryByID(ctx, entryID)
	if err != nil || entry == nil {
		return nil, fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
	}

	salon, err := s.DB.GetSalonByID(ctx, entry.SalonID)
	if err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", entry.SalonID, ErrNotFound)
	}
	if !identity.IsOwner() || salon.OwnerID != identity.UserID {
		return nil, ErrNotAuthorized
	}

	if !ValidStatus(newStatus) {
		return nil, fmt.Errorf("status %q: %w", newStatus, ErrInvalidTransition)
	}
	if !CanTransition(entry.Status, newStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", entry.Status, newStatus, ErrInvalidTransition)
	}

	entry.Status = newStatus
	entry.UpdatedAt = time.Now()

	if err := s.DB.UpdateEntry(ctx, *entry); err != nil {
		return nil, fmt.Errorf("failed to update entry %s: %w", entryID, err)
	}

	if s.Events != nil {
		if err := s.Events.PublishQueueUpdated(*entry); err != nil {
			s.logError("KAFKA", fmt.Sprintf("publish updated event for %s: %v", entry.ID, err))
		}
	}

	s.recomputeAndBroadcast(ctx, entry.SalonID)
	return entry, nil
}

func (s *Service) LeaveQueue(ctx context.Context, identity models.Identity, entryID string) error {
	entry, err := s.DB.GetEntryByID(ctx, entryID)
	if err != nil || entry == nil {
		return fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
	}

	if entry.CustomerID != identity.UserID {
		salon, err := s.DB.GetSalonByID(ctx, entry.SalonID)
		if err != nil || salon == nil || !identity.IsOwner() || salon.OwnerID != identity.UserID {
			return ErrNotAuthorized
		}
	}

	// Voluntary leave is only meaningful while still waiting.
	if entry.Status != models.StatusWaiting {
		return fmt.Errorf("cannot leave while %s: %w", entry.Status, ErrInvalidTransition)
	}

	if err := s.DB.DeleteEntry(ctx, entryID); err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}

	if s.Events != nil {
		if err := s.Events.PublishQueueLeft(*entry); err != nil {
			s.logError("KAFKA", fmt.Sprintf("publish left event for %s: %v", entry.ID, err))
		}
	}

	s.recomputeAndBroadcast(ctx, entry.SalonID)
	return nil
}

// GetMyPosition returns the customer's live rank within a salon queue,
// or nil when the customer holds no active entry there.
func (s *Service) GetMyPosition(ctx context.Context, customerID, salonID string) (*models.QueuePosition, error) {
	entries, err := s.DB.ListBySalon(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for salon %s: %w", salonID, err)
	}
	return PositionFor(entries, customerID, s.SlotMinutes), nil
}

// SalonQueue returns the current snapshot for a salon without mutating
// anything.
func (s *Service) SalonQueue(ctx context.Context, salonID string) (*models.QueueSnapshot, error) {
	salon, err := s.DB.GetSalonByID(ctx, salonID)
	if err != nil || salon == nil {
		return nil, fmt.Errorf("salon %s: %w", salonID, ErrNotFound)
	}
	entries, err := s.DB.ListBySalon(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for salon %s: %w", salonID, err)
	}
	snapshot := BuildSnapshot(salonID, entries, s.SlotMinutes)
	return &snapshot, nil
}

func (s *Service) recomputeAndBroadcast(ctx context.Context, salonID string) models.QueueSnapshot {
	entries, err := s.DB.ListBySalon(ctx, salonID)
	if err != nil {
		s.logError("QUEUE", fmt.Sprintf("recompute for salon %s: %v", salonID, err))
		return models.QueueSnapshot{SalonID: salonID}
	}

	snapshot := BuildSnapshot(salonID, entries, s.SlotMinutes)
	if s.Broadcast != nil {
		s.Broadcast.PublishQueue(snapshot)
	}
	return snapshot
}

func (s *Service) logWarn(category, message string) {
	if s.Logger != nil {
		s.Logger.Warn(category, message)
	}
}

func (s *Service) logError(category, message string) {
	if s.Logger != nil {
		s.Logger.Error(category, message)
	}
}
