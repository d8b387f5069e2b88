package salon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartq/internal/models"
)

type mockDB struct {
	salons       map[string]*models.Salon
	services     map[string][]models.Service
	offers       map[string]*models.Offer
	waiting      map[string]int
	shouldFailOn string
	errorMsg     string
}

func newMockDB() *mockDB {
	return &mockDB{
		salons:   make(map[string]*models.Salon),
		services: make(map[string][]models.Service),
		offers:   make(map[string]*models.Offer),
		waiting:  make(map[string]int),
	}
}

func (m *mockDB) CreateSalon(ctx context.Context, salon models.Salon) error {
	if m.shouldFailOn == "CreateSalon" {
		return errors.New(m.errorMsg)
	}
	m.salons[salon.ID] = &salon
	return nil
}

func (m *mockDB) GetSalonByID(ctx context.Context, id string) (*models.Salon, error) {
	if m.shouldFailOn == "GetSalonByID" {
		return nil, errors.New(m.errorMsg)
	}
	return m.salons[id], nil
}

func (m *mockDB) UpdateSalon(ctx context.Context, salon models.Salon) error {
	if m.shouldFailOn == "UpdateSalon" {
		return errors.New(m.errorMsg)
	}
	m.salons[salon.ID] = &salon
	return nil
}

func (m *mockDB) DeleteSalon(ctx context.Context, id string) error {
	if m.shouldFailOn == "DeleteSalon" {
		return errors.New(m.errorMsg)
	}
	delete(m.salons, id)
	return nil
}

func (m *mockDB) ListSalons(ctx context.Context) ([]models.Salon, error) {
	if m.shouldFailOn == "ListSalons" {
		return nil, errors.New(m.errorMsg)
	}
	var out []models.Salon
	for _, s := range m.salons {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockDB) CreateService(ctx context.Context, svc models.Service) error {
	if m.shouldFailOn == "CreateService" {
		return errors.New(m.errorMsg)
	}
	m.services[svc.SalonID] = append(m.services[svc.SalonID], svc)
	return nil
}

func (m *mockDB) ListServicesBySalon(ctx context.Context, salonID string) ([]models.Service, error) {
	if m.shouldFailOn == "ListServicesBySalon" {
		return nil, errors.New(m.errorMsg)
	}
	return m.services[salonID], nil
}

func (m *mockDB) CreateOffer(ctx context.Context, offer models.Offer) error {
	if m.shouldFailOn == "CreateOffer" {
		return errors.New(m.errorMsg)
	}
	m.offers[offer.ID] = &offer
	return nil
}

func (m *mockDB) GetOfferByID(ctx context.Context, id string) (*models.Offer, error) {
	if m.shouldFailOn == "GetOfferByID" {
		return nil, errors.New(m.errorMsg)
	}
	return m.offers[id], nil
}

func (m *mockDB) UpdateOffer(ctx context.Context, offer models.Offer) error {
	if m.shouldFailOn == "UpdateOffer" {
		return errors.New(m.errorMsg)
	}
	m.offers[offer.ID] = &offer
	return nil
}

func (m *mockDB) ListOffersBySalon(ctx context.Context, salonID string) ([]models.Offer, error) {
	if m.shouldFailOn == "ListOffersBySalon" {
		return nil, errors.New(m.errorMsg)
	}
	var out []models.Offer
	for _, o := range m.offers {
		if o.SalonID == salonID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockDB) CountWaiting(ctx context.Context, salonID string) (int, error) {
	if m.shouldFailOn == "CountWaiting" {
		return 0, errors.New(m.errorMsg)
	}
	return m.waiting[salonID], nil
}

var (
	owner    = models.Identity{UserID: "owner-1", Role: models.RoleSalonOwner}
	customer = models.Identity{UserID: "alice", Role: models.RoleCustomer}
)

func TestCreateSalon(t *testing.T) {
	db := newMockDB()
	svc := NewService(db, 15)

	salon, err := svc.CreateSalon(context.Background(), owner, "Fade Factory", "12 High Street", "+94-77")
	require.NoError(t, err)
	assert.NotEmpty(t, salon.ID)
	assert.Equal(t, "owner-1", salon.OwnerID)
	assert.Equal(t, "Fade Factory", salon.Name)

	// Customers cannot register salons.
	_, err = svc.CreateSalon(context.Background(), customer, "Nope", "", "")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUpdateSalon_OwnershipChecks(t *testing.T) {
	db := newMockDB()
	svc := NewService(db, 15)
	ctx := context.Background()

	salon, err := svc.CreateSalon(ctx, owner, "Fade Factory", "", "")
	require.NoError(t, err)

	updated := *salon
	updated.Name = "Fade Factory 2.0"
	got, err := svc.UpdateSalon(ctx, owner, updated)
	require.NoError(t, err)
	assert.Equal(t, "Fade Factory 2.0", got.Name)

	otherOwner := models.Identity{UserID: "owner-2", Role: models.RoleSalonOwner}
	_, err = svc.UpdateSalon(ctx, otherOwner, updated)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	updated.ID = "no-such-salon"
	_, err = svc.UpdateSalon(ctx, owner, updated)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSalon(t *testing.T) {
	db := newMockDB()
	svc := NewService(db, 15)
	ctx := context.Background()

	salon, err := svc.CreateSalon(ctx, owner, "Fade Factory", "", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteSalon(ctx, customer, salon.ID), ErrNotAuthorized)
	require.NoError(t, svc.DeleteSalon(ctx, owner, salon.ID))

	_, err = svc.GetSalon(ctx, salon.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSalons_OrderAndDerivedFields(t *testing.T) {
	db := newMockDB()
	svc := NewService(db, 15)
	ctx := context.Background()

	db.salons["salon-a"] = &models.Salon{ID: "salon-a", OwnerID: "owner-1", Name: "A", Rating: 4.5}
	db.salons["salon-b"] = &models.Salon{ID: "salon-b", OwnerID: "owner-2", Name: "B", Rating: 3.0}
	db.salons["salon-c"] = &models.Salon{ID: "salon-c", OwnerID: "owner-3", Name: "C", Rating: 5.0}
	db.waiting["salon-a"] = 2

	db.offers["offer-1"] = &models.Offer{ID: "offer-1", SalonID: "salon-b", Title: "Morning Special", DiscountPercent: 20, Active: true}
	db.offers["offer-2"] = &models.Offer{ID: "offer-2", SalonID: "salon-c", Title: "Expired", DiscountPercent: 50, Active: false}

	listings, err := svc.ListSalons(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 3)

	// Active discount wins first place; inactive offers are invisible.
	assert.Equal(t, "salon-b", listings[0].ID)
	assert.Equal(t, 20, listings[0].BestDiscount)
	assert.Equal(t, "Morning Special", listings[0].BestOfferTitle)

	// Remaining salons fall back to rating order.
	assert.Equal(t, "salon-c", listings[1].ID)
	assert.Equal(t, 0, listings[1].BestDiscount)
	assert.Equal(t, "salon-a", listings[2].ID)

	for _, l := range listings {
		if l.ID == "salon-a" {
			assert.Equal(t, 2, l.QueueCount)
			assert.Equal(t, 30, l.EstimatedMinutes)
		}
	}
}

func TestAddService(t *testing.T) {
	db := newMockDB()
	svc := NewService(db, 15)
	ctx := context.Background()

	salon, err := svc.CreateSalon(ctx, owner, "Fade Factory", "", "")
	require.NoError(t, err)

	created, err := svc.AddService(ctx, owner, salon.ID, "Haircut", 25, 30)
	require.NoError(t, err)
	assert.Equal(t, salon.ID, created.SalonID)
	assert.True(t, created.Active)

	_, err = svc.AddService(ctx, customer, salon.ID, "Haircut", 25, 30)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	services, err := svc.ListServices(ctx, salon.ID)
	require.NoError(t, err)
	assert.Len(t, services, 1)

	_, err = svc.ListServices(ctx, "no-such-salon")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOfferLifecycle(t *testing.T) {
	db := newMockDB()
	svc := NewService(db, 15)
	ctx := context.Background()

	salon, err := svc.CreateSalon(ctx, owner, "Fade Factory", "", "")
	require.NoError(t, err)

	offer, err := svc.CreateOffer(ctx, owner, salon.ID, "Weekday Special", 20)
	require.NoError(t, err)
	assert.True(t, offer.Active)

	deactivated, err := svc.SetOfferActive(ctx, owner, offer.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	_, err = svc.SetOfferActive(ctx, customer, offer.ID, true)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.SetOfferActive(ctx, owner, "no-such-offer", true)
	assert.ErrorIs(t, err, ErrNotFound)
}
