// Package service contains the business logic for the car rental API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on the repo.Store interface, not an
// implementation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/events"
	"github.com/pkordes/car-rental/internal/repo"
)

// CarService implements the inventory operations.
type CarService struct {
	store    repo.Store
	check    *checker
	notify   notifier
	minPrice int64
	now      func() time.Time
}

// NewCarService constructs a CarService. minPricePerDay is the lowest daily
// price a car may be listed at.
func NewCarService(store repo.Store, pub events.Publisher, log *slog.Logger, minPricePerDay int64) *CarService {
	return &CarService{
		store:    store,
		check:    newChecker(time.Now),
		notify:   newNotifier(pub, log),
		minPrice: minPricePerDay,
		now:      time.Now,
	}
}

// List returns all cars in insertion order.
func (s *CarService) List(ctx context.Context) ([]domain.Car, error) {
	cars, err := s.store.Cars().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CarService.List: %w", err)
	}
	return cars, nil
}

// GetByID returns domain.ErrNotFound if the car does not exist.
func (s *CarService) GetByID(ctx context.Context, id string) (domain.Car, error) {
	car, err := s.store.Cars().GetByID(ctx, id)
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.GetByID: %w", err)
	}
	return car, nil
}

// Create validates in, assigns a fresh id and persists the car.
// Returns a *domain.ValidationError if any field breaks a rule.
func (s *CarService) Create(ctx context.Context, in domain.CarInput) (domain.Car, error) {
	err := merge(s.check.check(in), s.checkPrice(&in.PricePerDay))
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.Create: %w", err)
	}

	car, err := s.store.Cars().Create(ctx, domain.NewCar("car-"+uuid.NewString(), in))
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.Create: %w", err)
	}
	return car, nil
}

// Update validates the fields present in patch and merges them over the
// stored car. Last write wins.
func (s *CarService) Update(ctx context.Context, id string, patch domain.CarPatch) (domain.Car, error) {
	if err := merge(s.check.check(patch), s.checkPrice(patch.PricePerDay)); err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.Update: %w", err)
	}

	var before, after domain.Car
	err := s.store.InTx(ctx, func(tx repo.Store) error {
		cur, err := tx.Cars().GetByID(ctx, id)
		if err != nil {
			return err
		}
		before = cur
		after, err = tx.Cars().Update(ctx, patch.Apply(cur))
		return err
	})
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.Update: %w", err)
	}

	if before.Status != after.Status {
		s.notify.publish(ctx, events.CarStatusChanged, events.CarStatusChangedEvent{
			CarID:      after.ID,
			From:       string(before.Status),
			To:         string(after.Status),
			OccurredAt: s.now().UTC(),
		})
	}
	return after, nil
}

// Delete removes the car and reports whether it existed. Bookings that
// reference the car are left in place.
func (s *CarService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Cars().Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("service.CarService.Delete: %w", err)
	}
	return ok, nil
}

func (s *CarService) checkPrice(price *int64) *domain.ValidationError {
	if price == nil || *price >= s.minPrice {
		return nil
	}
	floor := strconv.FormatInt(s.minPrice, 10)
	return &domain.ValidationError{Fields: []domain.FieldError{{
		Field:   "pricePerDay",
		Rule:    "pricemin",
		Param:   floor,
		Message: "pricePerDay must be at least " + floor,
	}}}
}
