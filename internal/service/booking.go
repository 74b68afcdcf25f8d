package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/events"
	"github.com/pkordes/car-rental/internal/repo"
)

// BookingService implements the booking lifecycle: creation against an
// available car, status changes that cascade onto the car, and the joined
// read model used by the back office.
type BookingService struct {
	store  repo.Store
	check  *checker
	notify notifier
	strict bool
	now    func() time.Time
}

// NewBookingService constructs a BookingService. When strictTransitions is
// true, status changes must follow domain.CanTransition; otherwise any
// declared status may be written.
func NewBookingService(store repo.Store, pub events.Publisher, log *slog.Logger, strictTransitions bool) *BookingService {
	return &BookingService{
		store:  store,
		check:  newChecker(time.Now),
		notify: newNotifier(pub, log),
		strict: strictTransitions,
		now:    time.Now,
	}
}

// Create validates in and stores a pending booking.
//
// The car must exist and be available at the moment of creation; otherwise
// domain.ErrCarMissing or domain.ErrCarUnavailable is returned and nothing is
// stored. A zero TotalPrice is replaced by the quote for the date range.
func (s *BookingService) Create(ctx context.Context, in domain.BookingInput) (domain.Booking, error) {
	if err := s.check.check(in); err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	start, end := calendarDate(in.StartDate), calendarDate(in.EndDate)
	if domain.RentalDays(start, end) <= 0 {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", endBeforeStart())
	}

	var created domain.Booking
	err := s.store.InTx(ctx, func(tx repo.Store) error {
		car, err := tx.Cars().GetByID(ctx, in.CarID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCarMissing
		}
		if err != nil {
			return err
		}
		if car.Status != domain.CarAvailable {
			return domain.ErrCarUnavailable
		}

		total := in.TotalPrice
		if total == 0 {
			if total, err = domain.QuoteTotal(start, end, car.PricePerDay); err != nil {
				return err
			}
		}

		created, err = tx.Bookings().Create(ctx, domain.Booking{
			ID:            "booking-" + uuid.NewString(),
			CarID:         car.ID,
			CustomerName:  in.CustomerName,
			CustomerPhone: in.CustomerPhone,
			CustomerID:    in.CustomerID,
			StartDate:     start,
			EndDate:       end,
			TotalPrice:    total,
			Status:        domain.BookingPending,
			Notes:         in.Notes,
			CreatedAt:     s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}

	s.notify.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  created.ID,
		CarID:      created.CarID,
		StartDate:  created.StartDate.Format(time.DateOnly),
		EndDate:    created.EndDate.Format(time.DateOnly),
		TotalPrice: created.TotalPrice,
		OccurredAt: created.CreatedAt,
	})
	return created, nil
}

// carChange records a cascade applied inside a unit of work so it can be
// published after commit.
type carChange struct {
	carID    string
	from, to domain.CarStatus
}

// Update merges patch over the stored booking. When patch carries a status,
// the car cascade for the new status is applied in the same unit of work.
// A car that no longer exists is skipped silently.
func (s *BookingService) Update(ctx context.Context, id string, patch domain.BookingPatch) (domain.Booking, error) {
	if err := s.check.check(patch); err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Update: %w", err)
	}
	if patch.StartDate != nil {
		d := calendarDate(*patch.StartDate)
		patch.StartDate = &d
	}
	if patch.EndDate != nil {
		d := calendarDate(*patch.EndDate)
		patch.EndDate = &d
	}

	var (
		before, after domain.Booking
		cascade       *carChange
	)
	err := s.store.InTx(ctx, func(tx repo.Store) error {
		cur, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		before = cur

		if patch.Status != nil && s.strict && !domain.CanTransition(cur.Status, *patch.Status) {
			return &domain.ValidationError{Fields: []domain.FieldError{{
				Field:   "status",
				Rule:    "transition",
				Param:   string(cur.Status) + "," + string(*patch.Status),
				Message: fmt.Sprintf("cannot change status from %s to %s", cur.Status, *patch.Status),
			}}}
		}

		next := patch.Apply(cur)
		if domain.RentalDays(next.StartDate, next.EndDate) <= 0 {
			return endBeforeStart()
		}
		if after, err = tx.Bookings().Update(ctx, next); err != nil {
			return err
		}

		if patch.Status == nil {
			return nil
		}
		cascade, err = applyCascade(ctx, tx, after)
		return err
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Update: %w", err)
	}

	if patch.Status != nil {
		s.notify.publish(ctx, events.BookingStatusChanged, events.BookingStatusChangedEvent{
			BookingID:  after.ID,
			CarID:      after.CarID,
			From:       string(before.Status),
			To:         string(after.Status),
			OccurredAt: s.now().UTC(),
		})
	}
	if cascade != nil {
		s.notify.publish(ctx, events.CarStatusChanged, events.CarStatusChangedEvent{
			CarID:      cascade.carID,
			From:       string(cascade.from),
			To:         string(cascade.to),
			BookingID:  after.ID,
			OccurredAt: s.now().UTC(),
		})
	}
	return after, nil
}

// applyCascade sets the car status implied by b.Status. It returns nil when
// the status carries no side effect, the car is gone, or the car already has
// the target status.
func applyCascade(ctx context.Context, tx repo.Store, b domain.Booking) (*carChange, error) {
	target, ok := domain.CascadeCarStatus(b.Status)
	if !ok {
		return nil, nil
	}
	car, err := tx.Cars().GetByID(ctx, b.CarID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if car.Status == target {
		return nil, nil
	}

	change := &carChange{carID: car.ID, from: car.Status, to: target}
	car.Status = target
	if _, err := tx.Cars().Update(ctx, car); err != nil {
		return nil, err
	}
	return change, nil
}

// SetStatus writes a new status and applies its cascade.
func (s *BookingService) SetStatus(ctx context.Context, id string, status domain.BookingStatus) (domain.Booking, error) {
	return s.Update(ctx, id, domain.BookingPatch{Status: &status})
}

// List returns every booking joined with its current car, newest first.
func (s *BookingService) List(ctx context.Context) ([]domain.BookingWithCar, error) {
	joined, err := listJoined(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.List: %w", err)
	}
	return joined, nil
}

// GetByID returns one booking joined with its car. Car is nil when the car
// has been deleted.
func (s *BookingService) GetByID(ctx context.Context, id string) (domain.BookingWithCar, error) {
	b, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return domain.BookingWithCar{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}

	out := domain.BookingWithCar{Booking: b}
	car, err := s.store.Cars().GetByID(ctx, b.CarID)
	switch {
	case err == nil:
		out.Car = &car
	case !errors.Is(err, domain.ErrNotFound):
		return domain.BookingWithCar{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}
	return out, nil
}

// Delete removes the booking only. Any car status it caused stays as is.
func (s *BookingService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Bookings().Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("service.BookingService.Delete: %w", err)
	}
	return ok, nil
}

// listJoined loads bookings and cars and joins them in memory, newest
// booking first. Ties keep store order.
func listJoined(ctx context.Context, store repo.Store) ([]domain.BookingWithCar, error) {
	bookings, err := store.Bookings().List(ctx)
	if err != nil {
		return nil, err
	}
	cars, err := store.Cars().List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Car, len(cars))
	for _, c := range cars {
		byID[c.ID] = c
	}

	out := make([]domain.BookingWithCar, 0, len(bookings))
	for _, b := range bookings {
		j := domain.BookingWithCar{Booking: b}
		if c, ok := byID[b.CarID]; ok {
			j.Car = &c
		}
		out = append(out, j)
	}
	slices.SortStableFunc(out, func(a, b domain.BookingWithCar) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// calendarDate drops time-of-day and zone, keeping the date as written.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endBeforeStart() *domain.ValidationError {
	return domain.NewValidationError("endDate", "gtfield", "endDate must be after startDate")
}
