package service

import (
	"context"
	"fmt"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/repo"
)

// recentBookingsLimit is how many bookings the dashboard lists.
const recentBookingsLimit = 5

// StatsService computes the back-office dashboard summary.
type StatsService struct {
	store repo.Store
}

// NewStatsService constructs a StatsService.
func NewStatsService(store repo.Store) *StatsService {
	return &StatsService{store: store}
}

// Summary counts cars by status and bookings by stage. Revenue is the sum of
// TotalPrice over returned bookings.
func (s *StatsService) Summary(ctx context.Context) (domain.Stats, error) {
	cars, err := s.store.Cars().List(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.Summary: %w", err)
	}
	bookings, err := listJoined(ctx, s.store)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("service.StatsService.Summary: %w", err)
	}

	st := domain.Stats{TotalCars: len(cars)}
	for _, c := range cars {
		switch c.Status {
		case domain.CarAvailable:
			st.AvailableCars++
		case domain.CarRented:
			st.RentedCars++
		case domain.CarMaintenance:
			st.MaintenanceCars++
		}
	}
	for _, b := range bookings {
		switch b.Status {
		case domain.BookingPending:
			st.PendingBookings++
		case domain.BookingRenting:
			st.ActiveRentals++
		case domain.BookingReturned:
			st.TotalRevenue += b.TotalPrice
		}
	}
	st.RecentBookings = bookings[:min(recentBookingsLimit, len(bookings))]
	return st, nil
}
