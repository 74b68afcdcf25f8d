package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/internal/repo"
	"github.com/pkordes/car-rental/internal/seed"
	"github.com/pkordes/car-rental/internal/service"
)

func TestStatsService_Summary_SampleData(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	f, err := seed.Sample()
	require.NoError(t, err)
	_, err = seed.Apply(ctx, store, f)
	require.NoError(t, err)

	bookings := service.NewBookingService(store, nil, discardLogger(), false)
	_, err = bookings.SetStatus(ctx, "booking-1", "returned")
	require.NoError(t, err)

	st, err := service.NewStatsService(store).Summary(ctx)

	require.NoError(t, err)
	assert.Equal(t, 7, st.TotalCars)
	assert.Equal(t, 7, st.AvailableCars, "returning booking-1 frees car-5")
	assert.Equal(t, 0, st.RentedCars)
	assert.Equal(t, 1, st.PendingBookings)
	assert.Equal(t, 0, st.ActiveRentals)
	assert.Equal(t, int64(4_500_000), st.TotalRevenue)
	require.Len(t, st.RecentBookings, 3)
	assert.Equal(t, "booking-3", st.RecentBookings[0].ID)
}

func TestStatsService_Summary_Empty(t *testing.T) {
	st, err := service.NewStatsService(repo.NewMemoryStore()).Summary(context.Background())

	require.NoError(t, err)
	assert.Zero(t, st.TotalCars)
	assert.Empty(t, st.RecentBookings)
}
