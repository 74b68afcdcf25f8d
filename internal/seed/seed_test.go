package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/repo"
	"github.com/pkordes/car-rental/internal/seed"
)

func TestSample(t *testing.T) {
	f, err := seed.Sample()
	require.NoError(t, err)

	require.Len(t, f.Cars, 7)
	require.Len(t, f.Bookings, 3)

	assert.Equal(t, "car-5", f.Cars[4].ID)
	assert.Equal(t, domain.CarRented, f.Cars[4].Status)
	require.NotNil(t, f.Cars[0].Description)

	b := f.Bookings[1]
	assert.Equal(t, "booking-2", b.ID)
	assert.Equal(t, "0912345678", b.CustomerPhone, "leading zero must survive YAML decoding")
	assert.Equal(t, 2, domain.RentalDays(b.StartDate, b.EndDate))
	assert.Equal(t, int64(1_600_000), b.TotalPrice)
}

func TestParse_RejectsUnknownStatus(t *testing.T) {
	_, err := seed.Parse([]byte("cars:\n  - id: car-x\n    status: stolen\n"))

	assert.Error(t, err)
}

func TestApply_OnlyIntoEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := repo.NewMemoryStore()
	f, err := seed.Sample()
	require.NoError(t, err)

	applied, err := seed.Apply(ctx, s, f)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = seed.Apply(ctx, s, f)
	require.NoError(t, err)
	assert.False(t, applied, "second apply must be a no-op")

	cars, err := s.Cars().List(ctx)
	require.NoError(t, err)
	assert.Len(t, cars, 7)
	assert.Equal(t, "car-1", cars[0].ID)
}
