package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/repo"
)

// mockCarRepo is a hand-written test double for repo.CarRepo.
// Each method is a function field: set only the ones your test needs.
type mockCarRepo struct {
	create  func(ctx context.Context, car domain.Car) (domain.Car, error)
	getByID func(ctx context.Context, id string) (domain.Car, error)
	list    func(ctx context.Context) ([]domain.Car, error)
	update  func(ctx context.Context, car domain.Car) (domain.Car, error)
	delete  func(ctx context.Context, id string) (bool, error)
}

func (m *mockCarRepo) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	return m.create(ctx, car)
}
func (m *mockCarRepo) GetByID(ctx context.Context, id string) (domain.Car, error) {
	return m.getByID(ctx, id)
}
func (m *mockCarRepo) List(ctx context.Context) ([]domain.Car, error) {
	return m.list(ctx)
}
func (m *mockCarRepo) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	return m.update(ctx, car)
}
func (m *mockCarRepo) Delete(ctx context.Context, id string) (bool, error) {
	return m.delete(ctx, id)
}

// compile-time check: mockCarRepo must satisfy repo.CarRepo.
var _ repo.CarRepo = (*mockCarRepo)(nil)

// stubStore serves cars from a mock and everything else from a real
// MemoryStore. InTx runs fn directly against the stub.
type stubStore struct {
	*repo.MemoryStore
	cars repo.CarRepo
}

func (s *stubStore) Cars() repo.CarRepo { return s.cars }

func (s *stubStore) InTx(_ context.Context, fn func(repo.Store) error) error {
	return fn(s)
}

var _ repo.Store = (*stubStore)(nil)

// ---- fixtures --------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func camryInput() domain.CarInput {
	return domain.CarInput{
		Brand:        "Toyota",
		Model:        "Camry",
		Year:         2023,
		Type:         domain.CarSedan,
		Transmission: domain.TransmissionAutomatic,
		Fuel:         domain.FuelGasoline,
		Seats:        5,
		PricePerDay:  800000,
		Image:        "/attached_assets/stock_images/luxury_sedan_car_pro_15cee928.jpg",
		Features:     ptr("Camera lùi, GPS, Bluetooth"),
	}
}

func bookingInput(carID string) domain.BookingInput {
	return domain.BookingInput{
		CarID:         carID,
		CustomerName:  "Trần Thị Bình",
		CustomerPhone: "0912345678",
		CustomerID:    "023456789012",
		StartDate:     day(2024, 12, 1),
		EndDate:       day(2024, 12, 3),
	}
}

// seedCar stores a car with the given status directly in the store.
func seedCar(t *testing.T, s repo.Store, id string, status domain.CarStatus) domain.Car {
	t.Helper()
	car := domain.NewCar(id, camryInput())
	car.Status = status
	created, err := s.Cars().Create(context.Background(), car)
	require.NoError(t, err)
	return created
}
