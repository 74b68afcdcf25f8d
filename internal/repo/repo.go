// Package repo contains all persistence logic for the car rental API.
// Each resource has an interface here and two implementations: an in-memory
// one (memory.go) and a Postgres one (car.go, booking.go, user.go, session.go).
// No business logic lives here, only storage and type mapping.
package repo

import (
	"context"
	"time"

	"github.com/pkordes/car-rental/internal/domain"
)

// CarRepo defines the persistence operations for Cars.
// The service layer depends on this interface, not a concrete implementation,
// which allows the service to be unit-tested with a mock.
type CarRepo interface {
	// Create stores a new car under car.ID and returns the persisted record.
	Create(ctx context.Context, car domain.Car) (domain.Car, error)

	// GetByID returns domain.ErrNotFound if no car with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Car, error)

	// List returns all cars in insertion order.
	List(ctx context.Context) ([]domain.Car, error)

	// Update overwrites every mutable field of an existing car.
	// Returns domain.ErrNotFound if no car with that ID exists.
	Update(ctx context.Context, car domain.Car) (domain.Car, error)

	// Delete removes a car and reports whether a record existed.
	Delete(ctx context.Context, id string) (bool, error)
}

// BookingRepo defines the persistence operations for Bookings.
type BookingRepo interface {
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// GetByID returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Booking, error)

	// List returns all bookings. Callers impose their own order.
	List(ctx context.Context) ([]domain.Booking, error)

	Update(ctx context.Context, b domain.Booking) (domain.Booking, error)

	Delete(ctx context.Context, id string) (bool, error)
}

// UserRepo defines the persistence operations for Users.
// Users are never updated or deleted.
type UserRepo interface {
	// Create returns domain.ErrUsernameTaken when the username is taken.
	Create(ctx context.Context, u domain.User) (domain.User, error)

	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByUsername returns domain.ErrNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

// SessionRepo defines the persistence operations for server-side sessions.
type SessionRepo interface {
	Create(ctx context.Context, s domain.Session) (domain.Session, error)
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteExpired removes every session whose expiry is at or before now
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Store groups the repositories and runs units of work across them.
type Store interface {
	Cars() CarRepo
	Bookings() BookingRepo
	Users() UserRepo
	Sessions() SessionRepo

	// InTx runs fn against a Store whose writes either all apply or, when fn
	// returns an error, none do. Calling InTx on the Store passed to fn joins
	// the enclosing unit of work.
	InTx(ctx context.Context, fn func(Store) error) error
}
