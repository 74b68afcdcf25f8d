// Package seed loads the embedded sample inventory into a store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/repo"
)

//go:embed sample.yaml
var sample []byte

// Fixtures is the decoded sample data.
type Fixtures struct {
	Cars     []domain.Car
	Bookings []domain.Booking
}

type carYAML struct {
	ID           string  `yaml:"id"`
	Brand        string  `yaml:"brand"`
	Model        string  `yaml:"model"`
	Year         int     `yaml:"year"`
	Type         string  `yaml:"type"`
	Transmission string  `yaml:"transmission"`
	Fuel         string  `yaml:"fuel"`
	Seats        int     `yaml:"seats"`
	PricePerDay  int64   `yaml:"pricePerDay"`
	Image        string  `yaml:"image"`
	Description  *string `yaml:"description"`
	Status       string  `yaml:"status"`
	Features     *string `yaml:"features"`
}

type bookingYAML struct {
	ID            string `yaml:"id"`
	CarID         string `yaml:"carId"`
	CustomerName  string `yaml:"customerName"`
	CustomerPhone string `yaml:"customerPhone"`
	CustomerID    string `yaml:"customerId"`
	StartDate     string `yaml:"startDate"`
	EndDate       string `yaml:"endDate"`
	TotalPrice    int64  `yaml:"totalPrice"`
	Status        string `yaml:"status"`
	Notes         string `yaml:"notes"`
	CreatedAt     string `yaml:"createdAt"`
}

type document struct {
	Cars     []carYAML     `yaml:"cars"`
	Bookings []bookingYAML `yaml:"bookings"`
}

// Sample decodes the embedded sample inventory.
func Sample() (Fixtures, error) {
	return Parse(sample)
}

// Parse decodes a fixtures document. Enum values are checked so a typo in
// the file fails loudly instead of storing an arbitrary status.
func Parse(data []byte) (Fixtures, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Fixtures{}, fmt.Errorf("seed.Parse: %w", err)
	}

	var f Fixtures
	for _, c := range doc.Cars {
		car := domain.Car{
			ID:           c.ID,
			Brand:        c.Brand,
			Model:        c.Model,
			Year:         c.Year,
			Type:         domain.CarType(c.Type),
			Transmission: domain.Transmission(c.Transmission),
			Fuel:         domain.Fuel(c.Fuel),
			Seats:        c.Seats,
			PricePerDay:  c.PricePerDay,
			Image:        c.Image,
			Description:  c.Description,
			Status:       domain.CarStatus(c.Status),
			Features:     c.Features,
		}
		if !car.Status.Valid() {
			return Fixtures{}, fmt.Errorf("seed.Parse: car %s: invalid status %q", c.ID, c.Status)
		}
		f.Cars = append(f.Cars, car)
	}

	for _, b := range doc.Bookings {
		start, err := time.Parse(time.DateOnly, b.StartDate)
		if err != nil {
			return Fixtures{}, fmt.Errorf("seed.Parse: booking %s: startDate: %w", b.ID, err)
		}
		end, err := time.Parse(time.DateOnly, b.EndDate)
		if err != nil {
			return Fixtures{}, fmt.Errorf("seed.Parse: booking %s: endDate: %w", b.ID, err)
		}
		created, err := time.Parse(time.RFC3339, b.CreatedAt)
		if err != nil {
			return Fixtures{}, fmt.Errorf("seed.Parse: booking %s: createdAt: %w", b.ID, err)
		}
		booking := domain.Booking{
			ID:            b.ID,
			CarID:         b.CarID,
			CustomerName:  b.CustomerName,
			CustomerPhone: b.CustomerPhone,
			CustomerID:    b.CustomerID,
			StartDate:     start,
			EndDate:       end,
			TotalPrice:    b.TotalPrice,
			Status:        domain.BookingStatus(b.Status),
			Notes:         b.Notes,
			CreatedAt:     created,
		}
		if !booking.Status.Valid() {
			return Fixtures{}, fmt.Errorf("seed.Parse: booking %s: invalid status %q", b.ID, b.Status)
		}
		f.Bookings = append(f.Bookings, booking)
	}

	return f, nil
}

// Apply writes f into s in one unit of work. It does nothing and returns
// false when the store already holds any car.
func Apply(ctx context.Context, s repo.Store, f Fixtures) (bool, error) {
	existing, err := s.Cars().List(ctx)
	if err != nil {
		return false, fmt.Errorf("seed.Apply: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	err = s.InTx(ctx, func(tx repo.Store) error {
		for _, c := range f.Cars {
			if _, err := tx.Cars().Create(ctx, c); err != nil {
				return err
			}
		}
		for _, b := range f.Bookings {
			if _, err := tx.Bookings().Create(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed.Apply: %w", err)
	}
	return true, nil
}
