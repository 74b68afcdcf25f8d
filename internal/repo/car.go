package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/car-rental/internal/domain"
)

const carColumns = `id, brand, model, year, type, transmission, fuel, seats,
	price_per_day, image, description, status, features`

// pgCarRepo is the Postgres implementation of CarRepo.
type pgCarRepo struct {
	db db
}

// NewCarRepo constructs a CarRepo backed by the provided db connection.
func NewCarRepo(db db) CarRepo {
	return &pgCarRepo{db: db}
}

func carArgs(c domain.Car) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":            c.ID,
		"brand":         c.Brand,
		"model":         c.Model,
		"year":          c.Year,
		"type":          string(c.Type),
		"transmission":  string(c.Transmission),
		"fuel":          string(c.Fuel),
		"seats":         c.Seats,
		"price_per_day": c.PricePerDay,
		"image":         c.Image,
		"description":   c.Description, // nil becomes NULL
		"status":        string(c.Status),
		"features":      c.Features,
	}
}

func (r *pgCarRepo) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	const q = `
		INSERT INTO cars (id, brand, model, year, type, transmission, fuel, seats,
		                  price_per_day, image, description, status, features)
		VALUES (@id, @brand, @model, @year, @type, @transmission, @fuel, @seats,
		        @price_per_day, @image, @description, @status, @features)
		RETURNING ` + carColumns

	result, err := scanCar(r.db.QueryRow(ctx, q, carArgs(car)))
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgCarRepo) GetByID(ctx context.Context, id string) (domain.Car, error) {
	q := `SELECT ` + carColumns + ` FROM cars WHERE id = @id`

	result, err := scanCar(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

// List returns cars in insertion order.
func (r *pgCarRepo) List(ctx context.Context) ([]domain.Car, error) {
	q := `SELECT ` + carColumns + ` FROM cars ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.List: %w", err)
	}
	defer rows.Close()

	cars := []domain.Car{}
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CarRepo.List: scan: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CarRepo.List: rows: %w", err)
	}
	return cars, nil
}

func (r *pgCarRepo) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	const q = `
		UPDATE cars
		SET brand         = @brand,
		    model         = @model,
		    year          = @year,
		    type          = @type,
		    transmission  = @transmission,
		    fuel          = @fuel,
		    seats         = @seats,
		    price_per_day = @price_per_day,
		    image         = @image,
		    description   = @description,
		    status        = @status,
		    features      = @features
		WHERE id = @id
		RETURNING ` + carColumns

	result, err := scanCar(r.db.QueryRow(ctx, q, carArgs(car)))
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Update: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgCarRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cars WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.CarRepo.Delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanCar maps a single database row into a domain.Car.
// Nullable description and features scan into the *string fields directly.
func scanCar(s scanner) (domain.Car, error) {
	var (
		c                               domain.Car
		typ, transmission, fuel, status string
	)
	err := s.Scan(&c.ID, &c.Brand, &c.Model, &c.Year, &typ, &transmission, &fuel, &c.Seats,
		&c.PricePerDay, &c.Image, &c.Description, &status, &c.Features)
	if err != nil {
		return domain.Car{}, err
	}
	c.Type = domain.CarType(typ)
	c.Transmission = domain.Transmission(transmission)
	c.Fuel = domain.Fuel(fuel)
	c.Status = domain.CarStatus(status)
	return c, nil
}
