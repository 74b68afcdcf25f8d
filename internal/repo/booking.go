package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/car-rental/internal/domain"
)

const bookingColumns = `id, car_id, customer_name, customer_phone, customer_id,
	start_date, end_date, total_price, status, notes, created_at`

// pgBookingRepo is the Postgres implementation of BookingRepo.
// car_id carries no foreign key, so bookings outlive their car.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

func bookingArgs(b domain.Booking) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":             b.ID,
		"car_id":         b.CarID,
		"customer_name":  b.CustomerName,
		"customer_phone": b.CustomerPhone,
		"customer_id":    b.CustomerID,
		"start_date":     pgtype.Date{Time: b.StartDate, Valid: true},
		"end_date":       pgtype.Date{Time: b.EndDate, Valid: true},
		"total_price":    b.TotalPrice,
		"status":         string(b.Status),
		"notes":          b.Notes,
		"created_at":     b.CreatedAt,
	}
}

func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (id, car_id, customer_name, customer_phone, customer_id,
		                      start_date, end_date, total_price, status, notes, created_at)
		VALUES (@id, @car_id, @customer_name, @customer_phone, @customer_id,
		        @start_date, @end_date, @total_price, @status, @notes, @created_at)
		RETURNING ` + bookingColumns

	result, err := scanBooking(r.db.QueryRow(ctx, q, bookingArgs(b)))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id`

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", mapErr(err))
	}
	return result, nil
}

// List returns bookings newest first.
func (r *pgBookingRepo) List(ctx context.Context) ([]domain.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: %w", err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.List: scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: rows: %w", err)
	}
	return bookings, nil
}

// Update overwrites the mutable fields of a booking. car_id and created_at
// are never written.
func (r *pgBookingRepo) Update(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET customer_name  = @customer_name,
		    customer_phone = @customer_phone,
		    customer_id    = @customer_id,
		    start_date     = @start_date,
		    end_date       = @end_date,
		    total_price    = @total_price,
		    status         = @status,
		    notes          = @notes
		WHERE id = @id
		RETURNING ` + bookingColumns

	result, err := scanBooking(r.db.QueryRow(ctx, q, bookingArgs(b)))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Update: %w", mapErr(err))
	}
	return result, nil
}

func (r *pgBookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return false, fmt.Errorf("repo.BookingRepo.Delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanBooking maps a single database row into a domain.Booking.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b          domain.Booking
		start, end pgtype.Date
		status     string
	)
	err := s.Scan(&b.ID, &b.CarID, &b.CustomerName, &b.CustomerPhone, &b.CustomerID,
		&start, &end, &b.TotalPrice, &status, &b.Notes, &b.CreatedAt)
	if err != nil {
		return domain.Booking{}, err
	}
	b.StartDate = start.Time
	b.EndDate = end.Time
	b.Status = domain.BookingStatus(status)
	return b, nil
}
