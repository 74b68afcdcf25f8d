package domain

import (
	"math"
	"time"
)

// BookingStatus is the lifecycle state of a rental order.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRenting   BookingStatus = "renting"
	BookingReturned  BookingStatus = "returned"
	BookingCancelled BookingStatus = "cancelled"
)

// BookingStatuses lists every valid BookingStatus in lifecycle order.
var BookingStatuses = []BookingStatus{
	BookingPending, BookingConfirmed, BookingRenting, BookingReturned, BookingCancelled,
}

// Valid reports whether s is one of the declared booking statuses.
func (s BookingStatus) Valid() bool {
	for _, v := range BookingStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s BookingStatus) Terminal() bool {
	return s == BookingReturned || s == BookingCancelled
}

// transitions is the allowed-next-state table used when strict transitions
// are enabled. Writing the current state again is always allowed.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRenting, BookingCancelled},
	BookingConfirmed: {BookingRenting, BookingCancelled},
	BookingRenting:   {BookingReturned, BookingCancelled},
}

// CanTransition reports whether moving a booking from -> to is a legal step.
func CanTransition(from, to BookingStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CascadeCarStatus returns the car status implied by a booking moving into
// status s. The second result is false when s carries no car side effect.
// The rule depends only on the new status, never on the previous one.
func CascadeCarStatus(s BookingStatus) (CarStatus, bool) {
	switch s {
	case BookingRenting:
		return CarRented, true
	case BookingReturned, BookingCancelled:
		return CarAvailable, true
	default:
		return "", false
	}
}

// Booking is a customer's rental order for one car over a date range.
// StartDate and EndDate are calendar dates stored at UTC midnight.
// CustomerID is the customer's national identity number, not a user id.
type Booking struct {
	ID            string
	CarID         string
	CustomerName  string
	CustomerPhone string
	CustomerID    string
	StartDate     time.Time
	EndDate       time.Time
	TotalPrice    int64
	Status        BookingStatus
	Notes         string
	CreatedAt     time.Time
}

// BookingWithCar joins a booking with the current snapshot of its car.
// Car is nil when the car has been deleted since the booking was made.
type BookingWithCar struct {
	Booking
	Car *Car
}

// BookingInput is the caller-supplied data for a new booking.
// TotalPrice of zero asks the engine to quote the price itself.
type BookingInput struct {
	CarID         string    `json:"carId" validate:"required,notblank"`
	CustomerName  string    `json:"customerName" validate:"required,notblank,min=2"`
	CustomerPhone string    `json:"customerPhone" validate:"required,phone"`
	CustomerID    string    `json:"customerId" validate:"required,min=9,max=12"`
	StartDate     time.Time `json:"startDate" validate:"required"`
	EndDate       time.Time `json:"endDate" validate:"required"`
	TotalPrice    int64     `json:"totalPrice" validate:"gte=0"`
	Notes         string    `json:"notes"`
}

// BookingPatch carries a partial update. CarID and CreatedAt are immutable
// and therefore absent.
type BookingPatch struct {
	Status        *BookingStatus `json:"status" validate:"omitempty,oneof=pending confirmed renting returned cancelled"`
	CustomerName  *string        `json:"customerName" validate:"omitempty,notblank,min=2"`
	CustomerPhone *string        `json:"customerPhone" validate:"omitempty,phone"`
	CustomerID    *string        `json:"customerId" validate:"omitempty,min=9,max=12"`
	StartDate     *time.Time     `json:"startDate"`
	EndDate       *time.Time     `json:"endDate"`
	TotalPrice    *int64         `json:"totalPrice" validate:"omitempty,gt=0"`
	Notes         *string        `json:"notes"`
}

// Apply shallow-merges the non-nil fields of p over b and returns the result.
func (p BookingPatch) Apply(b Booking) Booking {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.CustomerName != nil {
		b.CustomerName = *p.CustomerName
	}
	if p.CustomerPhone != nil {
		b.CustomerPhone = *p.CustomerPhone
	}
	if p.CustomerID != nil {
		b.CustomerID = *p.CustomerID
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		b.EndDate = *p.EndDate
	}
	if p.TotalPrice != nil {
		b.TotalPrice = *p.TotalPrice
	}
	if p.Notes != nil {
		b.Notes = *p.Notes
	}
	return b
}

// RentalDays returns the number of whole days between two calendar dates.
// Time-of-day and zone are discarded before counting.
func RentalDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Unix()/secondsPerDay - s.Unix()/secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// QuoteTotal returns days × pricePerDay for the given range.
// Returns a *ValidationError when the range is not at least one day long.
func QuoteTotal(start, end time.Time, pricePerDay int64) (int64, error) {
	days := RentalDays(start, end)
	if days <= 0 {
		return 0, NewValidationError("endDate", "gtfield", "endDate must be after startDate")
	}
	if pricePerDay > 0 && int64(days) > math.MaxInt64/pricePerDay {
		return 0, NewValidationError("totalPrice", "totalmax", "totalPrice is too large for the rental period")
	}
	return int64(days) * pricePerDay, nil
}
