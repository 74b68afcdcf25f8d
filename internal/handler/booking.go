package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/i18n"
)

// CreateBookingRequest is the body of POST /api/bookings.
// Dates travel as YYYY-MM-DD; a zero TotalPrice asks for a quote.
type CreateBookingRequest struct {
	CarID         string             `json:"carId"`
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	CustomerID    string             `json:"customerId"`
	StartDate     openapi_types.Date `json:"startDate"`
	EndDate       openapi_types.Date `json:"endDate"`
	TotalPrice    int64              `json:"totalPrice"`
	Notes         string             `json:"notes"`
}

// UpdateBookingRequest is the body of PATCH /api/bookings/{id}.
// Absent fields are left unchanged.
type UpdateBookingRequest struct {
	Status        *domain.BookingStatus `json:"status"`
	CustomerName  *string               `json:"customerName"`
	CustomerPhone *string               `json:"customerPhone"`
	CustomerID    *string               `json:"customerId"`
	StartDate     *openapi_types.Date   `json:"startDate"`
	EndDate       *openapi_types.Date   `json:"endDate"`
	TotalPrice    *int64                `json:"totalPrice"`
	Notes         *string               `json:"notes"`
}

// Booking is the wire form of domain.Booking.
type Booking struct {
	ID            string               `json:"id"`
	CarID         string               `json:"carId"`
	CustomerName  string               `json:"customerName"`
	CustomerPhone string               `json:"customerPhone"`
	CustomerID    string               `json:"customerId"`
	StartDate     openapi_types.Date   `json:"startDate"`
	EndDate       openapi_types.Date   `json:"endDate"`
	TotalPrice    int64                `json:"totalPrice"`
	Status        domain.BookingStatus `json:"status"`
	Notes         *string              `json:"notes"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// BookingWithCar is a Booking plus the current car, or null when the car
// has been deleted.
type BookingWithCar struct {
	Booking
	Car *domain.Car `json:"car"`
}

// listBookings handles GET /api/bookings.
func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	list, err := s.bookings.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, bookingsWithCarToResponse(list))
}

// getBooking handles GET /api/bookings/{id}.
func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, i18n.MsgBookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, bookingWithCarToResponse(b))
}

// createBooking handles POST /api/bookings. No session is required.
func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	created, err := s.bookings.Create(r.Context(), requestToBookingInput(req))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, bookingToResponse(created))
}

// updateBooking handles PATCH /api/bookings/{id}. A status change is
// cascaded to the car before the response is written.
func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	updated, err := s.bookings.Update(r.Context(), chi.URLParam(r, "id"), requestToBookingPatch(req))
	if err != nil {
		s.writeError(w, r, err, i18n.MsgBookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(updated))
}

// deleteBooking handles DELETE /api/bookings/{id}.
func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request) {
	ok, err := s.bookings.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, i18n.MsgBookingNotFound)
		return
	}
	if !ok {
		s.writeError(w, r, domain.ErrNotFound, i18n.MsgBookingNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func requestToBookingInput(req CreateBookingRequest) domain.BookingInput {
	return domain.BookingInput{
		CarID:         req.CarID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerID:    req.CustomerID,
		StartDate:     req.StartDate.Time,
		EndDate:       req.EndDate.Time,
		TotalPrice:    req.TotalPrice,
		Notes:         req.Notes,
	}
}

func requestToBookingPatch(req UpdateBookingRequest) domain.BookingPatch {
	p := domain.BookingPatch{
		Status:        req.Status,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerID:    req.CustomerID,
		TotalPrice:    req.TotalPrice,
		Notes:         req.Notes,
	}
	if req.StartDate != nil {
		p.StartDate = &req.StartDate.Time
	}
	if req.EndDate != nil {
		p.EndDate = &req.EndDate.Time
	}
	return p
}

func bookingToResponse(b domain.Booking) Booking {
	resp := Booking{
		ID:            b.ID,
		CarID:         b.CarID,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		CustomerID:    b.CustomerID,
		StartDate:     openapi_types.Date{Time: b.StartDate},
		EndDate:       openapi_types.Date{Time: b.EndDate},
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
	if b.Notes != "" {
		resp.Notes = &b.Notes
	}
	return resp
}

func bookingWithCarToResponse(b domain.BookingWithCar) BookingWithCar {
	return BookingWithCar{Booking: bookingToResponse(b.Booking), Car: b.Car}
}

func bookingsWithCarToResponse(list []domain.BookingWithCar) []BookingWithCar {
	out := make([]BookingWithCar, len(list))
	for i, b := range list {
		out[i] = bookingWithCarToResponse(b)
	}
	return out
}
