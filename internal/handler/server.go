// Package handler implements the HTTP handlers for the car rental API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, car.go, booking.go, auth.go, stats.go) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/i18n"
	"github.com/pkordes/car-rental/internal/middleware"
	"github.com/pkordes/car-rental/internal/service"
)

// CarServicer defines the inventory operations the car handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the store or service layer.
type CarServicer interface {
	List(ctx context.Context) ([]domain.Car, error)
	GetByID(ctx context.Context, id string) (domain.Car, error)
	Create(ctx context.Context, in domain.CarInput) (domain.Car, error)
	Update(ctx context.Context, id string, patch domain.CarPatch) (domain.Car, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// BookingServicer defines the booking lifecycle operations.
type BookingServicer interface {
	List(ctx context.Context) ([]domain.BookingWithCar, error)
	GetByID(ctx context.Context, id string) (domain.BookingWithCar, error)
	Create(ctx context.Context, in domain.BookingInput) (domain.Booking, error)
	Update(ctx context.Context, id string, patch domain.BookingPatch) (domain.Booking, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AuthServicer defines account and session operations. ResolveSession also
// backs the session middleware mounted under /api.
type AuthServicer interface {
	Signup(ctx context.Context, in domain.Credentials) (service.AuthResult, error)
	Login(ctx context.Context, in domain.Credentials) (service.AuthResult, error)
	Logout(ctx context.Context, token string) error
	ResolveSession(ctx context.Context, token string) (domain.User, error)
}

// StatsServicer produces the back-office dashboard summary.
type StatsServicer interface {
	Summary(ctx context.Context) (domain.Stats, error)
}

// Services groups the business dependencies of Server.
type Services struct {
	Cars     CarServicer
	Bookings BookingServicer
	Auth     AuthServicer
	Stats    StatsServicer
}

// SessionCookie describes the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Server holds the dependencies shared by every handler.
type Server struct {
	cars     CarServicer
	bookings BookingServicer
	auth     AuthServicer
	stats    StatsServicer
	loc      *i18n.Localizer
	cookie   SessionCookie
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, loc *i18n.Localizer, cookie SessionCookie, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cars:     svc.Cars,
		bookings: svc.Bookings,
		auth:     svc.Auth,
		stats:    svc.Stats,
		loc:      loc,
		cookie:   cookie,
		log:      log,
	}
}

// Routes returns the API router. Cross-cutting middleware (request id,
// logging, CORS, body limits) is applied by the caller in main.go.
//
// Reads of the inventory, booking creation and /api/auth/* are public.
// Every other /api route requires an admin session.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewSessionHandler(s.auth, s.cookie.Name, s.log))

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", s.listCars)
			r.Get("/{id}", s.getCar)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/", s.createCar)
				r.Patch("/{id}", s.updateCar)
				r.Delete("/{id}", s.deleteCar)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", s.createBooking)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/", s.listBookings)
				r.Get("/{id}", s.getBooking)
				r.Patch("/{id}", s.updateBooking)
				r.Delete("/{id}", s.deleteBooking)
			})
		})

		r.With(s.requireAdmin).Get("/stats", s.getStats)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.signup)
			r.Post("/login", s.login)
			r.Post("/logout", s.logout)
			r.Get("/me", s.me)
		})
	})

	return r
}

// requireAdmin rejects anonymous callers with 401 and non-admin callers
// with 403.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := middleware.UserFromContext(r.Context())
		if !ok {
			s.writeError(w, r, domain.ErrUnauthenticated, "")
			return
		}
		if !u.IsAdmin() {
			s.writeError(w, r, domain.ErrForbidden, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
