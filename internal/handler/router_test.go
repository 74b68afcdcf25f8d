package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/handler"
	"github.com/pkordes/car-rental/internal/i18n"
	"github.com/pkordes/car-rental/internal/repo"
	"github.com/pkordes/car-rental/internal/service"
)

// newStackHandler wires the real services over an in-memory store.
func newStackHandler(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repo.NewMemoryStore()

	auth, err := service.NewAuthService(store, service.AuthConfig{
		Secret:     []byte("router-test-secret"),
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, log)
	require.NoError(t, err)
	_, _, err = auth.EnsureAdmin(t.Context(), "admin", "admin123")
	require.NoError(t, err)

	loc, err := i18n.New("en")
	require.NoError(t, err)

	return handler.NewServer(handler.Services{
		Cars:     service.NewCarService(store, nil, log, 100000),
		Bookings: service.NewBookingService(store, nil, log, false),
		Auth:     auth,
		Stats:    service.NewStatsService(store),
	}, loc, handler.SessionCookie{Name: cookieName}, log).Routes()
}

func loginAs(t *testing.T, h http.Handler, path, username, password string) string {
	t.Helper()
	rec := do(t, h, request{
		method: http.MethodPost, path: path,
		body: map[string]string{"username": username, "password": password},
	})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, rec.Code, rec.Body.String())
	return sessionCookie(t, rec).Value
}

// TestRentalFlow walks the Camry scenario end to end: an admin lists a car,
// an anonymous customer books it, and status changes cascade to the car.
func TestRentalFlow(t *testing.T) {
	h := newStackHandler(t)
	admin := loginAs(t, h, "/api/auth/login", "admin", "admin123")
	customer := loginAs(t, h, "/api/auth/signup", "khach", "secret123")

	rec := do(t, h, request{
		method: http.MethodPost, path: "/api/cars", token: admin,
		body: map[string]any{
			"brand": "Toyota", "model": "Camry", "year": 2023, "type": "sedan",
			"transmission": "automatic", "fuel": "gasoline", "seats": 5,
			"pricePerDay": 800000, "image": "/attached_assets/stock_images/camry.jpg",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	car := decode[domain.Car](t, rec)
	carPath := "/api/cars/" + car.ID

	rec = do(t, h, request{
		method: http.MethodPost, path: "/api/bookings",
		body: map[string]any{
			"carId": car.ID, "customerName": "Trần Thị Bình", "customerPhone": "0912345678",
			"customerId": "023456789012", "startDate": "2024-12-01", "endDate": "2024-12-03",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[handler.Booking](t, rec)
	assert.Equal(t, int64(1_600_000), booking.TotalPrice)
	assert.Equal(t, domain.BookingPending, booking.Status)
	bookingPath := "/api/bookings/" + booking.ID

	// A customer session cannot advance the lifecycle.
	rec = do(t, h, request{method: http.MethodPatch, path: bookingPath, token: customer, body: map[string]any{"status": "renting"}})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, request{method: http.MethodPatch, path: bookingPath, token: admin, body: map[string]any{"status": "renting"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, request{method: http.MethodGet, path: carPath})
	assert.Equal(t, domain.CarRented, decode[domain.Car](t, rec).Status)

	// The rented car cannot take a second booking.
	rec = do(t, h, request{
		method: http.MethodPost, path: "/api/bookings",
		body: map[string]any{
			"carId": car.ID, "customerName": "Lê Văn Cường", "customerPhone": "0987654321",
			"customerId": "034567890123", "startDate": "2024-12-10", "endDate": "2024-12-12",
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "precondition_failed", decode[handler.ErrorResponse](t, rec).Code)

	rec = do(t, h, request{method: http.MethodPatch, path: bookingPath, token: admin, body: map[string]any{"status": "returned"}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, request{method: http.MethodGet, path: carPath})
	assert.Equal(t, domain.CarAvailable, decode[domain.Car](t, rec).Status)

	rec = do(t, h, request{method: http.MethodGet, path: "/api/stats", token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1_600_000), decode[handler.Stats](t, rec).TotalRevenue)

	// Deleting the car leaves the booking with a null car.
	require.Equal(t, http.StatusNoContent, do(t, h, request{method: http.MethodDelete, path: carPath, token: admin}).Code)
	rec = do(t, h, request{method: http.MethodGet, path: bookingPath, token: admin})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[handler.BookingWithCar](t, rec).Car)
	assert.Equal(t, http.StatusNotFound, do(t, h, request{method: http.MethodDelete, path: carPath, token: admin}).Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	h := newStackHandler(t)
	admin := loginAs(t, h, "/api/auth/login", "admin", "admin123")

	require.Equal(t, http.StatusOK, do(t, h, request{method: http.MethodGet, path: "/api/auth/me", token: admin}).Code)
	require.Equal(t, http.StatusOK, do(t, h, request{method: http.MethodPost, path: "/api/auth/logout", token: admin}).Code)

	assert.Equal(t, http.StatusUnauthorized,
		do(t, h, request{method: http.MethodGet, path: "/api/auth/me", token: admin}).Code,
		"a copied token stops working after logout")
	assert.Equal(t, http.StatusUnauthorized,
		do(t, h, request{method: http.MethodGet, path: "/api/stats", token: admin}).Code)
}

func TestLogin_SameResponseForUnknownUserAndWrongPassword(t *testing.T) {
	h := newStackHandler(t)

	wrong := do(t, h, request{method: http.MethodPost, path: "/api/auth/login",
		body: map[string]string{"username": "admin", "password": "nope123"}})
	unknown := do(t, h, request{method: http.MethodPost, path: "/api/auth/login",
		body: map[string]string{"username": "ghost", "password": "nope123"}})

	require.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}
