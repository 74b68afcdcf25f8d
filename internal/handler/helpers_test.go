package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/handler"
	"github.com/pkordes/car-rental/internal/i18n"
	"github.com/pkordes/car-rental/internal/service"
)

const cookieName = "rental_session"

// Session tokens understood by the default mockAuthServicer.
const (
	adminToken    = "admin-token"
	customerToken = "customer-token"
)

var (
	adminUser    = domain.User{ID: "user-admin", Username: "admin", Role: domain.RoleAdmin}
	customerUser = domain.User{ID: "user-khach", Username: "khach", Role: domain.RoleCustomer}
)

// ---- mocks -----------------------------------------------------------------

// mockCarServicer is a test double for handler.CarServicer.
// Set only the method fields your test needs.
type mockCarServicer struct {
	list    func(ctx context.Context) ([]domain.Car, error)
	getByID func(ctx context.Context, id string) (domain.Car, error)
	create  func(ctx context.Context, in domain.CarInput) (domain.Car, error)
	update  func(ctx context.Context, id string, p domain.CarPatch) (domain.Car, error)
	delete  func(ctx context.Context, id string) (bool, error)
}

func (m *mockCarServicer) List(ctx context.Context) ([]domain.Car, error) { return m.list(ctx) }
func (m *mockCarServicer) GetByID(ctx context.Context, id string) (domain.Car, error) {
	return m.getByID(ctx, id)
}
func (m *mockCarServicer) Create(ctx context.Context, in domain.CarInput) (domain.Car, error) {
	return m.create(ctx, in)
}
func (m *mockCarServicer) Update(ctx context.Context, id string, p domain.CarPatch) (domain.Car, error) {
	return m.update(ctx, id, p)
}
func (m *mockCarServicer) Delete(ctx context.Context, id string) (bool, error) {
	return m.delete(ctx, id)
}

// compile-time check: mockCarServicer must satisfy handler.CarServicer.
var _ handler.CarServicer = (*mockCarServicer)(nil)

// mockBookingServicer is a test double for handler.BookingServicer.
type mockBookingServicer struct {
	list    func(ctx context.Context) ([]domain.BookingWithCar, error)
	getByID func(ctx context.Context, id string) (domain.BookingWithCar, error)
	create  func(ctx context.Context, in domain.BookingInput) (domain.Booking, error)
	update  func(ctx context.Context, id string, p domain.BookingPatch) (domain.Booking, error)
	delete  func(ctx context.Context, id string) (bool, error)
}

func (m *mockBookingServicer) List(ctx context.Context) ([]domain.BookingWithCar, error) {
	return m.list(ctx)
}
func (m *mockBookingServicer) GetByID(ctx context.Context, id string) (domain.BookingWithCar, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingServicer) Create(ctx context.Context, in domain.BookingInput) (domain.Booking, error) {
	return m.create(ctx, in)
}
func (m *mockBookingServicer) Update(ctx context.Context, id string, p domain.BookingPatch) (domain.Booking, error) {
	return m.update(ctx, id, p)
}
func (m *mockBookingServicer) Delete(ctx context.Context, id string) (bool, error) {
	return m.delete(ctx, id)
}

// compile-time check: mockBookingServicer must satisfy handler.BookingServicer.
var _ handler.BookingServicer = (*mockBookingServicer)(nil)

// mockAuthServicer is a test double for handler.AuthServicer. When
// resolveSession is unset, adminToken and customerToken resolve to
// adminUser and customerUser.
type mockAuthServicer struct {
	signup         func(ctx context.Context, in domain.Credentials) (service.AuthResult, error)
	login          func(ctx context.Context, in domain.Credentials) (service.AuthResult, error)
	logout         func(ctx context.Context, token string) error
	resolveSession func(ctx context.Context, token string) (domain.User, error)
}

func (m *mockAuthServicer) Signup(ctx context.Context, in domain.Credentials) (service.AuthResult, error) {
	return m.signup(ctx, in)
}
func (m *mockAuthServicer) Login(ctx context.Context, in domain.Credentials) (service.AuthResult, error) {
	return m.login(ctx, in)
}
func (m *mockAuthServicer) Logout(ctx context.Context, token string) error {
	return m.logout(ctx, token)
}
func (m *mockAuthServicer) ResolveSession(ctx context.Context, token string) (domain.User, error) {
	if m.resolveSession != nil {
		return m.resolveSession(ctx, token)
	}
	switch token {
	case adminToken:
		return adminUser, nil
	case customerToken:
		return customerUser, nil
	}
	return domain.User{}, domain.ErrUnauthenticated
}

// compile-time check: mockAuthServicer must satisfy handler.AuthServicer.
var _ handler.AuthServicer = (*mockAuthServicer)(nil)

// mockStatsServicer is a test double for handler.StatsServicer.
type mockStatsServicer struct {
	summary func(ctx context.Context) (domain.Stats, error)
}

func (m *mockStatsServicer) Summary(ctx context.Context) (domain.Stats, error) {
	return m.summary(ctx)
}

var _ handler.StatsServicer = (*mockStatsServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its chi router,
// the same way main.go does. Nil services are replaced by empty mocks.
func newHTTPHandler(t *testing.T, svc handler.Services) http.Handler {
	t.Helper()
	if svc.Cars == nil {
		svc.Cars = &mockCarServicer{}
	}
	if svc.Bookings == nil {
		svc.Bookings = &mockBookingServicer{}
	}
	if svc.Auth == nil {
		svc.Auth = &mockAuthServicer{}
	}
	if svc.Stats == nil {
		svc.Stats = &mockStatsServicer{}
	}
	loc, err := i18n.New("en")
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(svc, loc, handler.SessionCookie{Name: cookieName}, log).Routes()
}

// request describes one call made through do.
type request struct {
	method string
	path   string
	body   any    // marshalled to JSON unless it is a string
	token  string // session cookie value, if any
	lang   string // Accept-Language, if any
}

func do(t *testing.T, h http.Handler, in request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch b := in.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(in.method, in.path, body)
	req.Header.Set("Content-Type", "application/json")
	if in.token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: in.token})
	}
	if in.lang != "" {
		req.Header.Set("Accept-Language", in.lang)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func ptr[T any](v T) *T { return &v }

func carFixture() domain.Car {
	return domain.Car{
		ID:           "car-1",
		Brand:        "Toyota",
		Model:        "Camry",
		Year:         2023,
		Type:         domain.CarSedan,
		Transmission: domain.TransmissionAutomatic,
		Fuel:         domain.FuelGasoline,
		Seats:        5,
		PricePerDay:  800000,
		Image:        "/attached_assets/stock_images/luxury_sedan_car_pro_15cee928.jpg",
		Status:       domain.CarAvailable,
		Features:     ptr("Camera lùi, GPS, Bluetooth"),
	}
}
