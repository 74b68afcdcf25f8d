package repo

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/pkordes/car-rental/internal/domain"
)

// collection is an insertion-ordered keyed map.
type collection[T any] struct {
	order []string
	items map[string]T
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) put(id string, v T) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == id })
	return true
}

func (c *collection[T]) all() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) clone() *collection[T] {
	return &collection[T]{
		order: slices.Clone(c.order),
		items: maps.Clone(c.items),
	}
}

type memData struct {
	cars     *collection[domain.Car]
	bookings *collection[domain.Booking]
	users    *collection[domain.User]
	sessions *collection[domain.Session]
}

func (d *memData) clone() memData {
	return memData{
		cars:     d.cars.clone(),
		bookings: d.bookings.clone(),
		users:    d.users.clone(),
		sessions: d.sessions.clone(),
	}
}

// MemoryStore is a process-local Store. State is lost on restart.
// A single mutex serializes every operation; InTx holds it for the whole
// unit of work and restores a snapshot when the work fails.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memData{
			cars:     newCollection[domain.Car](),
			bookings: newCollection[domain.Booking](),
			users:    newCollection[domain.User](),
			sessions: newCollection[domain.Session](),
		},
	}
}

func (s *MemoryStore) Cars() CarRepo         { return memCarRepo{s} }
func (s *MemoryStore) Bookings() BookingRepo { return memBookingRepo{s} }
func (s *MemoryStore) Users() UserRepo       { return memUserRepo{s} }
func (s *MemoryStore) Sessions() SessionRepo { return memSessionRepo{s} }

// InTx implements Store.
func (s *MemoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

// lock acquires the store mutex unless the caller already holds it via InTx.
func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ---- cars -------------------------------------------------------------------

type memCarRepo struct{ s *MemoryStore }

func (r memCarRepo) Create(_ context.Context, car domain.Car) (domain.Car, error) {
	defer r.s.lock()()
	if _, ok := r.s.data.cars.get(car.ID); ok {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Create: %w", domain.ErrConflict)
	}
	r.s.data.cars.put(car.ID, car)
	return car, nil
}

func (r memCarRepo) GetByID(_ context.Context, id string) (domain.Car, error) {
	defer r.s.lock()()
	car, ok := r.s.data.cars.get(id)
	if !ok {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.GetByID: %w", domain.ErrNotFound)
	}
	return car, nil
}

func (r memCarRepo) List(_ context.Context) ([]domain.Car, error) {
	defer r.s.lock()()
	return r.s.data.cars.all(), nil
}

func (r memCarRepo) Update(_ context.Context, car domain.Car) (domain.Car, error) {
	defer r.s.lock()()
	if _, ok := r.s.data.cars.get(car.ID); !ok {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Update: %w", domain.ErrNotFound)
	}
	r.s.data.cars.put(car.ID, car)
	return car, nil
}

func (r memCarRepo) Delete(_ context.Context, id string) (bool, error) {
	defer r.s.lock()()
	return r.s.data.cars.remove(id), nil
}

// ---- bookings ---------------------------------------------------------------

type memBookingRepo struct{ s *MemoryStore }

func (r memBookingRepo) Create(_ context.Context, b domain.Booking) (domain.Booking, error) {
	defer r.s.lock()()
	if _, ok := r.s.data.bookings.get(b.ID); ok {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", domain.ErrConflict)
	}
	r.s.data.bookings.put(b.ID, b)
	return b, nil
}

func (r memBookingRepo) GetByID(_ context.Context, id string) (domain.Booking, error) {
	defer r.s.lock()()
	b, ok := r.s.data.bookings.get(id)
	if !ok {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", domain.ErrNotFound)
	}
	return b, nil
}

func (r memBookingRepo) List(_ context.Context) ([]domain.Booking, error) {
	defer r.s.lock()()
	return r.s.data.bookings.all(), nil
}

func (r memBookingRepo) Update(_ context.Context, b domain.Booking) (domain.Booking, error) {
	defer r.s.lock()()
	if _, ok := r.s.data.bookings.get(b.ID); !ok {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Update: %w", domain.ErrNotFound)
	}
	r.s.data.bookings.put(b.ID, b)
	return b, nil
}

func (r memBookingRepo) Delete(_ context.Context, id string) (bool, error) {
	defer r.s.lock()()
	return r.s.data.bookings.remove(id), nil
}

// ---- users ------------------------------------------------------------------

type memUserRepo struct{ s *MemoryStore }

func (r memUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	defer r.s.lock()()
	if _, ok := r.s.data.users.get(u.ID); ok {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", domain.ErrConflict)
	}
	for _, existing := range r.s.data.users.all() {
		if existing.Username == u.Username {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Create: username %q: %w", u.Username, domain.ErrUsernameTaken)
		}
	}
	r.s.data.users.put(u.ID, u)
	return u, nil
}

func (r memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	defer r.s.lock()()
	u, ok := r.s.data.users.get(id)
	if !ok {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", domain.ErrNotFound)
	}
	return u, nil
}

func (r memUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	defer r.s.lock()()
	for _, u := range r.s.data.users.all() {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("repo.UserRepo.GetByUsername: %w", domain.ErrNotFound)
}

// ---- sessions ---------------------------------------------------------------

type memSessionRepo struct{ s *MemoryStore }

func (r memSessionRepo) Create(_ context.Context, sess domain.Session) (domain.Session, error) {
	defer r.s.lock()()
	if _, ok := r.s.data.users.get(sess.UserID); !ok {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.Create: user %q: %w", sess.UserID, domain.ErrNotFound)
	}
	r.s.data.sessions.put(sess.ID, sess)
	return sess, nil
}

func (r memSessionRepo) GetByID(_ context.Context, id string) (domain.Session, error) {
	defer r.s.lock()()
	sess, ok := r.s.data.sessions.get(id)
	if !ok {
		return domain.Session{}, fmt.Errorf("repo.SessionRepo.GetByID: %w", domain.ErrNotFound)
	}
	return sess, nil
}

func (r memSessionRepo) Delete(_ context.Context, id string) (bool, error) {
	defer r.s.lock()()
	return r.s.data.sessions.remove(id), nil
}

func (r memSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	defer r.s.lock()()
	n := 0
	for _, sess := range r.s.data.sessions.all() {
		if sess.Expired(now) {
			r.s.data.sessions.remove(sess.ID)
			n++
		}
	}
	return n, nil
}
