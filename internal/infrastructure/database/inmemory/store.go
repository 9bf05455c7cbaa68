// Package inmemory is a transactional in-memory Store used by tests and local runs.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/domain/repository"
)

type state struct {
	products map[int64]entity.Product
	lines    map[int64]entity.CartLine
	orders   map[int64]entity.Order
	users    map[int64]entity.User

	nextProduct, nextLine, nextOrder, nextOrderLine, nextUser int64
}

func newState() *state {
	return &state{
		products:      map[int64]entity.Product{},
		lines:         map[int64]entity.CartLine{},
		orders:        map[int64]entity.Order{},
		users:         map[int64]entity.User{},
		nextProduct:   1,
		nextLine:      1,
		nextOrder:     1,
		nextOrderLine: 1,
		nextUser:      1,
	}
}

func (s *state) clone() *state {
	c := *s
	c.products = make(map[int64]entity.Product, len(s.products))
	for k, v := range s.products {
		c.products[k] = v
	}
	c.lines = make(map[int64]entity.CartLine, len(s.lines))
	for k, v := range s.lines {
		c.lines[k] = v
	}
	c.orders = make(map[int64]entity.Order, len(s.orders))
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	c.users = make(map[int64]entity.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	return &c
}

func copyOrder(o entity.Order) entity.Order {
	o.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return o
}

// access runs fn against the state the repository is bound to.
type access func(fn func(st *state) error) error

// Store keeps every table behind one mutex. WithinTx runs against a private copy
// of the state and publishes it only when the callback succeeds, so a failed
// transaction leaves nothing behind.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// Repos returns repositories that lock the store per call.
func (s *Store) Repos() repository.Repositories {
	return s.bind(s.locked)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	draft := s.st.clone()
	direct := func(f func(st *state) error) error { return f(draft) }
	if err := fn(s.bind(direct)); err != nil {
		return err
	}
	s.st = draft
	return nil
}

func (s *Store) locked(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) bind(with access) repository.Repositories {
	return repository.Repositories{
		Products: &productRepo{with: with, now: s.now},
		Carts:    &cartRepo{with: with, now: s.now},
		Orders:   &orderRepo{with: with, now: s.now},
		Users:    &userRepo{with: with, now: s.now},
	}
}
