package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

// ProductRepository is the catalog store. Missing products yield apperr.NotFound.
type ProductRepository interface {
	List(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id int64) (entity.Product, error)
	// GetForUpdate reads the product and locks it for the rest of the transaction.
	GetForUpdate(ctx context.Context, id int64) (entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id int64) error
	// DecrementStock subtracts qty only when stock >= qty. It reports false when
	// no row was changed.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
	IncrementStock(ctx context.Context, id int64, qty int) error
	Count(ctx context.Context) (int, error)
}

type CartRepository interface {
	// ListByUser returns the user's lines joined with live product data, oldest first.
	ListByUser(ctx context.Context, userID int64) ([]entity.CartItem, error)
	GetLine(ctx context.Context, lineID int64) (entity.CartLine, error)
	FindLine(ctx context.Context, userID, productID int64) (entity.CartLine, bool, error)
	InsertLine(ctx context.Context, line *entity.CartLine) error
	SetQuantity(ctx context.Context, lineID int64, qty int) error
	DeleteLine(ctx context.Context, lineID int64) error
	ClearUser(ctx context.Context, userID int64) (int, error)
	// DeleteLines removes the given lines of userID and reports how many went.
	DeleteLines(ctx context.Context, userID int64, lineIDs []int64) (int, error)
}

type OrderRepository interface {
	// Create inserts the order and its lines, filling in generated ids.
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id int64) (entity.Order, error)
	GetForUpdate(ctx context.Context, id int64) (entity.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.Order, error)
	List(ctx context.Context) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, o *entity.Order) error
	// Totals returns the order count and the revenue of orders that were not cancelled.
	Totals(ctx context.Context) (int, decimal.Decimal, error)
}

type UserRepository interface {
	List(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id int64) (entity.User, error)
	GetByEmail(ctx context.Context, email string) (entity.User, error)
	// Create and Update return apperr.Conflict when email or mobile is taken.
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository
	Users    UserRepository
}

// Transactor runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx Repositories) error) error
}

// Store is the persistence handle injected into every service.
type Store interface {
	Transactor
	Repos() Repositories
}

// CatalogInvalidator is told which products changed so cached reads can be dropped.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...int64)
}

// NopInvalidator is used when no cache is configured.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, ...int64) {}
