package product

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/domain/repository"
)

// Input is the admin create/update payload. Every field is required on update
// too; there is no partial edit.
type Input struct {
	Name        string           `json:"name" validate:"required,max=200"`
	ShortDesc   string           `json:"shortDesc" validate:"max=500"`
	Description string           `json:"description" validate:"required"`
	Image       string           `json:"image" validate:"required,max=1000"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Stock       *int             `json:"stock" validate:"required,gte=0"`
}

// Reader is where public catalog reads come from.
type Reader interface {
	List(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id int64) (entity.Product, error)
}

// Cache is a Reader that can be told about product changes.
type Cache interface {
	Reader
	repository.CatalogInvalidator
}
