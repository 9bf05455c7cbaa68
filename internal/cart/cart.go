package cart

import (
	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/pricing"
)

type AddInput struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type UpdateInput struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

// View is the caller's cart priced at current catalog prices.
type View struct {
	Items   []entity.CartItem `json:"items"`
	Summary pricing.Summary   `json:"summary"`
}
