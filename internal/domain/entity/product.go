package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. Stock is the only authority on available units.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	ShortDesc   string          `json:"shortDesc"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
