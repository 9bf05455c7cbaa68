package entity

import "time"

// CartLine is one (user, product) entry. The pair is unique per user.
type CartLine struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartItem is a line joined with the live product it points at.
type CartItem struct {
	CartLine
	Product Product `json:"product"`
}
