package order

import "github.com/wichananm65/storefront/internal/domain/entity"

// PlaceOrderInput is the checkout payload. PaymentRef is an opaque reference
// from whatever collected the payment; it is stored, never verified.
type PlaceOrderInput struct {
	ShippingInfo  entity.ShippingInfo `json:"shippingInfo"`
	PaymentMethod string              `json:"paymentMethod" validate:"required,oneof=card upi netbanking cod"`
	PaymentRef    string              `json:"paymentRef" validate:"max=200"`
}

type StatusInput struct {
	Status entity.OrderStatus `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}
