package order

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/domain/repository"
	"github.com/wichananm65/storefront/internal/pricing"
	"github.com/wichananm65/storefront/internal/validation"
)

type Service struct {
	store       repository.Store
	policy      pricing.Policy
	invalidator repository.CatalogInvalidator
	now         func() time.Time
	newNumber   func() string
}

// NewService builds the order workflow. invalidator may be nil.
func NewService(store repository.Store, policy pricing.Policy, invalidator repository.CatalogInvalidator) *Service {
	if invalidator == nil {
		invalidator = repository.NopInvalidator{}
	}
	return &Service{
		store:       store,
		policy:      policy,
		invalidator: invalidator,
		now:         func() time.Time { return time.Now().UTC() },
		newNumber:   uuid.NewString,
	}
}

// PlaceOrder turns the caller's cart into an order. Reading the cart, checking
// stock, recording the order, decrementing stock and emptying the cart happen in
// one transaction; any failure leaves the store as it was. Nothing is retried.
func (s *Service) PlaceOrder(ctx context.Context, sub auth.Subject, in PlaceOrderInput) (entity.Order, error) {
	if err := validation.Struct(in); err != nil {
		return entity.Order{}, err
	}

	var order entity.Order
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		items, err := tx.Carts.ListByUser(ctx, sub.ID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(items) == 0 {
			return apperr.New(apperr.EmptyCart, "cart is empty")
		}

		priced := make([]pricing.Line, 0, len(items))
		lines := make([]entity.OrderLine, 0, len(items))
		for _, it := range items {
			if it.Quantity > it.Product.Stock {
				return apperr.StockShortage(it.Product.ID, it.Product.Name, it.Quantity, it.Product.Stock)
			}
			priced = append(priced, pricing.Line{UnitPrice: it.Product.Price, Quantity: it.Quantity})
			lines = append(lines, entity.OrderLine{
				ProductID: it.Product.ID,
				Name:      it.Product.Name,
				UnitPrice: it.Product.Price,
				Quantity:  it.Quantity,
			})
		}
		summary := s.policy.Calculate(priced)

		now := s.now()
		order = entity.Order{
			Number:        s.newNumber(),
			UserID:        sub.ID,
			Status:        entity.OrderPending,
			Subtotal:      summary.Subtotal,
			Tax:           summary.Tax,
			Shipping:      summary.Shipping,
			Total:         summary.Total,
			ShippingInfo:  in.ShippingInfo,
			PaymentMethod: in.PaymentMethod,
			PaymentRef:    in.PaymentRef,
			CreatedAt:     now,
			UpdatedAt:     now,
			Lines:         lines,
		}
		if err := tx.Orders.Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		// stock may have moved since the read above; the conditional update is
		// what actually guards against overselling
		for _, l := range order.Lines {
			ok, err := tx.Products.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return s.lostRace(ctx, tx, l)
			}
		}

		// only the lines that were ordered; anything added since stays
		if _, err := tx.Carts.DeleteLines(ctx, sub.ID, lineIDs(items)); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Warnw("checkout rejected", "user", sub.ID, "kind", apperr.KindOf(err).String(), "error", err)
		return entity.Order{}, err
	}

	s.invalidator.Invalidate(ctx, productIDs(order.Lines)...)
	log.Infow("order placed",
		"order", order.Number,
		"user", sub.ID,
		"lines", len(order.Lines),
		"total", order.Total.StringFixed(2),
	)
	return order, nil
}

// Get returns an order visible to sub: its owner or an admin.
func (s *Service) Get(ctx context.Context, sub auth.Subject, id int64) (entity.Order, error) {
	o, err := s.store.Repos().Orders.GetByID(ctx, id)
	if err != nil {
		return entity.Order{}, err
	}
	if o.UserID != sub.ID && !sub.IsAdmin() {
		return entity.Order{}, apperr.New(apperr.Forbidden, "order %d belongs to another user", id)
	}
	return o, nil
}

// ListMine returns the caller's orders, newest first.
func (s *Service) ListMine(ctx context.Context, sub auth.Subject) ([]entity.Order, error) {
	return s.store.Repos().Orders.ListByUser(ctx, sub.ID)
}

func (s *Service) ListAll(ctx context.Context, sub auth.Subject) ([]entity.Order, error) {
	if !sub.IsAdmin() {
		return nil, apperr.New(apperr.Forbidden, "admin role required")
	}
	return s.store.Repos().Orders.List(ctx)
}

// Cancel lets an owner withdraw a pending order.
func (s *Service) Cancel(ctx context.Context, sub auth.Subject, id int64) (entity.Order, error) {
	return s.UpdateStatus(ctx, sub, id, StatusInput{Status: entity.OrderCancelled})
}

// UpdateStatus moves an order along its lifecycle. Admins may make any allowed
// transition; owners may only cancel a pending order. Cancelling returns the
// ordered units to stock.
func (s *Service) UpdateStatus(ctx context.Context, sub auth.Subject, id int64, in StatusInput) (entity.Order, error) {
	if err := validation.Struct(in); err != nil {
		return entity.Order{}, err
	}

	var (
		order     entity.Order
		previous  entity.OrderStatus
		restocked []int64
	)
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		var err error
		order, err = tx.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if !sub.IsAdmin() {
			if order.UserID != sub.ID {
				return apperr.New(apperr.Forbidden, "order %d belongs to another user", id)
			}
			if in.Status != entity.OrderCancelled || order.Status != entity.OrderPending {
				return apperr.New(apperr.Forbidden, "only pending orders can be cancelled by their owner")
			}
		}
		if !order.Status.CanTransition(in.Status) {
			return apperr.New(apperr.ValidationFailed, "cannot change order from %s to %s", order.Status, in.Status)
		}

		if in.Status == entity.OrderCancelled {
			for _, l := range order.Lines {
				if err := tx.Products.IncrementStock(ctx, l.ProductID, l.Quantity); err != nil {
					return fmt.Errorf("restock: %w", err)
				}
			}
			restocked = productIDs(order.Lines)
		}

		previous = order.Status
		order.Status = in.Status
		return tx.Orders.UpdateStatus(ctx, &order)
	})
	if err != nil {
		return entity.Order{}, err
	}

	if len(restocked) > 0 {
		s.invalidator.Invalidate(ctx, restocked...)
	}
	log.Infow("order status changed", "order", order.Number, "from", previous, "to", order.Status, "by", sub.ID)
	return order, nil
}

// lostRace reports a decrement that matched no row with the stock left now.
func (s *Service) lostRace(ctx context.Context, tx repository.Repositories, l entity.OrderLine) error {
	available := 0
	p, err := tx.Products.GetByID(ctx, l.ProductID)
	switch {
	case err == nil:
		available = p.Stock
	case apperr.KindOf(err) != apperr.NotFound:
		return fmt.Errorf("reload product %d: %w", l.ProductID, err)
	}
	return apperr.StockShortage(l.ProductID, l.Name, l.Quantity, available)
}

func lineIDs(items []entity.CartItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func productIDs(lines []entity.OrderLine) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
