package cart

import (
	"context"

	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/domain/repository"
	"github.com/wichananm65/storefront/internal/pricing"
	"github.com/wichananm65/storefront/internal/validation"
)

type Service struct {
	store  repository.Store
	policy pricing.Policy
}

func NewService(store repository.Store, policy pricing.Policy) *Service {
	return &Service{store: store, policy: policy}
}

func (s *Service) View(ctx context.Context, sub auth.Subject) (View, error) {
	items, err := s.store.Repos().Carts.ListByUser(ctx, sub.ID)
	if err != nil {
		return View{}, err
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.Product.Price, Quantity: it.Quantity})
	}
	return View{Items: items, Summary: s.policy.Calculate(lines)}, nil
}

// Add puts quantity units of a product in the caller's cart, merging with an
// existing line. The merged quantity must fit in the product's stock.
func (s *Service) Add(ctx context.Context, sub auth.Subject, in AddInput) (entity.CartLine, error) {
	if err := validation.Struct(in); err != nil {
		return entity.CartLine{}, err
	}

	var line entity.CartLine
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		// product row lock serialises concurrent adds of the same product
		p, err := tx.Products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}

		existing, found, err := tx.Carts.FindLine(ctx, sub.ID, in.ProductID)
		if err != nil {
			return err
		}

		want := in.Quantity
		if found {
			want += existing.Quantity
		}
		if want > p.Stock {
			return apperr.StockShortage(p.ID, p.Name, want, p.Stock)
		}

		if found {
			if err := tx.Carts.SetQuantity(ctx, existing.ID, want); err != nil {
				return err
			}
			line = existing
			line.Quantity = want
			return nil
		}

		line = entity.CartLine{UserID: sub.ID, ProductID: p.ID, Quantity: want}
		return tx.Carts.InsertLine(ctx, &line)
	})
	if err != nil {
		return entity.CartLine{}, err
	}
	return line, nil
}

// UpdateQuantity replaces the quantity of one of the caller's lines.
func (s *Service) UpdateQuantity(ctx context.Context, sub auth.Subject, lineID int64, in UpdateInput) (entity.CartLine, error) {
	if err := validation.Struct(in); err != nil {
		return entity.CartLine{}, err
	}

	var line entity.CartLine
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		var err error
		line, err = tx.Carts.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line.UserID != sub.ID {
			return apperr.New(apperr.Forbidden, "cart line %d belongs to another user", lineID)
		}

		p, err := tx.Products.GetForUpdate(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if in.Quantity > p.Stock {
			return apperr.StockShortage(p.ID, p.Name, in.Quantity, p.Stock)
		}

		line.Quantity = in.Quantity
		return tx.Carts.SetQuantity(ctx, lineID, in.Quantity)
	})
	if err != nil {
		return entity.CartLine{}, err
	}
	return line, nil
}

// Remove deletes one of the caller's lines. A line owned by someone else is
// reported as missing.
func (s *Service) Remove(ctx context.Context, sub auth.Subject, lineID int64) error {
	return s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		line, err := tx.Carts.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line.UserID != sub.ID {
			return apperr.NotFoundf("cart line %d not found", lineID)
		}
		return tx.Carts.DeleteLine(ctx, lineID)
	})
}

func (s *Service) Clear(ctx context.Context, sub auth.Subject) error {
	_, err := s.store.Repos().Carts.ClearUser(ctx, sub.ID)
	return err
}
