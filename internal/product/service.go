package product

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/domain/repository"
	"github.com/wichananm65/storefront/internal/validation"
)

type Service struct {
	store       repository.Store
	reader      Reader
	invalidator repository.CatalogInvalidator
}

// NewService builds the catalog service. cache may be nil, in which case reads
// go straight to the store.
func NewService(store repository.Store, cache Cache) *Service {
	s := &Service{
		store:       store,
		reader:      store.Repos().Products,
		invalidator: repository.NopInvalidator{},
	}
	if cache != nil {
		s.reader = cache
		s.invalidator = cache
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]entity.Product, error) {
	return s.reader.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (entity.Product, error) {
	return s.reader.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (entity.Product, error) {
	if err := validate(in); err != nil {
		return entity.Product{}, err
	}

	p := fromInput(in)
	if err := s.store.Repos().Products.Create(ctx, &p); err != nil {
		return entity.Product{}, err
	}
	s.invalidator.Invalidate(ctx, p.ID)
	log.Infow("product created", "product", p.ID, "stock", p.Stock)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (entity.Product, error) {
	if err := validate(in); err != nil {
		return entity.Product{}, err
	}

	p := fromInput(in)
	p.ID = id
	// lock the row so an admin edit cannot interleave with a checkout decrement
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Products.GetForUpdate(ctx, id); err != nil {
			return err
		}
		return tx.Products.Update(ctx, &p)
	})
	if err != nil {
		return entity.Product{}, err
	}
	s.invalidator.Invalidate(ctx, id)
	log.Infow("product updated", "product", id, "stock", p.Stock)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Repos().Products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx, id)
	log.Infow("product deleted", "product", id)
	return nil
}

func validate(in Input) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return apperr.New(apperr.ValidationFailed, "invalid payload").WithDetail("price", "must not be negative")
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return apperr.New(apperr.ValidationFailed, "invalid payload").WithDetail("price", "must have at most 2 decimal places")
	}
	return nil
}

func fromInput(in Input) entity.Product {
	return entity.Product{
		Name:        in.Name,
		ShortDesc:   in.ShortDesc,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price.Round(2),
		Stock:       *in.Stock,
	}
}
