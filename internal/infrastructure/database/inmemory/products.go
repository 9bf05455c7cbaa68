package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

type productRepo struct {
	with access
	now  func() time.Time
}

func (r *productRepo) List(ctx context.Context) ([]entity.Product, error) {
	out := make([]entity.Product, 0)
	err := r.with(func(st *state) error {
		for _, p := range st.products {
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (entity.Product, error) {
	var out entity.Product
	err := r.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return apperr.NotFoundf("product %d not found", id)
		}
		out = p
		return nil
	})
	return out, err
}

// GetForUpdate needs no row lock here; transactions already hold the store mutex.
func (r *productRepo) GetForUpdate(ctx context.Context, id int64) (entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) Create(ctx context.Context, p *entity.Product) error {
	if p.Stock < 0 || p.Price.IsNegative() {
		return apperr.New(apperr.ValidationFailed, "price and stock must not be negative")
	}
	return r.with(func(st *state) error {
		now := r.now()
		p.ID = st.nextProduct
		st.nextProduct++
		p.CreatedAt, p.UpdatedAt = now, now
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) Update(ctx context.Context, p *entity.Product) error {
	if p.Stock < 0 || p.Price.IsNegative() {
		return apperr.New(apperr.ValidationFailed, "price and stock must not be negative")
	}
	return r.with(func(st *state) error {
		existing, ok := st.products[p.ID]
		if !ok {
			return apperr.NotFoundf("product %d not found", p.ID)
		}
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = r.now()
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return apperr.NotFoundf("product %d not found", id)
		}
		delete(st.products, id)
		for lineID, l := range st.lines {
			if l.ProductID == id {
				delete(st.lines, lineID)
			}
		}
		return nil
	})
}

func (r *productRepo) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	changed := false
	err := r.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok || qty <= 0 || p.Stock < qty {
			return nil
		}
		p.Stock -= qty
		p.UpdatedAt = r.now()
		st.products[id] = p
		changed = true
		return nil
	})
	return changed, err
}

func (r *productRepo) IncrementStock(ctx context.Context, id int64, qty int) error {
	return r.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return nil
		}
		p.Stock += qty
		p.UpdatedAt = r.now()
		st.products[id] = p
		return nil
	})
}

func (r *productRepo) Count(ctx context.Context) (int, error) {
	n := 0
	err := r.with(func(st *state) error {
		n = len(st.products)
		return nil
	})
	return n, err
}
