package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

type orderRepo struct {
	with access
	now  func() time.Time
}

func (r *orderRepo) Create(ctx context.Context, o *entity.Order) error {
	return r.with(func(st *state) error {
		now := r.now()
		o.ID = st.nextOrder
		st.nextOrder++
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		if o.UpdatedAt.IsZero() {
			o.UpdatedAt = o.CreatedAt
		}
		for i := range o.Lines {
			o.Lines[i].ID = st.nextOrderLine
			o.Lines[i].OrderID = o.ID
			st.nextOrderLine++
		}
		st.orders[o.ID] = copyOrder(*o)
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (entity.Order, error) {
	var out entity.Order
	err := r.with(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return apperr.NotFoundf("order %d not found", id)
		}
		out = copyOrder(o)
		return nil
	})
	return out, err
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id int64) (entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]entity.Order, error) {
	return r.list(func(o entity.Order) bool { return o.UserID == userID })
}

func (r *orderRepo) List(ctx context.Context) ([]entity.Order, error) {
	return r.list(func(entity.Order) bool { return true })
}

func (r *orderRepo) list(keep func(entity.Order) bool) ([]entity.Order, error) {
	out := make([]entity.Order, 0)
	err := r.with(func(st *state) error {
		for _, o := range st.orders {
			if keep(o) {
				out = append(out, copyOrder(o))
			}
		}
		return nil
	})
	// newest first
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	return r.with(func(st *state) error {
		existing, ok := st.orders[o.ID]
		if !ok {
			return apperr.NotFoundf("order %d not found", o.ID)
		}
		existing.Status = o.Status
		existing.UpdatedAt = r.now()
		o.UpdatedAt = existing.UpdatedAt
		st.orders[o.ID] = existing
		return nil
	})
}

func (r *orderRepo) Totals(ctx context.Context) (int, decimal.Decimal, error) {
	count, revenue := 0, decimal.Zero
	err := r.with(func(st *state) error {
		count = len(st.orders)
		for _, o := range st.orders {
			if o.Status != entity.OrderCancelled {
				revenue = revenue.Add(o.Total)
			}
		}
		return nil
	})
	return count, revenue, err
}
