package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

type cartRepo struct {
	with access
	now  func() time.Time
}

func (r *cartRepo) ListByUser(ctx context.Context, userID int64) ([]entity.CartItem, error) {
	out := make([]entity.CartItem, 0)
	err := r.with(func(st *state) error {
		for _, l := range st.lines {
			if l.UserID != userID {
				continue
			}
			p, ok := st.products[l.ProductID]
			if !ok {
				continue
			}
			out = append(out, entity.CartItem{CartLine: l, Product: p})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *cartRepo) GetLine(ctx context.Context, lineID int64) (entity.CartLine, error) {
	var out entity.CartLine
	err := r.with(func(st *state) error {
		l, ok := st.lines[lineID]
		if !ok {
			return apperr.NotFoundf("cart line %d not found", lineID)
		}
		out = l
		return nil
	})
	return out, err
}

func (r *cartRepo) FindLine(ctx context.Context, userID, productID int64) (entity.CartLine, bool, error) {
	var (
		out   entity.CartLine
		found bool
	)
	err := r.with(func(st *state) error {
		for _, l := range st.lines {
			if l.UserID == userID && l.ProductID == productID {
				out, found = l, true
				return nil
			}
		}
		return nil
	})
	return out, found, err
}

func (r *cartRepo) InsertLine(ctx context.Context, line *entity.CartLine) error {
	if line.Quantity <= 0 {
		return apperr.New(apperr.ValidationFailed, "quantity must be positive")
	}
	return r.with(func(st *state) error {
		for _, l := range st.lines {
			if l.UserID == line.UserID && l.ProductID == line.ProductID {
				return apperr.New(apperr.Conflict, "product %d already in cart", line.ProductID)
			}
		}
		if _, ok := st.products[line.ProductID]; !ok {
			return apperr.NotFoundf("product %d not found", line.ProductID)
		}
		now := r.now()
		line.ID = st.nextLine
		st.nextLine++
		line.CreatedAt, line.UpdatedAt = now, now
		st.lines[line.ID] = *line
		return nil
	})
}

func (r *cartRepo) SetQuantity(ctx context.Context, lineID int64, qty int) error {
	if qty <= 0 {
		return apperr.New(apperr.ValidationFailed, "quantity must be positive")
	}
	return r.with(func(st *state) error {
		l, ok := st.lines[lineID]
		if !ok {
			return apperr.NotFoundf("cart line %d not found", lineID)
		}
		l.Quantity = qty
		l.UpdatedAt = r.now()
		st.lines[lineID] = l
		return nil
	})
}

func (r *cartRepo) DeleteLine(ctx context.Context, lineID int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.lines[lineID]; !ok {
			return apperr.NotFoundf("cart line %d not found", lineID)
		}
		delete(st.lines, lineID)
		return nil
	})
}

func (r *cartRepo) DeleteLines(ctx context.Context, userID int64, lineIDs []int64) (int, error) {
	n := 0
	err := r.with(func(st *state) error {
		for _, id := range lineIDs {
			if l, ok := st.lines[id]; ok && l.UserID == userID {
				delete(st.lines, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *cartRepo) ClearUser(ctx context.Context, userID int64) (int, error) {
	n := 0
	err := r.with(func(st *state) error {
		for id, l := range st.lines {
			if l.UserID == userID {
				delete(st.lines, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
