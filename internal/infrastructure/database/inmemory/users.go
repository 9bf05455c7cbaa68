package inmemory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

type userRepo struct {
	with access
	now  func() time.Time
}

func (r *userRepo) List(ctx context.Context) ([]entity.User, error) {
	out := make([]entity.User, 0)
	err := r.with(func(st *state) error {
		for _, u := range st.users {
			out = append(out, u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (entity.User, error) {
	var out entity.User
	err := r.with(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperr.NotFoundf("user %d not found", id)
		}
		out = u
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	var out entity.User
	err := r.with(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				out = u
				return nil
			}
		}
		return apperr.NotFoundf("user %q not found", email)
	})
	return out, err
}

func (r *userRepo) Create(ctx context.Context, u *entity.User) error {
	return r.with(func(st *state) error {
		if err := checkUnique(st, u); err != nil {
			return err
		}
		now := r.now()
		u.ID = st.nextUser
		st.nextUser++
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) Update(ctx context.Context, u *entity.User) error {
	return r.with(func(st *state) error {
		existing, ok := st.users[u.ID]
		if !ok {
			return apperr.NotFoundf("user %d not found", u.ID)
		}
		if err := checkUnique(st, u); err != nil {
			return err
		}
		u.CreatedAt = existing.CreatedAt
		u.UpdatedAt = r.now()
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return apperr.NotFoundf("user %d not found", id)
		}
		delete(st.users, id)
		for lineID, l := range st.lines {
			if l.UserID == id {
				delete(st.lines, lineID)
			}
		}
		return nil
	})
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	n := 0
	err := r.with(func(st *state) error {
		n = len(st.users)
		return nil
	})
	return n, err
}

func checkUnique(st *state, u *entity.User) error {
	for _, other := range st.users {
		if other.ID == u.ID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) {
			return apperr.New(apperr.Conflict, "email already registered")
		}
		if u.Mobile != "" && other.Mobile == u.Mobile {
			return apperr.New(apperr.Conflict, "mobile already registered")
		}
	}
	return nil
}
