package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

type UserRepository struct {
	db DBTX
}

const (
	userColumns = `id, name, email, mobile, password, address, is_admin, created_at, updated_at`

	listUsersQuery      = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	getUserQuery        = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	insertUserQuery     = `
		INSERT INTO users (name, email, mobile, password, address, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	updateUserQuery = `
		UPDATE users
		SET name = $1, email = $2, mobile = $3, password = $4, address = $5, is_admin = $6, updated_at = now()
		WHERE id = $7
		RETURNING created_at, updated_at
	`
	deleteUserQuery = `DELETE FROM users WHERE id = $1`
	countUsersQuery = `SELECT count(*) FROM users`
)

func scanUser(row rowScanner) (entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Mobile, &u.Password, &u.Address, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer rows.Close()

	out := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("scan user", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (entity.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, apperr.NotFoundf("user %d not found", id)
	}
	if err != nil {
		return entity.User{}, mapError("get user", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByEmailQuery, email))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, apperr.NotFoundf("user %q not found", email)
	}
	if err != nil {
		return entity.User{}, mapError("get user by email", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	err := r.db.QueryRowContext(ctx, insertUserQuery,
		u.Name, u.Email, u.Mobile, u.Password, u.Address, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return mapError("insert user", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	err := r.db.QueryRowContext(ctx, updateUserQuery,
		u.Name, u.Email, u.Mobile, u.Password, u.Address, u.IsAdmin, u.ID,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("user %d not found", u.ID)
	}
	if err != nil {
		return mapError("update user", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteUserQuery, id)
	if err != nil {
		return mapError("delete user", err)
	}
	return expectOneRow(res, func() error { return apperr.NotFoundf("user %d not found", id) })
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countUsersQuery).Scan(&n); err != nil {
		return 0, mapError("count users", err)
	}
	return n, nil
}
