package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

type CartRepository struct {
	db DBTX
}

const (
	cartLineColumns = `id, user_id, product_id, quantity, created_at, updated_at`

	listCartQuery = `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.id, p.name, p.short_desc, p.description, p.image, p.price, p.stock, p.created_at, p.updated_at
		FROM cart_lines c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id
	`
	getCartLineQuery  = `SELECT ` + cartLineColumns + ` FROM cart_lines WHERE id = $1`
	findCartLineQuery = `SELECT ` + cartLineColumns + ` FROM cart_lines WHERE user_id = $1 AND product_id = $2 FOR UPDATE`
	insertCartLine    = `
		INSERT INTO cart_lines (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	setCartQuantityQuery = `UPDATE cart_lines SET quantity = $1, updated_at = now() WHERE id = $2`
	deleteCartLineQuery  = `DELETE FROM cart_lines WHERE id = $1`
	clearCartQuery       = `DELETE FROM cart_lines WHERE user_id = $1`
	deleteCartLinesQuery = `DELETE FROM cart_lines WHERE user_id = $1 AND id = ANY($2)`
)

func scanCartLine(row rowScanner) (entity.CartLine, error) {
	var l entity.CartLine
	err := row.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *CartRepository) ListByUser(ctx context.Context, userID int64) ([]entity.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, listCartQuery, userID)
	if err != nil {
		return nil, mapError("list cart", err)
	}
	defer rows.Close()

	out := make([]entity.CartItem, 0)
	for rows.Next() {
		var it entity.CartItem
		p := &it.Product
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt,
			&p.ID, &p.Name, &p.ShortDesc, &p.Description, &p.Image, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, mapError("scan cart line", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *CartRepository) GetLine(ctx context.Context, lineID int64) (entity.CartLine, error) {
	l, err := scanCartLine(r.db.QueryRowContext(ctx, getCartLineQuery, lineID))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.CartLine{}, apperr.NotFoundf("cart line %d not found", lineID)
	}
	if err != nil {
		return entity.CartLine{}, mapError("get cart line", err)
	}
	return l, nil
}

func (r *CartRepository) FindLine(ctx context.Context, userID, productID int64) (entity.CartLine, bool, error) {
	l, err := scanCartLine(r.db.QueryRowContext(ctx, findCartLineQuery, userID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.CartLine{}, false, nil
	}
	if err != nil {
		return entity.CartLine{}, false, mapError("find cart line", err)
	}
	return l, true, nil
}

func (r *CartRepository) InsertLine(ctx context.Context, line *entity.CartLine) error {
	err := r.db.QueryRowContext(ctx, insertCartLine, line.UserID, line.ProductID, line.Quantity).
		Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return mapError("insert cart line", err)
	}
	return nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, lineID int64, qty int) error {
	res, err := r.db.ExecContext(ctx, setCartQuantityQuery, qty, lineID)
	if err != nil {
		return mapError("update cart line", err)
	}
	return expectOneRow(res, func() error { return apperr.NotFoundf("cart line %d not found", lineID) })
}

func (r *CartRepository) DeleteLine(ctx context.Context, lineID int64) error {
	res, err := r.db.ExecContext(ctx, deleteCartLineQuery, lineID)
	if err != nil {
		return mapError("delete cart line", err)
	}
	return expectOneRow(res, func() error { return apperr.NotFoundf("cart line %d not found", lineID) })
}

func (r *CartRepository) DeleteLines(ctx context.Context, userID int64, lineIDs []int64) (int, error) {
	res, err := r.db.ExecContext(ctx, deleteCartLinesQuery, userID, pq.Array(lineIDs))
	if err != nil {
		return 0, mapError("delete cart lines", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError("delete cart lines", err)
	}
	return int(n), nil
}

func (r *CartRepository) ClearUser(ctx context.Context, userID int64) (int, error) {
	res, err := r.db.ExecContext(ctx, clearCartQuery, userID)
	if err != nil {
		return 0, mapError("clear cart", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError("clear cart", err)
	}
	return int(n), nil
}
