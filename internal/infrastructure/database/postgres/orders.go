package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

type OrderRepository struct {
	db DBTX
}

const (
	orderColumns = `id, number, user_id, status, subtotal, tax, shipping, total, shipping_info, payment_method, payment_ref, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (number, user_id, status, subtotal, tax, shipping, total, shipping_info, payment_method, payment_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	insertOrderLineQuery = `
		INSERT INTO order_lines (order_id, product_id, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	getOrderQuery         = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getOrderLockedQuery   = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	listOrdersByUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	listOrdersQuery       = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	listOrderLinesQuery   = `
		SELECT id, order_id, product_id, name, unit_price, quantity
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id
	`
	updateOrderStatusQuery = `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`
	orderTotalsQuery       = `SELECT count(*), COALESCE(SUM(total) FILTER (WHERE status <> 'cancelled'), 0) FROM orders`
)

func scanOrder(row rowScanner) (entity.Order, error) {
	var (
		o        entity.Order
		shipping []byte
	)
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.Status, &o.Subtotal, &o.Tax, &o.Shipping, &o.Total,
		&shipping, &o.PaymentMethod, &o.PaymentRef, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return entity.Order{}, err
	}
	if len(shipping) > 0 {
		if err := json.Unmarshal(shipping, &o.ShippingInfo); err != nil {
			return entity.Order{}, fmt.Errorf("decode shipping info: %w", err)
		}
	}
	return o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	shipping, err := json.Marshal(o.ShippingInfo)
	if err != nil {
		return fmt.Errorf("encode shipping info: %w", err)
	}

	err = r.db.QueryRowContext(ctx, insertOrderQuery,
		o.Number, o.UserID, o.Status, o.Subtotal, o.Tax, o.Shipping, o.Total,
		string(shipping), o.PaymentMethod, o.PaymentRef, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return mapError("insert order", err)
	}

	for i := range o.Lines {
		l := &o.Lines[i]
		l.OrderID = o.ID
		if err := r.db.QueryRowContext(ctx, insertOrderLineQuery,
			l.OrderID, l.ProductID, l.Name, l.UnitPrice, l.Quantity,
		).Scan(&l.ID); err != nil {
			return mapError("insert order line", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (entity.Order, error) {
	return r.get(ctx, getOrderQuery, id)
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, id int64) (entity.Order, error) {
	return r.get(ctx, getOrderLockedQuery, id)
}

func (r *OrderRepository) get(ctx context.Context, query string, id int64) (entity.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Order{}, apperr.NotFoundf("order %d not found", id)
	}
	if err != nil {
		return entity.Order{}, mapError("get order", err)
	}

	orders := []entity.Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return entity.Order{}, err
	}
	return orders[0], nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]entity.Order, error) {
	return r.list(ctx, listOrdersByUserQuery, userID)
}

func (r *OrderRepository) List(ctx context.Context) ([]entity.Order, error) {
	return r.list(ctx, listOrdersQuery)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list orders", err)
	}
	defer rows.Close()

	out := make([]entity.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, mapError("scan order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list orders", err)
	}
	if err := r.attachLines(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachLines loads the lines of every order in one query.
func (r *OrderRepository) attachLines(ctx context.Context, orders []entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Lines = make([]entity.OrderLine, 0)
	}

	rows, err := r.db.QueryContext(ctx, listOrderLinesQuery, pq.Array(ids))
	if err != nil {
		return mapError("list order lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.UnitPrice, &l.Quantity); err != nil {
			return mapError("scan order line", err)
		}
		if i, ok := index[l.OrderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, o *entity.Order) error {
	err := r.db.QueryRowContext(ctx, updateOrderStatusQuery, o.Status, o.ID).Scan(&o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("order %d not found", o.ID)
	}
	if err != nil {
		return mapError("update order status", err)
	}
	return nil
}

func (r *OrderRepository) Totals(ctx context.Context) (int, decimal.Decimal, error) {
	var (
		count   int
		revenue decimal.Decimal
	)
	if err := r.db.QueryRowContext(ctx, orderTotalsQuery).Scan(&count, &revenue); err != nil {
		return 0, decimal.Zero, mapError("order totals", err)
	}
	return count, revenue, nil
}
