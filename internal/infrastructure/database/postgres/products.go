package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

type ProductRepository struct {
	db DBTX
}

const (
	productColumns = `id, name, short_desc, description, image, price, stock, created_at, updated_at`

	listProductsQuery     = `SELECT ` + productColumns + ` FROM products ORDER BY id`
	getProductQuery       = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	getProductLockedQuery = `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	insertProductQuery    = `
		INSERT INTO products (name, short_desc, description, image, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1, short_desc = $2, description = $3, image = $4, price = $5, stock = $6, updated_at = now()
		WHERE id = $7
		RETURNING created_at, updated_at
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
	// the stock >= $1 guard makes the decrement a no-op instead of going negative
	decrementStockQuery = `UPDATE products SET stock = stock - $1, updated_at = now() WHERE id = $2 AND stock >= $1`
	incrementStockQuery = `UPDATE products SET stock = stock + $1, updated_at = now() WHERE id = $2`
	countProductsQuery  = `SELECT count(*) FROM products`
)

func scanProduct(row rowScanner) (entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.ShortDesc, &p.Description, &p.Image, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepository) List(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()

	out := make([]entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError("scan product", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (entity.Product, error) {
	return r.get(ctx, getProductQuery, id)
}

func (r *ProductRepository) GetForUpdate(ctx context.Context, id int64) (entity.Product, error) {
	return r.get(ctx, getProductLockedQuery, id)
}

func (r *ProductRepository) get(ctx context.Context, query string, id int64) (entity.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Product{}, apperr.NotFoundf("product %d not found", id)
	}
	if err != nil {
		return entity.Product{}, mapError("get product", err)
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	err := r.db.QueryRowContext(ctx, insertProductQuery,
		p.Name, p.ShortDesc, p.Description, p.Image, p.Price, p.Stock,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return mapError("insert product", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	err := r.db.QueryRowContext(ctx, updateProductQuery,
		p.Name, p.ShortDesc, p.Description, p.Image, p.Price, p.Stock, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFoundf("product %d not found", p.ID)
	}
	if err != nil {
		return mapError("update product", err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return mapError("delete product", err)
	}
	return expectOneRow(res, func() error { return apperr.NotFoundf("product %d not found", id) })
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx, decrementStockQuery, qty, id)
	if err != nil {
		return false, mapError("decrement stock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError("decrement stock", err)
	}
	return n == 1, nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id int64, qty int) error {
	if _, err := r.db.ExecContext(ctx, incrementStockQuery, qty, id); err != nil {
		return mapError("increment stock", err)
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countProductsQuery).Scan(&n); err != nil {
		return 0, mapError("count products", err)
	}
	return n, nil
}

func expectOneRow(res sql.Result, notFound func() error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound()
	}
	return nil
}
