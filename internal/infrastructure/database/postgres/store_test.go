package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/domain/repository"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(db), mock
}

var productCols = []string{"id", "name", "short_desc", "description", "image", "price", "stock", "created_at", "updated_at"}

func TestWithinTxCommit(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(2, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(ctx, func(tx repository.Repositories) error {
		ok, err := tx.Products.DecrementStock(ctx, 5, 2)
		require.True(t, ok)
		return err
	})
	require.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products SET stock = stock -").
		WithArgs(1, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.WithinTx(ctx, func(tx repository.Repositories) error {
		ok, err := tx.Products.DecrementStock(ctx, 5, 1)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrOutOfStock
		}
		return nil
	})
	assert.ErrorIs(t, err, apperr.ErrOutOfStock)
}

func TestWithinTxBeginFailure(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

	called := false
	err := store.WithinTx(context.Background(), func(repository.Repositories) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestProductGetByIDNotFound(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery("FROM products WHERE id").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := store.Repos().Products.GetByID(context.Background(), 9)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestProductList(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()
	rows := sqlmock.NewRows(productCols).
		AddRow(1, "Bowl", "short", "long", "/bowl.png", "120.50", 4, now, now).
		AddRow(2, "Bed", "", "", "", "840", 0, now, now)
	mock.ExpectQuery("FROM products ORDER BY id").WillReturnRows(rows)

	products, err := store.Repos().Products.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, decimal.RequireFromString("120.50").Equal(products[0].Price))
	assert.Equal(t, 4, products[0].Stock)
	assert.Equal(t, "Bed", products[1].Name)
}

func TestUserCreateConflict(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	u := entity.User{Name: "A", Email: "a@example.com", Mobile: "1", Password: "hash"}
	err := store.Repos().Users.Create(context.Background(), &u)
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "email already registered")
}

func TestCartDeleteLineNotFound(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec("DELETE FROM cart_lines WHERE id").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Repos().Carts.DeleteLine(context.Background(), 3)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCartDeleteLines(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM cart_lines WHERE user_id = \$1 AND id = ANY`).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.Repos().Carts.DeleteLines(context.Background(), 3, []int64{4, 5})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOrderCreateInsertsLines(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO order_lines").
		WithArgs(int64(11), int64(1), "Bowl", sqlmock.AnyArg(), 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectQuery("INSERT INTO order_lines").
		WithArgs(int64(11), int64(2), "Bed", sqlmock.AnyArg(), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(22))

	o := entity.Order{
		Number:    "6c1f4b8e-0f7a-4a55-9d4e-4f3c2f1f0a11",
		UserID:    3,
		Status:    entity.OrderPending,
		CreatedAt: now,
		UpdatedAt: now,
		Lines: []entity.OrderLine{
			{ProductID: 1, Name: "Bowl", UnitPrice: decimal.NewFromInt(200), Quantity: 2},
			{ProductID: 2, Name: "Bed", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
		},
	}
	require.NoError(t, store.Repos().Orders.Create(context.Background(), &o))
	assert.Equal(t, int64(11), o.ID)
	assert.Equal(t, int64(22), o.Lines[1].ID)
	assert.Equal(t, int64(11), o.Lines[1].OrderID)
}

func TestOrderListAttachesLines(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()
	cols := []string{"id", "number", "user_id", "status", "subtotal", "tax", "shipping", "total",
		"shipping_info", "payment_method", "payment_ref", "created_at", "updated_at"}

	mock.ExpectQuery("FROM orders WHERE user_id").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, "n2", 3, "pending", "400", "72", "100", "572", []byte(`{"name":"Ann","city":"Pune"}`), "cod", "", now, now).
			AddRow(1, "n1", 3, "cancelled", "600", "108", "0", "708", []byte(`{}`), "cod", "", now, now))
	mock.ExpectQuery("FROM order_lines").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "name", "unit_price", "quantity"}).
			AddRow(1, 1, 7, "Bed", "600", 1).
			AddRow(2, 2, 8, "Bowl", "200", 2))

	orders, err := store.Repos().Orders.ListByUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, entity.OrderPending, orders[0].Status)
	assert.Equal(t, "Pune", orders[0].ShippingInfo.City)
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, "Bowl", orders[0].Lines[0].Name)
	require.Len(t, orders[1].Lines, 1)
	assert.True(t, decimal.NewFromInt(708).Equal(orders[1].Total))
}

func TestOrderTotals(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(4, "1280.00"))

	count, revenue, err := store.Repos().Orders.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, "1280.00", revenue.StringFixed(2))
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range migrations {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
