package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
	"github.com/wichananm65/storefront/internal/domain/repository"
	"github.com/wichananm65/storefront/internal/infrastructure/database/inmemory"
)

var adminSubject = auth.Subject{ID: 1, Roles: auth.RolesFor(true)}

func seed(t *testing.T) *inmemory.Store {
	t.Helper()
	ctx := context.Background()
	store := inmemory.NewStore()
	repos := store.Repos()

	for _, name := range []string{"Bowl", "Leash", "Bed"} {
		p := entity.Product{Name: name, Price: decimal.NewFromInt(10), Stock: 1}
		require.NoError(t, repos.Products.Create(ctx, &p))
	}
	u := entity.User{Name: "Jenny", Email: "j@example.com", Mobile: "1", Password: "x"}
	require.NoError(t, repos.Users.Create(ctx, &u))

	kept := entity.Order{Number: "a", UserID: u.ID, Status: entity.OrderCompleted, Total: decimal.RequireFromString("572.00")}
	dropped := entity.Order{Number: "b", UserID: u.ID, Status: entity.OrderCancelled, Total: decimal.RequireFromString("100.00")}
	require.NoError(t, repos.Orders.Create(ctx, &kept))
	require.NoError(t, repos.Orders.Create(ctx, &dropped))
	return store
}

func TestStats(t *testing.T) {
	svc := NewService(seed(t))

	stats, err := svc.Stats(context.Background(), adminSubject)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, "572.00", stats.TotalRevenue.StringFixed(2))

	_, err = svc.Stats(context.Background(), auth.Subject{ID: 2, Roles: auth.RolesFor(false)})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

type brokenUsers struct{ repository.UserRepository }

func (brokenUsers) Count(context.Context) (int, error) { return 0, errors.New("connection reset") }

type brokenStore struct{ repository.Store }

func (s brokenStore) Repos() repository.Repositories {
	repos := s.Store.Repos()
	repos.Users = brokenUsers{repos.Users}
	return repos
}

func TestStatsReportsFirstError(t *testing.T) {
	svc := NewService(brokenStore{seed(t)})

	_, err := svc.Stats(context.Background(), adminSubject)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStatsRoute(t *testing.T) {
	verifier := auth.NewVerifier("test-secret", time.Hour)
	app := fiber.New()
	api := app.Group("/api/v1")
	api.Use(auth.Middleware(verifier))
	NewHandler(NewService(seed(t))).RegisterAdminRoutes(api.Group("/admin", auth.RequireRole(auth.RoleAdmin)))

	token, _, err := verifier.Issue(adminSubject)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(3), body["totalProducts"])
	assert.Equal(t, "572", body["totalRevenue"])

	customer, _, err := verifier.Issue(auth.Subject{ID: 2, Roles: auth.RolesFor(false)})
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+customer)
	res, err = app.Test(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
}
