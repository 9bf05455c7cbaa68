package order

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/auth"
)

const checkoutPayload = `{
	"shippingInfo": {"name":"Alice","phone":"9999999999","address":"12 Market Road","city":"Pune","state":"MH","pincode":"411001"},
	"paymentMethod": "upi",
	"paymentRef": "upi-42"
}`

func makeAppWithOrderHandler(t *testing.T, h *Handler) (*fiber.App, map[string]string) {
	t.Helper()
	verifier := auth.NewVerifier("test-secret", time.Hour)
	app := fiber.New()
	api := app.Group("/api/v1")
	api.Use(auth.Middleware(verifier))
	h.RegisterProtectedRoutes(api)
	h.RegisterAdminRoutes(api.Group("/admin", auth.RequireRole(auth.RoleAdmin)))

	tokens := map[string]string{}
	for name, sub := range map[string]auth.Subject{"alice": alice, "bob": bob, "admin": admin} {
		token, _, err := verifier.Issue(sub)
		require.NoError(t, err)
		tokens[name] = token
	}
	return app, tokens
}

func send(t *testing.T, app *fiber.App, method, path, token, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if out != nil && len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
	return res.StatusCode
}

func TestOrderRoutes(t *testing.T) {
	f := newFixture(t, 5, 3)
	f.addLine(t, alice, f.bowl, 2)
	app, tokens := makeAppWithOrderHandler(t, NewHandler(f.svc))

	status := send(t, app, "POST", "/api/v1/orders", "", checkoutPayload, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	var created map[string]any
	status = send(t, app, "POST", "/api/v1/orders", tokens["alice"], checkoutPayload, &created)
	require.Equal(t, fiber.StatusCreated, status, created)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "572", created["total"])
	assert.Equal(t, "upi", created["paymentMethod"])
	assert.Len(t, created["lines"], 1)
	path := "/api/v1/orders/" + strconv.FormatInt(int64(created["id"].(float64)), 10)

	var failed map[string]any
	status = send(t, app, "POST", "/api/v1/orders", tokens["alice"], checkoutPayload, &failed)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "empty_cart", failed["error"])

	var mine []map[string]any
	status = send(t, app, "GET", "/api/v1/orders", tokens["alice"], "", &mine)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, mine, 1)

	status = send(t, app, "GET", path, tokens["bob"], "", nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status = send(t, app, "GET", "/api/v1/orders/abc", tokens["alice"], "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	status = send(t, app, "GET", "/api/v1/orders/404", tokens["alice"], "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	var cancelled map[string]any
	status = send(t, app, "POST", path+"/cancel", tokens["alice"], "", &cancelled)
	require.Equal(t, fiber.StatusOK, status, cancelled)
	assert.Equal(t, "cancelled", cancelled["status"])
	assert.Equal(t, 5, f.stock(t, f.bowl.ID))
}

func TestAdminOrderRoutes(t *testing.T) {
	f := newFixture(t, 5, 3)
	f.addLine(t, alice, f.bed, 1)
	app, tokens := makeAppWithOrderHandler(t, NewHandler(f.svc))

	var created map[string]any
	require.Equal(t, fiber.StatusCreated, send(t, app, "POST", "/api/v1/orders", tokens["alice"], checkoutPayload, &created))
	statusPath := "/api/v1/admin/orders/" + strconv.FormatInt(int64(created["id"].(float64)), 10) + "/status"

	status := send(t, app, "GET", "/api/v1/admin/orders", tokens["alice"], "", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	var all []map[string]any
	status = send(t, app, "GET", "/api/v1/admin/orders", tokens["admin"], "", &all)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, all, 1)

	var updated map[string]any
	status = send(t, app, "PUT", statusPath, tokens["admin"], `{"status":"processing"}`, &updated)
	require.Equal(t, fiber.StatusOK, status, updated)
	assert.Equal(t, "processing", updated["status"])

	var rejected map[string]any
	status = send(t, app, "PUT", statusPath, tokens["admin"], `{"status":"pending"}`, &rejected)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", rejected["error"])

	status = send(t, app, "PUT", statusPath, tokens["admin"], `{"status":"lost"}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
