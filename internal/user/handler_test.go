package user

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/auth"
)

func makeAppWithUserHandler(t *testing.T) (*fiber.App, *Service, *auth.Verifier) {
	t.Helper()
	svc, _, verifier := newService(t)
	h := NewHandler(svc)

	app := fiber.New()
	api := app.Group("/api/v1")
	h.RegisterPublicRoutes(api)
	api.Use(auth.Middleware(verifier))
	h.RegisterProtectedRoutes(api)
	h.RegisterAdminRoutes(api.Group("/admin", auth.RequireRole(auth.RoleAdmin)))
	return app, svc, verifier
}

func request(t *testing.T, app *fiber.App, method, path, token, body string, out any) int {
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

const jennyPayload = `{"name":"Jenny","email":"jenny@example.com","mobile":"0812345678","password":"secret1"}`

func TestAuthAndProfileRoutes(t *testing.T) {
	app, _, _ := makeAppWithUserHandler(t)

	var created map[string]any
	status := request(t, app, "POST", "/api/v1/auth/register", "", jennyPayload, &created)
	require.Equal(t, fiber.StatusCreated, status, created)
	assert.NotContains(t, created, "password")

	var conflict map[string]any
	status = request(t, app, "POST", "/api/v1/auth/register", "", jennyPayload, &conflict)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "conflict", conflict["error"])

	status = request(t, app, "POST", "/api/v1/auth/login", "", `{"email":"jenny@example.com","password":"nope-nope"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	var session map[string]any
	status = request(t, app, "POST", "/api/v1/auth/login", "", `{"email":"jenny@example.com","password":"secret1"}`, &session)
	require.Equal(t, fiber.StatusOK, status, session)
	token, _ := session["token"].(string)
	require.NotEmpty(t, token)

	status = request(t, app, "GET", "/api/v1/profile", "", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	var profile map[string]any
	status = request(t, app, "GET", "/api/v1/profile", token, "", &profile)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "jenny@example.com", profile["email"])

	status = request(t, app, "PUT", "/api/v1/profile", token,
		`{"name":"Jenny K","email":"jenny@example.com","mobile":"0812345678","address":"Bangkok"}`, &profile)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Jenny K", profile["name"])

	status = request(t, app, "GET", "/api/v1/admin/users", token, "", nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAdminUserRoutes(t *testing.T) {
	app, _, verifier := makeAppWithUserHandler(t)
	token, _, err := verifier.Issue(adminSubject)
	require.NoError(t, err)

	var created map[string]any
	status := request(t, app, "POST", "/api/v1/admin/users", token,
		`{"name":"Staff","email":"staff@example.com","mobile":"0811111111","password":"staffpass","isAdmin":true}`, &created)
	require.Equal(t, fiber.StatusCreated, status, created)
	assert.Equal(t, true, created["isAdmin"])
	path := "/api/v1/admin/users/" + strconv.FormatInt(int64(created["id"].(float64)), 10)

	var users []map[string]any
	status = request(t, app, "GET", "/api/v1/admin/users", token, "", &users)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, users, 1)

	var updated map[string]any
	status = request(t, app, "PUT", path, token,
		`{"name":"Staff","email":"staff@example.com","mobile":"0811111111","isAdmin":false}`, &updated)
	require.Equal(t, fiber.StatusOK, status, updated)
	assert.Equal(t, false, updated["isAdmin"])

	status = request(t, app, "DELETE", path, token, "", nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status = request(t, app, "DELETE", path, token, "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
