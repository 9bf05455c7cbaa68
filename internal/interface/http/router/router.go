// Package router assembles the fiber application.
package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/wichananm65/storefront/internal/admin"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/interface/http/httpapi"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/product"
	"github.com/wichananm65/storefront/internal/user"
)

type Deps struct {
	Verifier    *auth.Verifier
	Products    *product.Handler
	Carts       *cart.Handler
	Orders      *order.Handler
	Users       *user.Handler
	Admin       *admin.Handler
	CORSOrigins string
	// AccessLog disables the request logger when false.
	AccessLog bool
}

// New builds the app. Public routes are registered before the token
// middleware, everything after it requires a valid bearer token, and the
// /admin group additionally requires the admin role.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: httpapi.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	d.Users.RegisterPublicRoutes(api)
	d.Products.RegisterPublicRoutes(api)

	api.Use(auth.Middleware(d.Verifier))
	d.Users.RegisterProtectedRoutes(api)
	d.Carts.RegisterProtectedRoutes(api)
	d.Orders.RegisterProtectedRoutes(api)

	back := api.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	d.Products.RegisterAdminRoutes(back)
	d.Orders.RegisterAdminRoutes(back)
	d.Users.RegisterAdminRoutes(back)
	d.Admin.RegisterAdminRoutes(back)

	return app
}
