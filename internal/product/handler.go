package product

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront/internal/interface/http/httpapi"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Get("/products", h.getProducts)
	r.Get("/products/:id", h.getProduct)
}

// RegisterAdminRoutes expects r to be already gated by the admin role.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Post("/products", h.createProduct)
	r.Put("/products/:id", h.updateProduct)
	r.Delete("/products/:id", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := httpapi.ParamID(c, "id")
	if err != nil {
		return httpapi.Error(c, err)
	}

	p, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	var in Input
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	created, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := httpapi.ParamID(c, "id")
	if err != nil {
		return httpapi.Error(c, err)
	}

	var in Input
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	updated, err := h.service.Update(c.UserContext(), id, in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := httpapi.ParamID(c, "id")
	if err != nil {
		return httpapi.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
