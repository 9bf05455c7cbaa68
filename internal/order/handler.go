package order

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/interface/http/httpapi"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.getMyOrders)
	r.Get("/orders/:id", h.getOrder)
	r.Post("/orders/:id/cancel", h.cancelOrder)
}

// RegisterAdminRoutes expects r to be already gated by the admin role.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/orders", h.getAllOrders)
	r.Put("/orders/:id/status", h.updateStatus)
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	var in PlaceOrderInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	created, err := h.service.PlaceOrder(c.UserContext(), sub, in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getMyOrders(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	orders, err := h.service.ListMine(c.UserContext(), sub)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}
	id, err := httpapi.ParamID(c, "id")
	if err != nil {
		return httpapi.Error(c, err)
	}

	o, err := h.service.Get(c.UserContext(), sub, id)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) cancelOrder(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}
	id, err := httpapi.ParamID(c, "id")
	if err != nil {
		return httpapi.Error(c, err)
	}

	o, err := h.service.Cancel(c.UserContext(), sub, id)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	orders, err := h.service.ListAll(c.UserContext(), sub)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(orders)
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}
	id, err := httpapi.ParamID(c, "id")
	if err != nil {
		return httpapi.Error(c, err)
	}

	var in StatusInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	o, err := h.service.UpdateStatus(c.UserContext(), sub, id, in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(o)
}
