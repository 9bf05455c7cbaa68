package cart

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/interface/http/httpapi"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/cart", h.getCart)
	r.Post("/cart", h.addToCart)
	r.Put("/cart/:lineId", h.updateLine)
	r.Delete("/cart/:lineId", h.removeLine)
	r.Delete("/cart", h.clearCart)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	view, err := h.service.View(c.UserContext(), sub)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	var in AddInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	line, err := h.service.Add(c.UserContext(), sub, in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(line)
}

func (h *Handler) updateLine(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}
	lineID, err := httpapi.ParamID(c, "lineId")
	if err != nil {
		return httpapi.Error(c, err)
	}

	var in UpdateInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	line, err := h.service.UpdateQuantity(c.UserContext(), sub, lineID, in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(line)
}

func (h *Handler) removeLine(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}
	lineID, err := httpapi.ParamID(c, "lineId")
	if err != nil {
		return httpapi.Error(c, err)
	}

	if err := h.service.Remove(c.UserContext(), sub, lineID); err != nil {
		return httpapi.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}
	if err := h.service.Clear(c.UserContext(), sub); err != nil {
		return httpapi.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
