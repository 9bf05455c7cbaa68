package user

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/interface/http/httpapi"
	"github.com/wichananm65/storefront/internal/interface/presenter"
)

type Handler struct {
	service   *Service
	presenter *presenter.UserPresenter
}

type loginResponse struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expiresAt"`
	User      presenter.UserResponse `json:"user"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, presenter: presenter.NewUserPresenter()}
}

func (h *Handler) RegisterPublicRoutes(r fiber.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
}

func (h *Handler) RegisterProtectedRoutes(r fiber.Router) {
	r.Get("/profile", h.getProfile)
	r.Put("/profile", h.updateProfile)
}

// RegisterAdminRoutes expects r to be already gated by the admin role.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/users", h.getUsers)
	r.Post("/users", h.createUser)
	r.Put("/users/:id", h.updateUser)
	r.Delete("/users/:id", h.deleteUser)
}

func (h *Handler) register(c *fiber.Ctx) error {
	var in RegisterInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	created, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.presenter.ToResponse(created))
}

func (h *Handler) login(c *fiber.Ctx) error {
	var in LoginInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	session, err := h.service.Login(c.UserContext(), in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      h.presenter.ToResponse(session.User),
	})
}

// getProfile returns the account behind the bearer token.
func (h *Handler) getProfile(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	u, err := h.service.Profile(c.UserContext(), sub)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(h.presenter.ToResponse(u))
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	var in ProfileInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	updated, err := h.service.UpdateProfile(c.UserContext(), sub, in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(h.presenter.ToResponse(updated))
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	users, err := h.service.List(c.UserContext(), sub)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(h.presenter.ToList(users))
}

func (h *Handler) createUser(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	var in AccountInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	created, err := h.service.Create(c.UserContext(), sub, in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.presenter.ToResponse(created))
}

func (h *Handler) updateUser(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}
	id, err := httpapi.ParamID(c, "id")
	if err != nil {
		return httpapi.Error(c, err)
	}

	var in AccountInput
	if err := httpapi.Bind(c, &in); err != nil {
		return httpapi.Error(c, err)
	}

	updated, err := h.service.Update(c.UserContext(), sub, id, in)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(h.presenter.ToResponse(updated))
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}
	id, err := httpapi.ParamID(c, "id")
	if err != nil {
		return httpapi.Error(c, err)
	}

	if err := h.service.Delete(c.UserContext(), sub, id); err != nil {
		return httpapi.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
