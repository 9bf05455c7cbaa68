// Package admin serves the back-office dashboard.
package admin

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/repository"
	"github.com/wichananm65/storefront/internal/interface/http/httpapi"
	"golang.org/x/sync/errgroup"
)

type Stats struct {
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalUsers    int             `json:"totalUsers"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// Stats gathers the dashboard counters concurrently. Revenue leaves out
// cancelled orders.
func (s *Service) Stats(ctx context.Context, sub auth.Subject) (Stats, error) {
	if !sub.IsAdmin() {
		return Stats{}, apperr.New(apperr.Forbidden, "admin role required")
	}

	repos := s.store.Repos()
	var out Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := repos.Products.Count(gctx)
		out.TotalProducts = n
		return err
	})
	g.Go(func() error {
		n, revenue, err := repos.Orders.Totals(gctx)
		out.TotalOrders, out.TotalRevenue = n, revenue
		return err
	})
	g.Go(func() error {
		n, err := repos.Users.Count(gctx)
		out.TotalUsers = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return out, nil
}

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterAdminRoutes expects r to be already gated by the admin role.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/stats", h.getStats)
}

func (h *Handler) getStats(c *fiber.Ctx) error {
	sub, err := auth.SubjectFromCtx(c)
	if err != nil {
		return httpapi.Error(c, err)
	}

	stats, err := h.service.Stats(c.UserContext(), sub)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.JSON(stats)
}
