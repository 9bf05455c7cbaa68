// Package httpapi holds the request and response helpers shared by the fiber handlers.
package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/domain/apperr"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Status maps an error kind to its HTTP status code.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthorized:
		return fiber.StatusUnauthorized
	case apperr.Forbidden:
		return fiber.StatusForbidden
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.OutOfStock, apperr.Conflict:
		return fiber.StatusConflict
	case apperr.EmptyCart, apperr.ValidationFailed:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Internal errors are logged and their
// message is not exposed.
func Error(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.Internal {
		log.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Error:   apperr.Internal.String(),
			Message: "internal server error",
		})
	}

	return c.Status(Status(appErr.Kind)).JSON(errorResponse{
		Error:   appErr.Kind.String(),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// ErrorHandler is the fiber app error handler. Framework errors such as unknown
// routes keep their own status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(errorResponse{
			Error:   errorCode(fe.Code),
			Message: fe.Message,
		})
	}
	return Error(c, err)
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return apperr.NotFound.String()
	case fiber.StatusUnauthorized:
		return apperr.Unauthorized.String()
	case fiber.StatusForbidden:
		return apperr.Forbidden.String()
	}
	if status < fiber.StatusInternalServerError {
		return "bad_request"
	}
	return apperr.Internal.String()
}

// Bind decodes the JSON body into dst.
func Bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return apperr.New(apperr.ValidationFailed, "request body is required")
	}
	if err := c.BodyParser(dst); err != nil {
		return apperr.Wrap(apperr.ValidationFailed, err, "invalid json body")
	}
	return nil
}

// ParamID parses a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.ValidationFailed, "invalid %s", name).WithDetail(name, c.Params(name))
	}
	return id, nil
}
