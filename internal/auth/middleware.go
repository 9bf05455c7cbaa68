package auth

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/interface/http/httpapi"
)

const (
	tokenKey   = "user"
	subjectKey = "subject"
)

// Middleware rejects requests without a valid bearer token and stores the
// Subject in the request locals. jwtware extracts and pre-parses the token;
// the Verifier makes the decision.
func Middleware(v *Verifier) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    v.secret,
		SigningMethod: signingMethod,
		Claims:        &Claims{},
		ContextKey:    tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			tok, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok {
				return httpapi.Error(c, apperr.New(apperr.Unauthorized, "invalid or expired token"))
			}
			sub, err := v.Verify(tok.Raw)
			if err != nil {
				return httpapi.Error(c, err)
			}
			WithSubject(c, sub)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return httpapi.Error(c, apperr.Wrap(apperr.Unauthorized, err, "invalid or expired token"))
		},
	})
}

// SubjectFromCtx returns the caller placed in locals by Middleware.
func SubjectFromCtx(c *fiber.Ctx) (Subject, error) {
	sub, ok := c.Locals(subjectKey).(Subject)
	if !ok || sub.ID <= 0 {
		return Subject{}, apperr.New(apperr.Unauthorized, "authentication required")
	}
	return sub, nil
}

// WithSubject stores sub in locals. Used by Middleware and by tests that
// bypass token parsing.
func WithSubject(c *fiber.Ctx, sub Subject) {
	c.Locals(subjectKey, sub)
}

// RequireRole allows the request through only when the caller holds role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, err := SubjectFromCtx(c)
		if err != nil {
			return httpapi.Error(c, err)
		}
		if !sub.HasRole(role) {
			return httpapi.Error(c, apperr.New(apperr.Forbidden, "%s role required", role))
		}
		return c.Next()
	}
}
