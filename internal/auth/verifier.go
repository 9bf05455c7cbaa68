// Package auth issues and verifies bearer tokens and gates routes by role.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/storefront/internal/domain/apperr"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	signingMethod = "HS256"
)

// Subject is the verified caller.
type Subject struct {
	ID    int64
	Roles []string
}

func (s Subject) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (s Subject) IsAdmin() bool { return s.HasRole(RoleAdmin) }

// RolesFor returns the roles granted to an account.
func RolesFor(isAdmin bool) []string {
	if isAdmin {
		return []string{RoleCustomer, RoleAdmin}
	}
	return []string{RoleCustomer}
}

// Claims is the only token payload the service signs or accepts.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewVerifier(secret string, ttl time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for sub that expires after the verifier's ttl.
func (v *Verifier) Issue(sub Subject) (string, time.Time, error) {
	now := v.now()
	expires := now.Add(v.ttl)
	claims := Claims{
		Roles: sub.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(sub.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks signature and expiry and returns the token's subject. It is
// the only path that turns a token into a Subject; Middleware calls it too.
func (v *Verifier) Verify(token string) (Subject, error) {
	if token == "" {
		return Subject{}, apperr.New(apperr.Unauthorized, "missing bearer token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFunc, jwt.WithValidMethods([]string{signingMethod}))
	if err != nil || !parsed.Valid {
		return Subject{}, apperr.Wrap(apperr.Unauthorized, err, "invalid or expired token")
	}
	// RegisteredClaims treats a missing exp as valid; we never issue one.
	if !claims.VerifyExpiresAt(v.now(), true) {
		return Subject{}, apperr.New(apperr.Unauthorized, "invalid or expired token")
	}
	return subjectFromClaims(claims)
}

func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return v.secret, nil
}

func subjectFromClaims(c *Claims) (Subject, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Subject{}, apperr.Wrap(apperr.Unauthorized, errors.New("bad subject"), "token has no valid subject")
	}
	return Subject{ID: id, Roles: c.Roles}, nil
}
