package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/domain/apperr"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("secret", time.Hour)

	token, expires, err := v.Issue(Subject{ID: 42, Roles: RolesFor(true)})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	sub, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sub.ID)
	assert.True(t, sub.IsAdmin())
	assert.True(t, sub.HasRole(RoleCustomer))
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := NewVerifier("secret", time.Minute)
	v.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := v.Issue(Subject{ID: 1, Roles: RolesFor(false)})
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	other := NewVerifier("other", time.Hour)
	token, _, err := other.Issue(Subject{ID: 1})
	require.NoError(t, err)

	_, err = NewVerifier("secret", time.Hour).Verify(token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	v := NewVerifier("secret", time.Hour)
	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := v.Verify(token)
		assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err), "token %q", token)
	}
}

func TestVerifyRejectsMissingExpiry(t *testing.T) {
	claims := Claims{Roles: RolesFor(false), RegisteredClaims: jwt.RegisteredClaims{Subject: "5"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewVerifier("secret", time.Hour).Verify(token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "5",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewVerifier("secret", time.Hour).Verify(token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}
