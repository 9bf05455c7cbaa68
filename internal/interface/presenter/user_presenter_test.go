package presenter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

func TestUserResponseOmitsPassword(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	u := entity.User{
		ID: 7, Name: "Jenny", Email: "j@example.com", Mobile: "123",
		Password: "$2a$10$hash", IsAdmin: true, CreatedAt: created, UpdatedAt: created,
	}

	data, err := json.Marshal(NewUserPresenter().ToResponse(u))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.NotContains(t, body, "password")
	assert.NotContains(t, string(data), "$2a$")
	assert.Equal(t, "2026-03-01T10:00:00Z", body["createdAt"])
	assert.Equal(t, true, body["isAdmin"])
}

func TestToListKeepsOrder(t *testing.T) {
	out := NewUserPresenter().ToList([]entity.User{{ID: 2}, {ID: 1}})
	require.Len(t, out, 2)
	assert.Equal(t, int64(2), out[0].ID)

	assert.NotNil(t, NewUserPresenter().ToList(nil))
}
