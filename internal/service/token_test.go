package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/entity"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *entity.User {
	return &entity.User{ID: uuid.New(), Email: "p@example.com", DisplayName: "Pat", Role: valueobject.RoleProvider}
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	user := testUser()

	pair, err := m.GeneratePair(user)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, pair.ExpiresIn)

	claims, err := m.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, valueobject.RoleProvider, claims.Role)

	userID, err := m.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestTokenManager_RejectsSwappedTokens(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	pair, err := m.GeneratePair(testUser())
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	pair, err := m.GeneratePair(testUser())
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ParseRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
