package auth

import (
	"testing"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		role string
		area Area
		want bool
	}{
		{model.RoleUser, AreaAuthenticated, true},
		{model.RoleStudent, AreaAuthenticated, true},
		{model.RoleUser, AreaAdmin, false},
		{model.RoleStudent, AreaAdmin, false},
		{model.RoleAdmin, AreaAdmin, true},
		{model.RoleSuperAdmin, AreaAdmin, true},
		{model.RoleAdmin, AreaSuperAdmin, false},
		{model.RoleSuperAdmin, AreaSuperAdmin, true},
		{"", AreaAuthenticated, false},
		{"GUEST", AreaAuthenticated, false},
		{model.RoleSuperAdmin, Area("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"@"+string(tt.area), func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.role, tt.area))
		})
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(JWTConfig{Secret: "test-secret", Issuer: "college-buddy-api"})

	token, jti, err := m.GenerateAccessToken(7, "a@b.com", model.RoleStudent, 3)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleStudent, claims.Role)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, jti, claims.ID)

	_, err = m.ValidateRefreshToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(JWTConfig{Secret: "test-secret", Issuer: "college-buddy-api", Expiry: time.Minute})
	token, _, err := m.GenerateAccessToken(1, "a@b.com", model.RoleUser, 0)
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "another-secret", Issuer: "college-buddy-api"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPassword(t *testing.T) {
	Cost = bcrypt.MinCost
	defer func() { Cost = DefaultCost }()

	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("longenough")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(hash, "longenough"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrongpass"), ErrPasswordMismatch)
}
