package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/collegebuddy/api/utils/cache"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func authApp(t *testing.T) (*gorm.DB, *auth.JWTManager, *fiber.App) {
	t.Helper()
	store, err := database.NewMemoryStore(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	db := store.GetDB()

	jwt := auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret", Issuer: "college-buddy-api"})
	mw := NewAuthMiddleware(jwt, db)

	app := fiber.New()
	app.Get("/me", mw.Required(), func(c *fiber.Ctx) error {
		role, _ := GetUserRole(c)
		return c.SendString(role)
	})
	app.Get("/admin", mw.Required(), mw.RequireArea(auth.AreaAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return db, jwt, app
}

func call(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequired(t *testing.T) {
	db, jwt, app := authApp(t)

	user := &model.User{Name: "Alice", Email: "alice@x.com", PasswordHash: "x", ReferralCode: "alice1000", Role: model.RoleStudent}
	require.NoError(t, db.Create(user).Error)

	access, jti, err := jwt.GenerateAccessToken(user.ID, user.Email, user.Role, 0)
	require.NoError(t, err)
	refresh, _, err := jwt.GenerateRefreshToken(user.ID, user.Email, user.Role, 0)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", "garbage"))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", refresh))
	assert.Equal(t, fiber.StatusOK, call(t, app, "/me", access))

	// students stay out of the admin area
	assert.Equal(t, fiber.StatusForbidden, call(t, app, "/admin", access))

	// the role comes from the database
	require.NoError(t, db.Model(user).Update("role", model.RoleAdmin).Error)
	assert.Equal(t, fiber.StatusNoContent, call(t, app, "/admin", access))

	require.NoError(t, auth.NewBlacklistService(db).RevokeToken(t.Context(), jti, user.ID, time.Now().Add(time.Hour), "logout"))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", access))
}

func TestRequired_TokenVersion(t *testing.T) {
	db, jwt, app := authApp(t)

	user := &model.User{Name: "Bob", Email: "bob@x.com", PasswordHash: "x", ReferralCode: "bob1000"}
	require.NoError(t, db.Create(user).Error)
	access, _, err := jwt.GenerateAccessToken(user.ID, user.Email, user.Role, 0)
	require.NoError(t, err)

	require.NoError(t, auth.RevokeAllUserTokens(db, user.ID))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", access))
}

func TestBruteForce_Lockout(t *testing.T) {
	bf := NewBruteForceProtection(cache.NewMemoryCache())

	app := fiber.New()
	app.Post("/login", bf.CheckAndRecordAttempt(), func(c *fiber.Ctx) error {
		if c.Query("ok") == "1" {
			bf.RecordSuccessfulAttempt(c)
			return c.SendStatus(fiber.StatusOK)
		}
		bf.RecordFailedAttempt(c, "a@x.com")
		return c.SendStatus(fiber.StatusUnauthorized)
	})

	post := func(query string) int {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login"+query, nil), -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	for i := 0; i < 4; i++ {
		assert.Equal(t, fiber.StatusUnauthorized, post(""))
	}
	assert.Equal(t, fiber.StatusOK, post("?ok=1"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, fiber.StatusUnauthorized, post(""))
	}
	assert.Equal(t, fiber.StatusTooManyRequests, post("?ok=1"))
}

func TestLockout(t *testing.T) {
	tests := []struct {
		attempts int64
		want     time.Duration
	}{
		{1, 0},
		{4, 0},
		{5, 2 * time.Minute},
		{10, time.Hour},
		{25, 24 * time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lockout(tt.attempts))
	}
}

func TestScrub(t *testing.T) {
	out := scrub([]byte(`{"email":"a@x.com","password":"hunter22"}`))
	assert.JSONEq(t, `{"email":"a@x.com","password":"[redacted]"}`, string(out))
	assert.Nil(t, scrub([]byte("not json")))
	assert.Nil(t, scrub(nil))
}

func TestSetupSecurity_Origins(t *testing.T) {
	tests := []struct {
		name        string
		origins     string
		credentials bool
		allowOrigin string
	}{
		{"empty", "", false, "*"},
		{"wildcard", "*", false, "*"},
		{"wildcard in list", "http://a.com, *", false, "*"},
		{"explicit", "http://a.com, http://b.com", true, "http://a.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := corsConfig(tt.origins)
			assert.Equal(t, tt.credentials, cfg.AllowCredentials)

			app := fiber.New()
			require.NotPanics(t, func() {
				SetupSecurity(app, SecurityConfig{AllowedOrigins: tt.origins})
			})
			app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

			req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
			req.Header.Set("Origin", "http://a.com")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.allowOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}
