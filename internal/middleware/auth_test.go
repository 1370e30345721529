package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"sharesmallbiz/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "auth-middleware-test-secret"

func setupAuthConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	InitMiddleware(&config.Config{JWTSecret: testSecret})
	t.Cleanup(func() { cfg = prev })
}

func signToken(t *testing.T, secret string, userID uint, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/protected", handler, func(c *fiber.Ctx) error {
		uid, _ := c.Locals("userID").(uint)
		return c.JSON(fiber.Map{"user_id": uid})
	})
	return app
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	setupAuthConfig(t)
	app := authTestApp(AuthRequired)

	token := signToken(t, testSecret, 42, time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequiredRejectsMissingHeader(t *testing.T) {
	setupAuthConfig(t)
	app := authTestApp(AuthRequired)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequiredRejectsMalformedHeader(t *testing.T) {
	setupAuthConfig(t)
	app := authTestApp(AuthRequired)

	for _, header := range []string{"Bearer", "Basic abc123", "Bearer one two"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	setupAuthConfig(t)
	app := authTestApp(AuthRequired)

	token := signToken(t, testSecret, 42, time.Now().Add(-time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequiredRejectsWrongSecret(t *testing.T) {
	setupAuthConfig(t)
	app := authTestApp(AuthRequired)

	token := signToken(t, "some-other-secret", 42, time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalAuthPassesAnonymousThrough(t *testing.T) {
	setupAuthConfig(t)

	var sawUserID bool
	app := fiber.New()
	app.Get("/feed", OptionalAuth, func(c *fiber.Ctx) error {
		_, sawUserID = c.Locals("userID").(uint)
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, sawUserID)
}

func TestOptionalAuthIgnoresInvalidToken(t *testing.T) {
	setupAuthConfig(t)

	var sawUserID bool
	app := fiber.New()
	app.Get("/feed", OptionalAuth, func(c *fiber.Ctx) error {
		_, sawUserID = c.Locals("userID").(uint)
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, sawUserID)
}

func TestOptionalAuthSetsViewerIdentity(t *testing.T) {
	setupAuthConfig(t)

	var gotUserID uint
	app := fiber.New()
	app.Get("/feed", OptionalAuth, func(c *fiber.Ctx) error {
		gotUserID, _ = c.Locals("userID").(uint)
		return c.SendStatus(http.StatusOK)
	})

	token := signToken(t, testSecret, 7, time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, uint(7), gotUserID)
}

func TestUserIDFromTokenRejectsNonNumericSubject(t *testing.T) {
	setupAuthConfig(t)

	claims := jwt.MapClaims{
		"sub": "not-a-number",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = UserIDFromToken(signed)
	assert.Error(t, err)
}
