package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func status(t *testing.T, app *fiber.App, req *http.Request) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RateLimiter(middleware.RateLimiterConfig{Rate: 0.001, Burst: 2, ExpiresIn: time.Minute}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	assert.Equal(t, fiber.StatusOK, status(t, app, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, fiber.StatusOK, status(t, app, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, fiber.StatusTooManyRequests, status(t, app, httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{name: "matching key", configured: "secret", sent: "secret", want: fiber.StatusOK},
		{name: "wrong key", configured: "secret", sent: "guess", want: fiber.StatusUnauthorized},
		{name: "missing key", configured: "secret", want: fiber.StatusUnauthorized},
		{name: "disabled", configured: "", sent: "", want: fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(middleware.ValidateAPIKey(tt.configured))
			app.Post("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.sent != "" {
				req.Header.Set(middleware.APIKeyHeader, tt.sent)
			}
			assert.Equal(t, tt.want, status(t, app, req))
		})
	}
}

func TestSessionMiddleware(t *testing.T) {
	db := database.OpenTest(t)
	ctx := context.Background()
	users := repositories.NewGORMUserRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	sessions := services.NewSessionService(sessionRepo, users)

	customer := &models.User{Email: "customer@example.com", Role: models.RoleCustomer}
	admin := &models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, users.Create(ctx, customer))
	require.NoError(t, users.Create(ctx, admin))
	require.NoError(t, sessionRepo.Create(ctx, &models.Session{Token: "customer-token", UserID: customer.ID}))
	require.NoError(t, sessionRepo.Create(ctx, &models.Session{Token: "admin-token", UserID: admin.ID}))

	whoami := func(c *fiber.Ctx) error {
		if user := middleware.CurrentUser(c); user != nil {
			return c.SendString(user.Email)
		}
		return c.SendString("anonymous")
	}

	app := fiber.New()
	app.Get("/optional", middleware.OptionalSession(sessions), whoami)
	app.Get("/required", middleware.SessionRequired(sessions), whoami)
	app.Get("/admin", middleware.SessionRequired(sessions), middleware.AdminOnly(), whoami)

	request := func(path, header, cookie string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: cookie})
		}
		return req
	}

	assert.Equal(t, fiber.StatusOK, status(t, app, request("/optional", "", "")))
	assert.Equal(t, fiber.StatusOK, status(t, app, request("/optional", "Bearer bogus", "")))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, request("/required", "", "")))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, request("/required", "Bearer bogus", "")))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, request("/required", "Token customer-token", "")))
	assert.Equal(t, fiber.StatusOK, status(t, app, request("/required", "Bearer customer-token", "")))
	assert.Equal(t, fiber.StatusOK, status(t, app, request("/required", "", "customer-token")))
	assert.Equal(t, fiber.StatusForbidden, status(t, app, request("/admin", "Bearer customer-token", "")))
	assert.Equal(t, fiber.StatusOK, status(t, app, request("/admin", "Bearer admin-token", "")))
}
