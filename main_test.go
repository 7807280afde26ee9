package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/lock"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("INTERNAL_API_KEY", "test-key")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestHealth(t *testing.T) {
	cfg := testConfig(t)
	app := newApp(cfg, database.OpenTest(t), lock.NewLocalLocker(), nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "up", body["database"])
	assert.Equal(t, "none", body["events"])
}

func TestNewAppServesCatalogAndCart(t *testing.T) {
	cfg := testConfig(t)
	db := database.OpenTest(t)
	ctx := context.Background()

	user := &models.User{Email: "jane@example.com", Name: "Jane"}
	require.NoError(t, repositories.NewGORMUserRepository(db).Create(ctx, user))
	require.NoError(t, repositories.NewGORMSessionRepository(db).Create(ctx, &models.Session{Token: "jane-token", UserID: user.ID}))
	product := &models.Product{Name: "Laptop", Price: 1200, Stock: 10}
	require.NoError(t, repositories.NewGORMProductRepository(db).Create(ctx, product))

	app := newApp(cfg, db, lock.NewLocalLocker(), nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products/"+product.ID, nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":"`+product.ID+`","quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer jane-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNewPublisherNone(t *testing.T) {
	cfg := testConfig(t)
	publisher, closePublisher, err := newPublisher(cfg)
	require.NoError(t, err)
	assert.Nil(t, publisher)
	closePublisher()

	cfg.EventsBroker = "carrier-pigeon"
	_, _, err = newPublisher(cfg)
	assert.Error(t, err)
}

func TestNewLockerLocal(t *testing.T) {
	cfg := testConfig(t)
	locker, closeLocker, err := newLocker(cfg)
	require.NoError(t, err)
	defer closeLocker()
	assert.IsType(t, &lock.LocalLocker{}, locker)

	cfg.LockBackend = "zookeeper"
	_, _, err = newLocker(cfg)
	assert.Error(t, err)
}

func TestSetLogLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	setLogLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	setLogLevel("shouting")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
