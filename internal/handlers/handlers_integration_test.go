package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/lock"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "internal-test-key"

type testEnv struct {
	app      *fiber.App
	users    *repositories.GORMUserRepository
	sessions *repositories.GORMSessionRepository
	products *repositories.GORMProductRepository
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	db := database.OpenTest(t)

	userRepo := repositories.NewGORMUserRepository(db)
	sessionRepo := repositories.NewGORMSessionRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	wishlistRepo := repositories.NewGORMWishlistRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)
	locker := lock.NewLocalLocker()

	notifications := services.NewNotificationService(notificationRepo, userRepo, wishlistRepo)
	svc := handlers.Services{
		Sessions:      services.NewSessionService(sessionRepo, userRepo),
		Users:         services.NewUserService(userRepo, notifications),
		Catalog:       services.NewCatalogService(productRepo, categoryRepo, notifications, nil),
		Carts:         services.NewCartService(cartRepo, productRepo),
		Orders:        services.NewOrderService(orderRepo, cartRepo, notifications, nil),
		Reviews:       services.NewReviewService(reviewRepo, productRepo, orderRepo, userRepo, notifications, locker, nil),
		Wishlist:      services.NewWishlistService(wishlistRepo, productRepo, locker),
		Notifications: notifications,
	}

	app := fiber.New()
	handlers.RegisterRoutes(app.Group("/api/v1"), svc, testAPIKey)

	return &testEnv{app: app, users: userRepo, sessions: sessionRepo, products: productRepo}
}

// signIn creates a user with a session and returns both.
func (e *testEnv) signIn(t *testing.T, role models.Role) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	id := uuid.New().String()
	user := &models.User{ID: id, Email: id[:8] + "@example.com", Name: "User " + id[:8], Role: role}
	require.NoError(t, e.users.Create(ctx, user))
	token := "token-" + id
	require.NoError(t, e.sessions.Create(ctx, &models.Session{Token: token, UserID: user.ID}))
	return user, token
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

// call sends a request and decodes a JSON response into out when out is non-nil.
func (e *testEnv) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

var shipping = map[string]any{
	"full_name":   "Jane Doe",
	"address":     "1 Main St",
	"city":        "Springfield",
	"postal_code": "12345",
	"phone":       "555-0100",
}

func TestPublicEndpoints(t *testing.T) {
	env := setupApp(t)
	env.seedProduct(t, "Test Laptop", 1000, 5)
	env.seedProduct(t, "Test Monitor", 200, 10)

	var products []models.Product
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/products", "", nil, &products))
	assert.Len(t, products, 2)

	var session map[string]any
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/session", "", nil, &session))
	assert.Nil(t, session["user"])

	_, token := env.signIn(t, models.RoleCustomer)
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/session", token, nil, &session))
	assert.NotNil(t, session["user"])

	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/v1/products/missing", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/v1/categories/missing/products", "", nil, nil))
}

func TestProtectedEndpointsWithoutAuth(t *testing.T) {
	env := setupApp(t)
	_, customerToken := env.signIn(t, models.RoleCustomer)

	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodGet, "/api/v1/cart", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodPost, "/api/v1/orders", "", map[string]any{"shipping": shipping}, nil))
	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodGet, "/api/v1/notifications", "bogus", nil, nil))
	assert.Equal(t, http.StatusForbidden, env.call(t, http.MethodGet, "/api/v1/admin/orders", customerToken, nil, nil))

	newProduct := map[string]any{"name": "Unauthorized Product", "price": 100.0, "stock": 10}
	assert.Equal(t, http.StatusForbidden, env.call(t, http.MethodPost, "/api/v1/admin/products", customerToken, newProduct, nil))
}

func TestCheckoutReviewFlow(t *testing.T) {
	env := setupApp(t)
	admin, adminToken := env.signIn(t, models.RoleAdmin)
	_, buyerToken := env.signIn(t, models.RoleCustomer)
	_, strangerToken := env.signIn(t, models.RoleCustomer)
	p := env.seedProduct(t, "Shirt", 19.99, 10)

	// Cart
	var errBody map[string]any
	status := env.call(t, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]any{"product_id": p.ID, "quantity": 0}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errBody, "errors")

	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPost, "/api/v1/cart/items", buyerToken, map[string]any{"product_id": p.ID, "quantity": 2}, nil))
	var count map[string]int
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/cart/count", buyerToken, nil, &count))
	assert.Equal(t, 2, count["count"])

	// Checkout
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodPost, "/api/v1/orders", strangerToken, map[string]any{"shipping": shipping}, nil))

	var order models.Order
	checkout := map[string]any{"shipping": shipping, "total": 0.01}
	require.Equal(t, http.StatusCreated, env.call(t, http.MethodPost, "/api/v1/orders", buyerToken, checkout, &order))
	assert.Equal(t, 39.98, order.Total, "total comes from the cart, not the request")
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/cart/count", buyerToken, nil, &count))
	assert.Equal(t, 0, count["count"])

	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/orders/"+order.ID, buyerToken, nil, nil))
	assert.Equal(t, http.StatusForbidden, env.call(t, http.MethodGet, "/api/v1/orders/"+order.ID, strangerToken, nil, nil))

	// Fulfillment
	statusPath := "/api/v1/admin/orders/" + order.ID + "/status"
	assert.Equal(t, http.StatusConflict, env.call(t, http.MethodPatch, statusPath, adminToken, map[string]any{"status": "delivered"}, nil))
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, statusPath, adminToken, map[string]any{"status": "processing"}, nil))
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodPatch, statusPath, adminToken, map[string]any{"status": "lost"}, nil))
	assert.Equal(t, http.StatusForbidden, env.call(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", buyerToken, nil, nil))

	// Reviews
	reviewPath := "/api/v1/products/" + p.ID + "/reviews"
	assert.Equal(t, http.StatusForbidden, env.call(t, http.MethodPost, reviewPath, strangerToken, map[string]any{"rating": 5}, nil))
	assert.Equal(t, http.StatusCreated, env.call(t, http.MethodPost, reviewPath, buyerToken, map[string]any{"rating": 4, "comment": "Nice"}, nil))
	assert.Equal(t, http.StatusConflict, env.call(t, http.MethodPost, reviewPath, buyerToken, map[string]any{"rating": 2}, nil))

	var product models.Product
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/products/"+p.ID, "", nil, &product))
	assert.Equal(t, 4.0, product.Rating)
	assert.Equal(t, 1, product.ReviewCount)

	var reviews []models.ReviewDetails
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/admin/reviews", adminToken, nil, &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "Shirt", reviews[0].ProductName)

	// Admin inbox: one order, one review
	var unread map[string]int
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/notifications/unread-count", adminToken, nil, &unread))
	assert.Equal(t, 2, unread["count"])
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/notifications/read-all", adminToken, nil, nil))
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/notifications/unread-count", adminToken, nil, &unread))
	assert.Equal(t, 0, unread["count"])

	var inbox []models.Notification
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/notifications", adminToken, nil, &inbox))
	for _, n := range inbox {
		assert.Equal(t, admin.ID, n.UserID)
		assert.True(t, n.Read)
	}
}

func TestWishlistEndpoints(t *testing.T) {
	env := setupApp(t)
	_, token := env.signIn(t, models.RoleCustomer)
	p := env.seedProduct(t, "Sneakers", 80, 0)
	path := "/api/v1/wishlist/" + p.ID

	var saved map[string]bool
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPost, path+"/toggle", token, nil, &saved))
	assert.True(t, saved["in_wishlist"])
	assert.Equal(t, http.StatusConflict, env.call(t, http.MethodPost, path, token, nil, nil))
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, path, token, nil, &saved))
	assert.True(t, saved["in_wishlist"])

	var entries []models.WishlistEntry
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/wishlist", token, nil, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Sneakers", entries[0].Product.Name)

	assert.Equal(t, http.StatusNoContent, env.call(t, http.MethodDelete, path, token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodDelete, path, token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodPost, "/api/v1/wishlist/missing", token, nil, nil))
}

func TestAdminCatalogAndUsers(t *testing.T) {
	env := setupApp(t)
	_, adminToken := env.signIn(t, models.RoleAdmin)
	customer, customerToken := env.signIn(t, models.RoleCustomer)

	var category models.Category
	require.Equal(t, http.StatusCreated, env.call(t, http.MethodPost, "/api/v1/admin/categories", adminToken, map[string]any{"name": "Outerwear"}, &category))

	var created models.Product
	newProduct := map[string]any{"name": "Smartphone", "price": 799.99, "stock": 50, "category_id": category.ID}
	require.Equal(t, http.StatusCreated, env.call(t, http.MethodPost, "/api/v1/admin/products", adminToken, newProduct, &created))
	assert.NotEmpty(t, created.ID)

	var inCategory []models.Product
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/categories/"+category.ID+"/products", "", nil, &inCategory))
	assert.Len(t, inCategory, 1)

	var updated models.Product
	edit := map[string]any{"name": "Smartphone Pro", "price": 899.99, "stock": 45, "rating": 5, "review_count": 100}
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPut, "/api/v1/admin/products/"+created.ID, adminToken, edit, &updated))
	assert.Equal(t, "Smartphone Pro", updated.Name)
	assert.Equal(t, 0.0, updated.Rating)
	assert.Equal(t, 0, updated.ReviewCount)

	assert.Equal(t, http.StatusNoContent, env.call(t, http.MethodDelete, "/api/v1/admin/products/"+created.ID, adminToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/v1/products/"+created.ID, "", nil, nil))

	var customerInbox []models.Notification
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/notifications", customerToken, nil, &customerInbox))
	require.Len(t, customerInbox, 1)
	assert.Equal(t, models.NotificationStock, customerInbox[0].Type)

	var promoted models.User
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodPatch, "/api/v1/admin/users/"+customer.ID+"/role", adminToken, map[string]any{"role": "owner"}, nil))
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/admin/users/"+customer.ID+"/role", adminToken, map[string]any{"role": "admin"}, &promoted))
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	var me models.User
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodPatch, "/api/v1/me", customerToken, map[string]any{"name": "Jane", "phone": "555"}, &me))
	assert.Equal(t, "Jane", me.Name)
}

func TestInternalSignupHook(t *testing.T) {
	env := setupApp(t)
	user, token := env.signIn(t, models.RoleCustomer)
	path := "/api/v1/internal/users/" + user.ID + "/signup"

	assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodPost, path, "", nil, nil))

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("X-API-KEY", testAPIKey)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var inbox []models.Notification
	assert.Equal(t, http.StatusOK, env.call(t, http.MethodGet, "/api/v1/notifications", token, nil, &inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, models.NotificationWelcome, inbox[0].Type)
}
