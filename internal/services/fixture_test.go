package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/lock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type fixture struct {
	db *gorm.DB

	userRepo         *repositories.GORMUserRepository
	sessionRepo      *repositories.GORMSessionRepository
	productRepo      *repositories.GORMProductRepository
	categoryRepo     *repositories.GORMCategoryRepository
	cartRepo         *repositories.GORMCartRepository
	orderRepo        *repositories.GORMOrderRepository
	reviewRepo       *repositories.GORMReviewRepository
	wishlistRepo     *repositories.GORMWishlistRepository
	notificationRepo *repositories.GORMNotificationRepository

	events *recordingPublisher

	sessions      *services.SessionService
	notifications *services.NotificationService
	catalog       *services.CatalogService
	carts         *services.CartService
	orders        *services.OrderService
	reviews       *services.ReviewService
	wishlist      *services.WishlistService
	users         *services.UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.OpenTest(t)
	f := &fixture{
		db:               db,
		userRepo:         repositories.NewGORMUserRepository(db),
		sessionRepo:      repositories.NewGORMSessionRepository(db),
		productRepo:      repositories.NewGORMProductRepository(db),
		categoryRepo:     repositories.NewGORMCategoryRepository(db),
		cartRepo:         repositories.NewGORMCartRepository(db),
		orderRepo:        repositories.NewGORMOrderRepository(db),
		reviewRepo:       repositories.NewGORMReviewRepository(db),
		wishlistRepo:     repositories.NewGORMWishlistRepository(db),
		notificationRepo: repositories.NewGORMNotificationRepository(db),
		events:           &recordingPublisher{},
	}
	locker := lock.NewLocalLocker()

	f.sessions = services.NewSessionService(f.sessionRepo, f.userRepo)
	f.notifications = services.NewNotificationService(f.notificationRepo, f.userRepo, f.wishlistRepo)
	f.catalog = services.NewCatalogService(f.productRepo, f.categoryRepo, f.notifications, f.events)
	f.carts = services.NewCartService(f.cartRepo, f.productRepo)
	f.orders = services.NewOrderService(f.orderRepo, f.cartRepo, f.notifications, f.events)
	f.reviews = services.NewReviewService(f.reviewRepo, f.productRepo, f.orderRepo, f.userRepo, f.notifications, locker, f.events)
	f.wishlist = services.NewWishlistService(f.wishlistRepo, f.productRepo, locker)
	f.users = services.NewUserService(f.userRepo, f.notifications)
	return f
}

func (f *fixture) user(t *testing.T, role models.Role) *models.User {
	t.Helper()
	id := uuid.New().String()
	u := &models.User{
		ID:    id,
		Email: fmt.Sprintf("%s@example.com", id[:8]),
		Name:  "User " + id[:8],
		Role:  role,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, f.productRepo.Create(context.Background(), p))
	return p
}

func testShipping() models.ShippingInfo {
	return models.ShippingInfo{
		FullName:   "Jane Doe",
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Phone:      "555-0100",
	}
}

// placeOrder checks out one unit of each product for userID.
func (f *fixture) placeOrder(t *testing.T, userID string, products ...*models.Product) *models.Order {
	t.Helper()
	ctx := context.Background()
	for _, p := range products {
		_, err := f.carts.AddItem(ctx, userID, p.ID, 1)
		require.NoError(t, err)
	}
	order, err := f.orders.CreateOrder(ctx, userID, testShipping())
	require.NoError(t, err)
	return order
}

func (f *fixture) inbox(t *testing.T, userID string) []models.Notification {
	t.Helper()
	list, err := f.notifications.GetUserNotifications(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func typesOf(list []models.Notification) []models.NotificationType {
	types := make([]models.NotificationType, 0, len(list))
	for _, n := range list {
		types = append(types, n.Type)
	}
	return types
}
