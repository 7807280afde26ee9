package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Sessions      *services.SessionService
	Users         *services.UserService
	Catalog       *services.CatalogService
	Carts         *services.CartService
	Orders        *services.OrderService
	Reviews       *services.ReviewService
	Wishlist      *services.WishlistService
	Notifications *services.NotificationService
}

// RegisterRoutes mounts the whole API on router.
func RegisterRoutes(router fiber.Router, s Services, internalAPIKey string) {
	optional := middleware.OptionalSession(s.Sessions)
	auth := middleware.SessionRequired(s.Sessions)

	catalogHandler := NewCatalogHandler(s.Catalog)
	orderHandler := NewOrderHandler(s.Orders)
	reviewHandler := NewReviewHandler(s.Reviews)
	userHandler := NewUserHandler(s.Users)

	NewSessionHandler(s.Users).RegisterRoutes(router, optional, auth)
	catalogHandler.RegisterRoutes(router)
	reviewHandler.RegisterRoutes(router, auth)
	NewCartHandler(s.Carts).RegisterRoutes(router, auth)
	orderHandler.RegisterRoutes(router, auth)
	NewWishlistHandler(s.Wishlist).RegisterRoutes(router, auth)
	NewNotificationHandler(s.Notifications).RegisterRoutes(router, auth)

	admin := router.Group("/admin", auth, middleware.AdminOnly())
	catalogHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	reviewHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterAdminRoutes(admin)

	internal := router.Group("/internal", middleware.ValidateAPIKey(internalAPIKey))
	userHandler.RegisterInternalRoutes(internal)
}
