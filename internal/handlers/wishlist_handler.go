package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WishlistHandler handles HTTP requests for the caller's wishlist.
type WishlistHandler struct {
	service *services.WishlistService
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{service: service}
}

// RegisterRoutes registers the wishlist routes behind auth.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	wishlistRoutes := router.Group("/wishlist", auth)
	wishlistRoutes.Get("/", h.HandleGetWishlist)
	wishlistRoutes.Get("/:productId", h.HandleIsInWishlist)
	wishlistRoutes.Post("/:productId", h.HandleAdd)
	wishlistRoutes.Post("/:productId/toggle", h.HandleToggle)
	wishlistRoutes.Delete("/:productId", h.HandleRemove)
}

// HandleGetWishlist lists the saved products, newest first.
func (h *WishlistHandler) HandleGetWishlist(c *fiber.Ctx) error {
	entries, err := h.service.GetUserWishlist(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// HandleIsInWishlist reports whether a product is saved.
func (h *WishlistHandler) HandleIsInWishlist(c *fiber.Ctx) error {
	saved, err := h.service.IsInWishlist(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"in_wishlist": saved})
}

// HandleAdd saves a product.
func (h *WishlistHandler) HandleAdd(c *fiber.Ctx) error {
	item, err := h.service.AddToWishlist(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleToggle saves or unsaves a product.
func (h *WishlistHandler) HandleToggle(c *fiber.Ctx) error {
	saved, err := h.service.ToggleWishlist(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"in_wishlist": saved})
}

// HandleRemove unsaves a product.
func (h *WishlistHandler) HandleRemove(c *fiber.Ctx) error {
	if err := h.service.RemoveFromWishlist(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("productId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
