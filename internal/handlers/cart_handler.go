package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Get("/count", h.HandleGetCartCount)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// AddItemRequest represents the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// UpdateItemRequest represents the request body for changing a cart line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleGetCart returns the cart, or a null cart when the user has none yet.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"cart": cart, "count": cart.Count()})
}

// HandleGetCartCount returns the total quantity in the cart.
func (h *CartHandler) HandleGetCartCount(c *fiber.Ctx) error {
	count, err := h.service.GetCartCount(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	cart, err := h.service.AddItem(c.UserContext(), middleware.CurrentUser(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// HandleUpdateItem sets the quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req UpdateItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	cart, err := h.service.UpdateItemQuantity(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("productId"), req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// HandleRemoveItem drops a cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// HandleClearCart deletes the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext(), middleware.CurrentUser(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
