package handlers

import (
	"fmt"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the customer order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// RegisterAdminRoutes registers order management under an admin-only router.
func (h *OrderHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/orders", h.HandleGetAllOrders)
	admin.Patch("/orders/:id/status", h.HandleUpdateOrderStatus)
}

// CreateOrderRequest represents the request body for checkout.
type CreateOrderRequest struct {
	Shipping models.ShippingInfo `json:"shipping"`
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	TrackingNumber *string `json:"tracking_number"`
	Carrier        *string `json:"carrier"`
}

// HandleGetOrders retrieves the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetUserOrders(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetAllOrders retrieves every order for admins.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order the caller may see.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderForUser(c.UserContext(), c.Params("id"), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleCreateOrder checks out the caller's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	createdOrder, err := h.service.CreateOrder(c.UserContext(), middleware.CurrentUser(c).ID, req.Shipping)
	if err != nil {
		return respondError(c, err)
	}

	// Return the created order with its new ID and a 201 Created status
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleCancelOrder cancels one of the caller's orders.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), c.Params("id"), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), orderID, models.OrderStatus(req.Status), req.TrackingNumber, req.Carrier)
	if err != nil {
		logger.Warn().Err(err).Str("order_id", orderID).Str("status", req.Status).Msg("Order status update rejected")
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, order.Status),
		"order":   order,
	})
}
