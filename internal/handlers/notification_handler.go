package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles HTTP requests for the caller's notifications.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterRoutes registers the notification routes behind auth.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	notificationRoutes := router.Group("/notifications", auth)
	notificationRoutes.Get("/", h.HandleList)
	notificationRoutes.Get("/unread-count", h.HandleUnreadCount)
	notificationRoutes.Patch("/read-all", h.HandleMarkAllRead)
	notificationRoutes.Patch("/:id/read", h.HandleMarkRead)
	notificationRoutes.Delete("/", h.HandleDeleteAll)
	notificationRoutes.Delete("/:id", h.HandleDelete)
}

// HandleList lists the caller's notifications, newest first.
func (h *NotificationHandler) HandleList(c *fiber.Ctx) error {
	notifications, err := h.service.GetUserNotifications(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notifications)
}

func (h *NotificationHandler) HandleUnreadCount(c *fiber.Ctx) error {
	count, err := h.service.CountUnread(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

func (h *NotificationHandler) HandleMarkRead(c *fiber.Ctx) error {
	if err := h.service.MarkNotificationRead(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) HandleMarkAllRead(c *fiber.Ctx) error {
	n, err := h.service.MarkAllNotificationsRead(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *NotificationHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteNotification(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) HandleDeleteAll(c *fiber.Ctx) error {
	n, err := h.service.DeleteAllNotifications(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": n})
}
