package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles admin user management and the auth service's hooks.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterAdminRoutes registers user management under an admin-only router.
func (h *UserHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Patch("/users/:id/role", h.HandleSetRole)
}

// RegisterInternalRoutes registers hooks called by the auth service.
func (h *UserHandler) RegisterInternalRoutes(internal fiber.Router) {
	internal.Post("/users/:id/signup", h.HandleSignup)
}

// RoleRequest represents the request body for a role change.
type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin customer"`
}

// HandleSetRole promotes or demotes a user.
func (h *UserHandler) HandleSetRole(c *fiber.Ctx) error {
	var req RoleRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	user, err := h.service.SetRole(c.UserContext(), c.Params("id"), models.Role(req.Role))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleSignup sends the welcome and admin signup notifications for a new account.
func (h *UserHandler) HandleSignup(c *fiber.Ctx) error {
	delivered, err := h.service.CompleteSignup(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"delivered": delivered})
}
