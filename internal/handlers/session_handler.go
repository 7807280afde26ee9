package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler exposes the caller's session and profile.
type SessionHandler struct {
	users *services.UserService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(users *services.UserService) *SessionHandler {
	return &SessionHandler{users: users}
}

// RegisterRoutes registers the session routes. optional resolves the caller when
// possible; auth requires a session.
func (h *SessionHandler) RegisterRoutes(router fiber.Router, optional, auth fiber.Handler) {
	router.Get("/session", optional, h.HandleGetSession)
	router.Patch("/me", auth, h.HandleUpdateProfile)
}

// HandleGetSession returns the signed-in user, or null for anonymous callers.
func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.CurrentUser(c)})
}

// ProfileRequest represents the request body for a profile update.
type ProfileRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

// HandleUpdateProfile updates the caller's name and phone.
func (h *SessionHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	user, err := h.users.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, req.Name, req.Phone)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
