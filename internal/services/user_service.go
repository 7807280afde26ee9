package services

import (
	"context"
	"strings"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// UserService handles the storefront-side view of user accounts. Credentials are
// owned by the authentication service.
type UserService struct {
	users         repositories.UserRepository
	notifications *NotificationService
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, notifications *NotificationService) *UserService {
	return &UserService{
		users:         users,
		notifications: notifications,
	}
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes the display name and phone of a user.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, phone string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if err := s.users.UpdateProfile(ctx, userID, name, strings.TrimSpace(phone)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// SetRole changes the role of a user.
func (s *UserService) SetRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.Validation("unknown role %q", role)
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// CompleteSignup runs the storefront side of a new account: the welcome message
// and the admin signup notice.
func (s *UserService) CompleteSignup(ctx context.Context, userID string) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.notifications.NotifySignup(ctx, user), nil
}
