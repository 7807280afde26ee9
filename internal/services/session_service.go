package services

import (
	"context"
	"errors"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// SessionService resolves opaque session tokens issued by the auth service.
type SessionService struct {
	sessions repositories.SessionRepository
	users    repositories.UserRepository
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions repositories.SessionRepository, users repositories.UserRepository) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
	}
}

// ResolveUser returns the user behind token, or nil when there is none.
// A miss is not an error: anonymous callers are a valid state for many reads.
func (s *SessionService) ResolveUser(ctx context.Context, token string) *models.User {
	if token == "" {
		return nil
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn().Err(err).Msg("Session lookup failed")
		}
		return nil
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn().Err(err).Str("user_id", session.UserID).Msg("User lookup failed")
		}
		return nil
	}
	return user
}
