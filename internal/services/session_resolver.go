package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// SessionResolverImpl implements domain.SessionResolver. It is the single
// place that turns raw request credentials into a canonical identity.
type SessionResolverImpl struct {
	tokens    domain.TokenService
	users     domain.UserRepository
	anonymous domain.AnonymousSessionService
	logger    zerolog.Logger
}

// NewSessionResolver creates a new session resolver.
func NewSessionResolver(tokens domain.TokenService, users domain.UserRepository, anonymous domain.AnonymousSessionService, logger zerolog.Logger) domain.SessionResolver {
	return &SessionResolverImpl{
		tokens:    tokens,
		users:     users,
		anonymous: anonymous,
		logger:    logger,
	}
}

// Resolve implements domain.SessionResolver. A valid access token always
// wins over an anonymous credential. An invalid or dangling credential in
// one slot falls through to the next; no credential at all yields (nil, nil).
func (s *SessionResolverImpl) Resolve(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	if creds.AccessToken != "" {
		identity, err := s.resolveUser(ctx, creds.AccessToken)
		if err != nil {
			return nil, err
		}
		if identity != nil {
			return identity, nil
		}
	}

	if creds.AnonymousToken != "" {
		session, err := s.anonymous.Resolve(ctx, creds.AnonymousToken)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if err := s.anonymous.Touch(ctx, session); err != nil {
			s.logger.Warn().Err(err).Msg("session touch failed")
		}
		return &domain.Identity{Kind: domain.IdentityAnonymous, Session: session}, nil
	}

	return nil, nil
}

// resolveUser returns nil identity (not an error) when the token is invalid
// or the user is gone, so resolution can fall through to the anonymous slot.
func (s *SessionResolverImpl) resolveUser(ctx context.Context, accessToken string) (*domain.Identity, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if user.IsDeleted() {
		return nil, nil
	}

	return &domain.Identity{Kind: domain.IdentityUser, User: user}, nil
}
