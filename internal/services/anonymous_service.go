package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// userAgentMax matches the user_agent column width; longer headers are
// stored truncated.
const userAgentMax = 500

// AnonymousServiceImpl implements domain.AnonymousSessionService.
type AnonymousServiceImpl struct {
	sessions domain.AnonymousSessionRepository
	limiter  domain.RateLimiter
	throttle time.Duration
	logger   zerolog.Logger
}

// NewAnonymousService creates a new anonymous session service. throttle
// bounds how often a session's lastActivity is written.
func NewAnonymousService(sessions domain.AnonymousSessionRepository, limiter domain.RateLimiter, throttle time.Duration, logger zerolog.Logger) domain.AnonymousSessionService {
	return &AnonymousServiceImpl{
		sessions: sessions,
		limiter:  limiter,
		throttle: throttle,
		logger:   logger,
	}
}

// Provision implements domain.AnonymousSessionService.
func (s *AnonymousServiceImpl) Provision(ctx context.Context, ipAddress, userAgent string) (*domain.AnonymousSession, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("token generation: %w", err)
	}

	if len(userAgent) > userAgentMax {
		userAgent = userAgent[:userAgentMax]
	}

	session := &domain.AnonymousSession{
		Token:          token,
		SessionID:      generateSessionID(),
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		LastActivityAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("session persistence: %w", err)
	}

	s.logger.Debug().Str("session_id", session.SessionID).Msg("anonymous session provisioned")
	return session, nil
}

// Resolve implements domain.AnonymousSessionService. The bearer token is the
// primary lookup; the legacy sessionId namespace is tried as a fallback for
// sessions issued before the token credential existed.
func (s *AnonymousServiceImpl) Resolve(ctx context.Context, token string) (*domain.AnonymousSession, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	session, err = s.sessions.FindBySessionID(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("legacy session lookup: %w", err)
	}
	return session, nil
}

// Touch implements domain.AnonymousSessionService. At most one write per
// session per throttle window reaches the database.
func (s *AnonymousServiceImpl) Touch(ctx context.Context, session *domain.AnonymousSession) error {
	ok, err := s.limiter.AllowActivityWrite(ctx, "anon:"+strconv.FormatUint(uint64(session.ID), 10), s.throttle)
	if err != nil {
		// Activity tracking is best-effort; a limiter outage must not break
		// session resolution.
		s.logger.Warn().Err(err).Msg("activity throttle check failed")
		return nil
	}
	if !ok {
		return nil
	}
	if err := s.sessions.TouchActivity(ctx, session.ID); err != nil {
		s.logger.Warn().Err(err).Uint("anonymous_id", session.ID).Msg("failed to record session activity")
	}
	return nil
}

// generateToken produces the 64-hex-char bearer credential.
func generateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// generateSessionID produces the legacy-format secondary identifier.
func generateSessionID() string {
	return "anon_" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "_" + uuid.NewString()
}
