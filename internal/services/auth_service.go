package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// AuthServiceImpl implements domain.AuthService: the verify-code login flow
// with user lookup-or-create, identity merge and token minting, plus refresh.
type AuthServiceImpl struct {
	otp       domain.OTPService
	users     domain.UserRepository
	anonymous domain.AnonymousSessionService
	owned     domain.OwnedRecordsRepository
	tokens    domain.TokenService
	logger    zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	otp domain.OTPService,
	users domain.UserRepository,
	anonymous domain.AnonymousSessionService,
	owned domain.OwnedRecordsRepository,
	tokens domain.TokenService,
	logger zerolog.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		otp:       otp,
		users:     users,
		anonymous: anonymous,
		owned:     owned,
		tokens:    tokens,
		logger:    logger,
	}
}

// Authenticate implements domain.AuthService.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, input domain.AuthenticateInput) (*domain.AuthResult, error) {
	phone, err := s.otp.VerifyCode(ctx, input.Phone, input.Code)
	if err != nil {
		return nil, err
	}

	user, isNew, err := s.lookupOrCreate(ctx, phone, input)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record login time")
	}

	merge := s.mergeAnonymous(ctx, user.ID, input.AnonymousToken)

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", user.ID).Bool("new_user", isNew).Bool("merged", merge.Merged).Msg("user authenticated")

	return &domain.AuthResult{
		User:      user,
		Tokens:    pair,
		Merge:     merge,
		IsNewUser: isNew,
	}, nil
}

// Refresh implements domain.AuthService. A valid refresh token yields a
// fully rotated pair; both tokens are reissued.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	if user.IsDeleted() {
		return nil, domain.ErrTokenInvalid
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResult{User: user, Tokens: pair}, nil
}

// lookupOrCreate finds the user for a verified phone, creating a customer
// record on first login. Profile fields from the request only fill in, never
// blank out, existing data.
func (s *AuthServiceImpl) lookupOrCreate(ctx context.Context, phone string, input domain.AuthenticateInput) (*domain.User, bool, error) {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("user lookup: %w", err)
	}

	if user == nil {
		user = &domain.User{
			Phone:         phone,
			Email:         input.Email,
			FirstName:     input.FirstName,
			LastName:      input.LastName,
			Role:          domain.RoleCustomer,
			PhoneVerified: true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("user creation: %w", err)
		}
		return user, true, nil
	}

	changed := !user.PhoneVerified
	user.PhoneVerified = true
	if input.FirstName != "" && input.FirstName != user.FirstName {
		user.FirstName = input.FirstName
		changed = true
	}
	if input.LastName != "" && input.LastName != user.LastName {
		user.LastName = input.LastName
		changed = true
	}
	if input.Email != "" && input.Email != user.Email {
		user.Email = input.Email
		changed = true
	}
	if changed {
		if err := s.users.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("user update: %w", err)
		}
	}
	return user, false, nil
}

// mergeAnonymous folds the anonymous session's records into the user. The
// credential resolves through the anonymous service so both token forms,
// session tokens and legacy session ids, find their session. Merge failure is
// recorded and logged but never fails the login.
func (s *AuthServiceImpl) mergeAnonymous(ctx context.Context, userID uint, anonymousToken string) domain.MergeResult {
	if anonymousToken == "" {
		return domain.MergeResult{}
	}

	session, err := s.anonymous.Resolve(ctx, anonymousToken)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Warn().Err(err).Msg("anonymous session lookup failed during merge")
		}
		return domain.MergeResult{}
	}

	if err := s.owned.Merge(ctx, userID, session.ID); err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Uint("anonymous_id", session.ID).Msg("identity merge failed")
		return domain.MergeResult{Attempted: true, Err: err}
	}
	return domain.MergeResult{Attempted: true, Merged: true}
}

func (s *AuthServiceImpl) mintPair(user *domain.User) (domain.TokenPair, error) {
	access, err := s.tokens.MintAccess(user.ID, user.Role)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("access token mint: %w", err)
	}
	refresh, err := s.tokens.MintRefresh(user.ID, user.Role)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("refresh token mint: %w", err)
	}
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}
