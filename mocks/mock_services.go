package mocks

import (
	"context"
	"time"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// MockTokenService implements domain.TokenService.
type MockTokenService struct {
	MintAccessFunc    func(userID uint, role domain.UserRole) (string, error)
	MintRefreshFunc   func(userID uint, role domain.UserRole) (string, error)
	VerifyAccessFunc  func(token string) (*domain.TokenClaims, error)
	VerifyRefreshFunc func(token string) (*domain.TokenClaims, error)
	AccessTTLFunc     func() time.Duration
}

func (m *MockTokenService) MintAccess(userID uint, role domain.UserRole) (string, error) {
	if m.MintAccessFunc != nil {
		return m.MintAccessFunc(userID, role)
	}
	return "access-token", nil
}

func (m *MockTokenService) MintRefresh(userID uint, role domain.UserRole) (string, error) {
	if m.MintRefreshFunc != nil {
		return m.MintRefreshFunc(userID, role)
	}
	return "refresh-token", nil
}

func (m *MockTokenService) VerifyAccess(token string) (*domain.TokenClaims, error) {
	if m.VerifyAccessFunc != nil {
		return m.VerifyAccessFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	if m.VerifyRefreshFunc != nil {
		return m.VerifyRefreshFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockTokenService) AccessTTL() time.Duration {
	if m.AccessTTLFunc != nil {
		return m.AccessTTLFunc()
	}
	return 15 * time.Minute
}

// MockSMSSender implements domain.SMSSender.
type MockSMSSender struct {
	SendFunc func(ctx context.Context, phone, message string) error
	Sent     []string
}

func (m *MockSMSSender) Send(ctx context.Context, phone, message string) error {
	m.Sent = append(m.Sent, phone)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, phone, message)
	}
	return nil
}

// MockRateLimiter implements domain.RateLimiter. Defaults always allow.
type MockRateLimiter struct {
	AcquireCooldownFunc    func(ctx context.Context, phone string, ttl time.Duration) (bool, time.Duration, error)
	ReleaseCooldownFunc    func(ctx context.Context, phone string) error
	IncrementWindowFunc    func(ctx context.Context, phone string, ttl time.Duration) (int64, time.Duration, error)
	DecrementWindowFunc    func(ctx context.Context, phone string) error
	AllowActivityWriteFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

func (m *MockRateLimiter) AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, time.Duration, error) {
	if m.AcquireCooldownFunc != nil {
		return m.AcquireCooldownFunc(ctx, phone, ttl)
	}
	return true, 0, nil
}

func (m *MockRateLimiter) ReleaseCooldown(ctx context.Context, phone string) error {
	if m.ReleaseCooldownFunc != nil {
		return m.ReleaseCooldownFunc(ctx, phone)
	}
	return nil
}

func (m *MockRateLimiter) IncrementWindow(ctx context.Context, phone string, ttl time.Duration) (int64, time.Duration, error) {
	if m.IncrementWindowFunc != nil {
		return m.IncrementWindowFunc(ctx, phone, ttl)
	}
	return 1, ttl, nil
}

func (m *MockRateLimiter) DecrementWindow(ctx context.Context, phone string) error {
	if m.DecrementWindowFunc != nil {
		return m.DecrementWindowFunc(ctx, phone)
	}
	return nil
}

func (m *MockRateLimiter) AllowActivityWrite(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.AllowActivityWriteFunc != nil {
		return m.AllowActivityWriteFunc(ctx, key, ttl)
	}
	return true, nil
}

// MockOTPService implements domain.OTPService.
type MockOTPService struct {
	SendCodeFunc   func(ctx context.Context, rawPhone string) (time.Duration, error)
	VerifyCodeFunc func(ctx context.Context, rawPhone, code string) (string, error)
}

func (m *MockOTPService) SendCode(ctx context.Context, rawPhone string) (time.Duration, error) {
	if m.SendCodeFunc != nil {
		return m.SendCodeFunc(ctx, rawPhone)
	}
	return 5 * time.Minute, nil
}

func (m *MockOTPService) VerifyCode(ctx context.Context, rawPhone, code string) (string, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, rawPhone, code)
	}
	return rawPhone, nil
}

// MockAuthService implements domain.AuthService.
type MockAuthService struct {
	AuthenticateFunc func(ctx context.Context, input domain.AuthenticateInput) (*domain.AuthResult, error)
	RefreshFunc      func(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
}

func (m *MockAuthService) Authenticate(ctx context.Context, input domain.AuthenticateInput) (*domain.AuthResult, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, input)
	}
	return nil, domain.ErrInvalidCode
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, domain.ErrTokenInvalid
}

// MockAnonymousService implements domain.AnonymousSessionService.
type MockAnonymousService struct {
	ProvisionFunc func(ctx context.Context, ipAddress, userAgent string) (*domain.AnonymousSession, error)
	ResolveFunc   func(ctx context.Context, token string) (*domain.AnonymousSession, error)
	TouchFunc     func(ctx context.Context, session *domain.AnonymousSession) error
}

func (m *MockAnonymousService) Provision(ctx context.Context, ipAddress, userAgent string) (*domain.AnonymousSession, error) {
	if m.ProvisionFunc != nil {
		return m.ProvisionFunc(ctx, ipAddress, userAgent)
	}
	return &domain.AnonymousSession{ID: 1, Token: "mock-token", SessionID: "mock-session"}, nil
}

func (m *MockAnonymousService) Resolve(ctx context.Context, token string) (*domain.AnonymousSession, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, token)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockAnonymousService) Touch(ctx context.Context, session *domain.AnonymousSession) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, session)
	}
	return nil
}

// MockSessionResolver implements domain.SessionResolver.
type MockSessionResolver struct {
	ResolveFunc func(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
}

func (m *MockSessionResolver) Resolve(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, creds)
	}
	return nil, nil
}
