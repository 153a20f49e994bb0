package domain

import (
	"context"
	"net/http"
	"time"
)

// UserRepository defines user data access operations. All lookups exclude
// soft-deleted rows.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, user *User) error
	TouchLogin(ctx context.Context, id uint) error
	TouchActivity(ctx context.Context, id uint) error
}

// AnonymousSessionRepository defines anonymous session data access.
type AnonymousSessionRepository interface {
	Create(ctx context.Context, session *AnonymousSession) error
	FindByToken(ctx context.Context, token string) (*AnonymousSession, error)
	FindBySessionID(ctx context.Context, sessionID string) (*AnonymousSession, error)
	TouchActivity(ctx context.Context, id uint) error
	CountLinkedTo(ctx context.Context, userID uint) (int64, error)
}

// OtpCodeRepository defines one-time code persistence. "Active" means
// unexpired with attempts under the limit.
type OtpCodeRepository interface {
	Create(ctx context.Context, code *OtpCode) error
	// FindMatch returns the most recent active code matching phone and code.
	FindMatch(ctx context.Context, phone, code string, maxAttempts int) (*OtpCode, error)
	// CountActive counts active codes for the phone.
	CountActive(ctx context.Context, phone string, maxAttempts int) (int64, error)
	// HasExhausted reports whether any unexpired code for the phone has
	// already burned through the attempt limit.
	HasExhausted(ctx context.Context, phone string, maxAttempts int) (bool, error)
	// IncrementAttempts bumps the attempt counter on every unexpired code
	// for the phone.
	IncrementAttempts(ctx context.Context, phone string) error
	DeleteByPhone(ctx context.Context, phone string) error
	// DeleteStale removes expired codes and codes past the attempt limit.
	DeleteStale(ctx context.Context, phone string, maxAttempts int) error
	DeleteExact(ctx context.Context, phone, code string) error
}

// OwnedRecordsRepository owns the domain records attached to either identity
// (carts, favorites, histories, chats) and the merge that moves them.
type OwnedRecordsRepository interface {
	// Merge atomically links the anonymous session to the user and
	// reassigns all anonymous-owned records. Safe to invoke more than once.
	Merge(ctx context.Context, userID, anonymousID uint) error
	UserCounts(ctx context.Context, userID uint) (*UserCounts, error)
	SessionCounts(ctx context.Context, anonymousID uint) (*SessionCounts, error)
}

// TokenService mints and verifies signed, time-bound credentials. Pure
// cryptographic transform, no storage.
type TokenService interface {
	MintAccess(userID uint, role UserRole) (string, error)
	MintRefresh(userID uint, role UserRole) (string, error)
	VerifyAccess(token string) (*TokenClaims, error)
	VerifyRefresh(token string) (*TokenClaims, error)
	AccessTTL() time.Duration
}

// SMSSender is the black-box SMS transport collaborator.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// RateLimiter holds the short-lived OTP counters and locks. Mutated only by
// the OTP issuer (plus the activity throttle used by the resolver).
type RateLimiter interface {
	// AcquireCooldown atomically claims the per-phone send cooldown.
	// Returns false with the remaining wait when the cooldown is held.
	AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, time.Duration, error)
	ReleaseCooldown(ctx context.Context, phone string) error
	// IncrementWindow bumps the long-window send counter, returning the new
	// count and the window's remaining lifetime.
	IncrementWindow(ctx context.Context, phone string, ttl time.Duration) (int64, time.Duration, error)
	DecrementWindow(ctx context.Context, phone string) error
	// AllowActivityWrite reports whether a throttled lastActivity write may
	// proceed for the key; at most one caller wins per ttl.
	AllowActivityWrite(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// OTPService issues and verifies one-time codes.
type OTPService interface {
	// SendCode normalizes the phone, enforces rate limits, persists a fresh
	// code and dispatches it. Returns the code lifetime.
	SendCode(ctx context.Context, rawPhone string) (time.Duration, error)
	// VerifyCode checks the submitted code and consumes it on success,
	// returning the canonical phone.
	VerifyCode(ctx context.Context, rawPhone, code string) (string, error)
}

// AuthService drives the verify-code login flow and token refresh.
type AuthService interface {
	Authenticate(ctx context.Context, input AuthenticateInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
}

// AnonymousSessionService issues and resolves anonymous sessions.
type AnonymousSessionService interface {
	Provision(ctx context.Context, ipAddress, userAgent string) (*AnonymousSession, error)
	// Resolve finds a session by bearer token, falling back to the legacy
	// sessionId namespace.
	Resolve(ctx context.Context, token string) (*AnonymousSession, error)
	// Touch refreshes lastActivity, throttled to bound write volume.
	Touch(ctx context.Context, session *AnonymousSession) error
}

// SessionResolver produces the canonical request identity. A valid access
// token always wins over an anonymous credential; nil identity with nil
// error means unauthenticated.
type SessionResolver interface {
	Resolve(ctx context.Context, creds Credentials) (*Identity, error)
}

// CredentialCarrier abstracts how credentials travel on the wire (cookies,
// headers) so transport detail stays out of the core logic.
type CredentialCarrier interface {
	Extract(r *http.Request) Credentials
	AttachSession(w http.ResponseWriter, session *AnonymousSession)
	AttachUser(w http.ResponseWriter, pair TokenPair)
	ClearSession(w http.ResponseWriter)
	ClearUser(w http.ResponseWriter)
}
