package domain

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors
var (
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrInvalidInput = errors.New("invalid input")
)

// OTP errors
var (
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("verification attempts exhausted, request a new code")
	ErrRateLimited     = errors.New("rate limited")
	ErrSMSDelivery     = errors.New("sms delivery failed")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Lookup errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("anonymous session not found")
	ErrOTPNotFound     = errors.New("otp code not found")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("insufficient role permissions")
)

// RateLimitError is an ErrRateLimited with a machine-readable retry hint, so
// the client can render "wait N seconds" instead of a generic failure.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry in %d seconds", int(e.RetryAfter.Seconds()))
}

// Is lets errors.Is(err, ErrRateLimited) match the typed variant.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
