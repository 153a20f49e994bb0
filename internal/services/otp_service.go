package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// OTPConfig holds the issuing policy: 4-digit codes, 5 minute lifetime,
// 3 attempts, 60 second cooldown and 3 sends per 15 minute window.
type OTPConfig struct {
	Length        int
	TTL           time.Duration
	MaxAttempts   int
	SendCooldown  time.Duration
	SendWindow    time.Duration
	SendWindowMax int
	SMSTimeout    time.Duration
}

// OTPServiceImpl implements domain.OTPService. Codes persist in the
// credential store; the rate limiter holds only the ephemeral counters.
type OTPServiceImpl struct {
	codes   domain.OtpCodeRepository
	limiter domain.RateLimiter
	sms     domain.SMSSender
	config  OTPConfig
	logger  zerolog.Logger
}

// NewOTPService creates a new OTP service.
func NewOTPService(codes domain.OtpCodeRepository, limiter domain.RateLimiter, sms domain.SMSSender, config OTPConfig, logger zerolog.Logger) domain.OTPService {
	return &OTPServiceImpl{
		codes:   codes,
		limiter: limiter,
		sms:     sms,
		config:  config,
		logger:  logger,
	}
}

// SendCode implements domain.OTPService.
func (s *OTPServiceImpl) SendCode(ctx context.Context, rawPhone string) (time.Duration, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return 0, err
	}

	ok, retryAfter, err := s.limiter.AcquireCooldown(ctx, phone, s.config.SendCooldown)
	if err != nil {
		return 0, fmt.Errorf("cooldown check: %w", err)
	}
	if !ok {
		return 0, &domain.RateLimitError{RetryAfter: retryAfter}
	}

	count, windowLeft, err := s.limiter.IncrementWindow(ctx, phone, s.config.SendWindow)
	if err != nil {
		return 0, fmt.Errorf("send window check: %w", err)
	}
	if count > int64(s.config.SendWindowMax) {
		return 0, &domain.RateLimitError{RetryAfter: windowLeft}
	}

	// Drop expired and exhausted codes so stale state cannot be accepted
	// and attempt counters do not leak across codes.
	if err := s.codes.DeleteStale(ctx, phone, s.config.MaxAttempts); err != nil {
		return 0, fmt.Errorf("stale code cleanup: %w", err)
	}

	code, err := s.generateCode()
	if err != nil {
		return 0, fmt.Errorf("code generation: %w", err)
	}

	otp := &domain.OtpCode{
		Phone:     phone,
		Code:      code,
		Attempts:  0,
		ExpiresAt: time.Now().Add(s.config.TTL),
	}
	if err := s.codes.Create(ctx, otp); err != nil {
		return 0, fmt.Errorf("code persistence: %w", err)
	}

	message := fmt.Sprintf("Ваш код подтверждения: %s", code)
	smsCtx, cancel := context.WithTimeout(ctx, s.config.SMSTimeout)
	err = s.sms.Send(smsCtx, phone, message)
	cancel()
	if err != nil {
		// Never leave an undeliverable code active, and let the caller
		// retry immediately.
		if delErr := s.codes.DeleteExact(ctx, phone, code); delErr != nil {
			s.logger.Error().Err(delErr).Str("phone", phone).Msg("failed to roll back undelivered otp code")
		}
		s.limiter.ReleaseCooldown(ctx, phone)
		s.limiter.DecrementWindow(ctx, phone)
		if errors.Is(err, domain.ErrSMSDelivery) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", domain.ErrSMSDelivery, err)
	}

	s.logger.Info().Str("phone", phone).Msg("otp code dispatched")
	return s.config.TTL, nil
}

// VerifyCode implements domain.OTPService.
func (s *OTPServiceImpl) VerifyCode(ctx context.Context, rawPhone, code string) (string, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return "", err
	}

	otp, err := s.codes.FindMatch(ctx, phone, code, s.config.MaxAttempts)
	if err != nil && !errors.Is(err, domain.ErrOTPNotFound) {
		return "", fmt.Errorf("code lookup: %w", err)
	}

	if otp == nil {
		active, err := s.codes.CountActive(ctx, phone, s.config.MaxAttempts)
		if err != nil {
			return "", fmt.Errorf("active code count: %w", err)
		}
		if active == 0 {
			exhausted, err := s.codes.HasExhausted(ctx, phone, s.config.MaxAttempts)
			if err != nil {
				return "", fmt.Errorf("exhausted code check: %w", err)
			}
			if exhausted {
				return "", domain.ErrTooManyAttempts
			}
		}
		// Burn an attempt on every outstanding code for the phone, then
		// reject.
		if err := s.codes.IncrementAttempts(ctx, phone); err != nil {
			return "", fmt.Errorf("attempt increment: %w", err)
		}
		return "", domain.ErrInvalidCode
	}

	// Single use: a verified code (and every sibling) is gone.
	if err := s.codes.DeleteByPhone(ctx, phone); err != nil {
		return "", fmt.Errorf("code consumption: %w", err)
	}
	return phone, nil
}

// generateCode produces a fixed-length numeric code from crypto/rand.
func (s *OTPServiceImpl) generateCode() (string, error) {
	digits := make([]byte, s.config.Length)
	for i := 0; i < s.config.Length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
