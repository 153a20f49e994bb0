package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewYakovlev/aso-uni/domain"
	"github.com/AndrewYakovlev/aso-uni/mocks"
)

func testOTPConfig() OTPConfig {
	return OTPConfig{
		Length:        4,
		TTL:           5 * time.Minute,
		MaxAttempts:   3,
		SendCooldown:  time.Minute,
		SendWindow:    15 * time.Minute,
		SendWindowMax: 3,
		SMSTimeout:    10 * time.Second,
	}
}

func newTestOTPService(codes *mocks.MockOtpCodeRepository, limiter *mocks.MockRateLimiter, sms *mocks.MockSMSSender) domain.OTPService {
	return NewOTPService(codes, limiter, sms, testOTPConfig(), zerolog.Nop())
}

func TestSendCode_Success(t *testing.T) {
	var created *domain.OtpCode
	codes := &mocks.MockOtpCodeRepository{
		CreateFunc: func(ctx context.Context, code *domain.OtpCode) error {
			created = code
			return nil
		},
	}
	sms := &mocks.MockSMSSender{}
	svc := newTestOTPService(codes, &mocks.MockRateLimiter{}, sms)

	ttl, err := svc.SendCode(context.Background(), "8 (916) 123-45-67")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, ttl)

	require.NotNil(t, created)
	assert.Equal(t, "+79161234567", created.Phone)
	assert.Len(t, created.Code, 4)
	for _, r := range created.Code {
		assert.True(t, r >= '0' && r <= '9')
	}

	require.Len(t, sms.Sent, 1)
	assert.Equal(t, "+79161234567", sms.Sent[0])
}

func TestSendCode_InvalidPhone(t *testing.T) {
	svc := newTestOTPService(&mocks.MockOtpCodeRepository{}, &mocks.MockRateLimiter{}, &mocks.MockSMSSender{})

	_, err := svc.SendCode(context.Background(), "not-a-phone")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
}

func TestSendCode_CooldownHeld(t *testing.T) {
	limiter := &mocks.MockRateLimiter{
		AcquireCooldownFunc: func(ctx context.Context, phone string, ttl time.Duration) (bool, time.Duration, error) {
			return false, 42 * time.Second, nil
		},
	}
	sms := &mocks.MockSMSSender{}
	svc := newTestOTPService(&mocks.MockOtpCodeRepository{}, limiter, sms)

	_, err := svc.SendCode(context.Background(), "+79161234567")
	require.ErrorIs(t, err, domain.ErrRateLimited)

	var rate *domain.RateLimitError
	require.ErrorAs(t, err, &rate)
	assert.Equal(t, 42*time.Second, rate.RetryAfter)
	assert.Empty(t, sms.Sent)
}

func TestSendCode_WindowExceeded(t *testing.T) {
	limiter := &mocks.MockRateLimiter{
		IncrementWindowFunc: func(ctx context.Context, phone string, ttl time.Duration) (int64, time.Duration, error) {
			return 4, 9 * time.Minute, nil
		},
	}
	sms := &mocks.MockSMSSender{}
	svc := newTestOTPService(&mocks.MockOtpCodeRepository{}, limiter, sms)

	_, err := svc.SendCode(context.Background(), "+79161234567")
	require.ErrorIs(t, err, domain.ErrRateLimited)

	var rate *domain.RateLimitError
	require.ErrorAs(t, err, &rate)
	assert.Equal(t, 9*time.Minute, rate.RetryAfter)
	assert.Empty(t, sms.Sent)
}

func TestSendCode_SMSFailureRollsBack(t *testing.T) {
	var deletedExact, releasedCooldown, decrementedWindow bool
	codes := &mocks.MockOtpCodeRepository{
		DeleteExactFunc: func(ctx context.Context, phone, code string) error {
			deletedExact = true
			return nil
		},
	}
	limiter := &mocks.MockRateLimiter{
		ReleaseCooldownFunc: func(ctx context.Context, phone string) error {
			releasedCooldown = true
			return nil
		},
		DecrementWindowFunc: func(ctx context.Context, phone string) error {
			decrementedWindow = true
			return nil
		},
	}
	sms := &mocks.MockSMSSender{
		SendFunc: func(ctx context.Context, phone, message string) error {
			return errors.New("gateway unreachable")
		},
	}
	svc := newTestOTPService(codes, limiter, sms)

	_, err := svc.SendCode(context.Background(), "+79161234567")
	require.ErrorIs(t, err, domain.ErrSMSDelivery)
	assert.True(t, deletedExact, "undelivered code must be removed")
	assert.True(t, releasedCooldown, "cooldown must be released for immediate retry")
	assert.True(t, decrementedWindow, "failed send must not consume window quota")
}

func TestVerifyCode_Success(t *testing.T) {
	var deletedPhone string
	codes := &mocks.MockOtpCodeRepository{
		FindMatchFunc: func(ctx context.Context, phone, code string, maxAttempts int) (*domain.OtpCode, error) {
			return &domain.OtpCode{Phone: phone, Code: code}, nil
		},
		DeleteByPhoneFunc: func(ctx context.Context, phone string) error {
			deletedPhone = phone
			return nil
		},
	}
	svc := newTestOTPService(codes, &mocks.MockRateLimiter{}, &mocks.MockSMSSender{})

	phone, err := svc.VerifyCode(context.Background(), "89161234567", "1234")
	require.NoError(t, err)
	assert.Equal(t, "+79161234567", phone)
	assert.Equal(t, "+79161234567", deletedPhone, "all codes for the phone must be consumed")
}

func TestVerifyCode_MissBurnsAttempt(t *testing.T) {
	var incremented bool
	codes := &mocks.MockOtpCodeRepository{
		CountActiveFunc: func(ctx context.Context, phone string, maxAttempts int) (int64, error) {
			return 1, nil
		},
		IncrementAttemptsFunc: func(ctx context.Context, phone string) error {
			incremented = true
			return nil
		},
	}
	svc := newTestOTPService(codes, &mocks.MockRateLimiter{}, &mocks.MockSMSSender{})

	_, err := svc.VerifyCode(context.Background(), "+79161234567", "0000")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	assert.True(t, incremented)
}

func TestVerifyCode_Exhausted(t *testing.T) {
	codes := &mocks.MockOtpCodeRepository{
		HasExhaustedFunc: func(ctx context.Context, phone string, maxAttempts int) (bool, error) {
			return true, nil
		},
	}
	svc := newTestOTPService(codes, &mocks.MockRateLimiter{}, &mocks.MockSMSSender{})

	_, err := svc.VerifyCode(context.Background(), "+79161234567", "0000")
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
}

func TestVerifyCode_NoCodeAtAll(t *testing.T) {
	svc := newTestOTPService(&mocks.MockOtpCodeRepository{}, &mocks.MockRateLimiter{}, &mocks.MockSMSSender{})

	_, err := svc.VerifyCode(context.Background(), "+79161234567", "0000")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestVerifyCode_InvalidPhone(t *testing.T) {
	svc := newTestOTPService(&mocks.MockOtpCodeRepository{}, &mocks.MockRateLimiter{}, &mocks.MockSMSSender{})

	_, err := svc.VerifyCode(context.Background(), "abc", "0000")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
}
