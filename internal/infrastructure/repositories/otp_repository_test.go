package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

const testPhone = "+79161234567"

func seedCode(t *testing.T, repo domain.OtpCodeRepository, phone, code string, expiresAt time.Time) *domain.OtpCode {
	t.Helper()
	otp := &domain.OtpCode{Phone: phone, Code: code, ExpiresAt: expiresAt}
	require.NoError(t, repo.Create(context.Background(), otp))
	return otp
}

func TestOtpRepository_FindMatch(t *testing.T) {
	repo := NewOtpCodeRepository(newTestDB(t))
	ctx := context.Background()

	seedCode(t, repo, testPhone, "1234", time.Now().Add(5*time.Minute))

	otp, err := repo.FindMatch(ctx, testPhone, "1234", 3)
	require.NoError(t, err)
	assert.Equal(t, "1234", otp.Code)

	_, err = repo.FindMatch(ctx, testPhone, "9999", 3)
	assert.ErrorIs(t, err, domain.ErrOTPNotFound)
}

func TestOtpRepository_FindMatch_IgnoresExpired(t *testing.T) {
	repo := NewOtpCodeRepository(newTestDB(t))
	ctx := context.Background()

	seedCode(t, repo, testPhone, "1234", time.Now().Add(-time.Minute))

	_, err := repo.FindMatch(ctx, testPhone, "1234", 3)
	assert.ErrorIs(t, err, domain.ErrOTPNotFound)
}

func TestOtpRepository_FindMatch_IgnoresExhausted(t *testing.T) {
	repo := NewOtpCodeRepository(newTestDB(t))
	ctx := context.Background()

	seedCode(t, repo, testPhone, "1234", time.Now().Add(5*time.Minute))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementAttempts(ctx, testPhone))
	}

	_, err := repo.FindMatch(ctx, testPhone, "1234", 3)
	assert.ErrorIs(t, err, domain.ErrOTPNotFound)
}

func TestOtpRepository_IncrementAttempts_HitsAllUnexpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewOtpCodeRepository(db)
	ctx := context.Background()

	seedCode(t, repo, testPhone, "1111", time.Now().Add(5*time.Minute))
	seedCode(t, repo, testPhone, "2222", time.Now().Add(5*time.Minute))
	seedCode(t, repo, testPhone, "3333", time.Now().Add(-time.Minute))

	require.NoError(t, repo.IncrementAttempts(ctx, testPhone))

	var codes []DBOtpCode
	require.NoError(t, db.Order("code").Find(&codes).Error)
	require.Len(t, codes, 3)
	assert.Equal(t, 1, codes[0].Attempts)
	assert.Equal(t, 1, codes[1].Attempts)
	assert.Equal(t, 0, codes[2].Attempts, "expired code must be untouched")
}

func TestOtpRepository_CountActiveAndHasExhausted(t *testing.T) {
	repo := NewOtpCodeRepository(newTestDB(t))
	ctx := context.Background()

	count, err := repo.CountActive(ctx, testPhone, 3)
	require.NoError(t, err)
	assert.Zero(t, count)

	exhausted, err := repo.HasExhausted(ctx, testPhone, 3)
	require.NoError(t, err)
	assert.False(t, exhausted)

	seedCode(t, repo, testPhone, "1234", time.Now().Add(5*time.Minute))

	count, err = repo.CountActive(ctx, testPhone, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementAttempts(ctx, testPhone))
	}

	count, err = repo.CountActive(ctx, testPhone, 3)
	require.NoError(t, err)
	assert.Zero(t, count)

	exhausted, err = repo.HasExhausted(ctx, testPhone, 3)
	require.NoError(t, err)
	assert.True(t, exhausted)
}

func TestOtpRepository_DeleteStale(t *testing.T) {
	db := newTestDB(t)
	repo := NewOtpCodeRepository(db)
	ctx := context.Background()

	seedCode(t, repo, testPhone, "1111", time.Now().Add(-time.Minute))
	fresh := seedCode(t, repo, testPhone, "2222", time.Now().Add(5*time.Minute))

	require.NoError(t, repo.DeleteStale(ctx, testPhone, 3))

	var codes []DBOtpCode
	require.NoError(t, db.Find(&codes).Error)
	require.Len(t, codes, 1)
	assert.Equal(t, fresh.Code, codes[0].Code)
}

func TestOtpRepository_DeleteByPhoneAndExact(t *testing.T) {
	db := newTestDB(t)
	repo := NewOtpCodeRepository(db)
	ctx := context.Background()

	seedCode(t, repo, testPhone, "1111", time.Now().Add(5*time.Minute))
	seedCode(t, repo, testPhone, "2222", time.Now().Add(5*time.Minute))
	seedCode(t, repo, "+79167654321", "3333", time.Now().Add(5*time.Minute))

	require.NoError(t, repo.DeleteExact(ctx, testPhone, "1111"))

	var count int64
	require.NoError(t, db.Model(&DBOtpCode{}).Where("phone = ?", testPhone).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.DeleteByPhone(ctx, testPhone))

	require.NoError(t, db.Model(&DBOtpCode{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "other phone's code must survive")
}
