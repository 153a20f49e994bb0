package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// OtpCodeRepositoryImpl implements domain.OtpCodeRepository using GORM.
type OtpCodeRepositoryImpl struct {
	db *gorm.DB
}

// NewOtpCodeRepository creates a new OTP code repository.
func NewOtpCodeRepository(db *gorm.DB) domain.OtpCodeRepository {
	return &OtpCodeRepositoryImpl{db: db}
}

// Create implements domain.OtpCodeRepository.
func (r *OtpCodeRepositoryImpl) Create(ctx context.Context, code *domain.OtpCode) error {
	dbCode := &DBOtpCode{
		Phone:     code.Phone,
		Code:      code.Code,
		Attempts:  code.Attempts,
		ExpiresAt: code.ExpiresAt,
	}
	if err := r.db.WithContext(ctx).Create(dbCode).Error; err != nil {
		return err
	}
	code.ID = dbCode.ID
	code.CreatedAt = dbCode.CreatedAt
	return nil
}

// FindMatch implements domain.OtpCodeRepository.
func (r *OtpCodeRepositoryImpl) FindMatch(ctx context.Context, phone, code string, maxAttempts int) (*domain.OtpCode, error) {
	var dbCode DBOtpCode
	err := r.db.WithContext(ctx).
		Where("phone = ? AND code = ? AND expires_at > ? AND attempts < ?", phone, code, time.Now(), maxAttempts).
		Order("created_at DESC").
		First(&dbCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}
	return &domain.OtpCode{
		ID:        dbCode.ID,
		Phone:     dbCode.Phone,
		Code:      dbCode.Code,
		Attempts:  dbCode.Attempts,
		ExpiresAt: dbCode.ExpiresAt,
		CreatedAt: dbCode.CreatedAt,
	}, nil
}

// CountActive implements domain.OtpCodeRepository.
func (r *OtpCodeRepositoryImpl) CountActive(ctx context.Context, phone string, maxAttempts int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBOtpCode{}).
		Where("phone = ? AND expires_at > ? AND attempts < ?", phone, time.Now(), maxAttempts).
		Count(&count).Error
	return count, err
}

// HasExhausted implements domain.OtpCodeRepository.
func (r *OtpCodeRepositoryImpl) HasExhausted(ctx context.Context, phone string, maxAttempts int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBOtpCode{}).
		Where("phone = ? AND expires_at > ? AND attempts >= ?", phone, time.Now(), maxAttempts).
		Count(&count).Error
	return count > 0, err
}

// IncrementAttempts implements domain.OtpCodeRepository. Bumps every
// unexpired code for the phone, so a brute-force attempt burns all
// outstanding codes at once.
func (r *OtpCodeRepositoryImpl) IncrementAttempts(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).Model(&DBOtpCode{}).
		Where("phone = ? AND expires_at > ?", phone, time.Now()).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

// DeleteByPhone implements domain.OtpCodeRepository.
func (r *OtpCodeRepositoryImpl) DeleteByPhone(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).Where("phone = ?", phone).Delete(&DBOtpCode{}).Error
}

// DeleteStale implements domain.OtpCodeRepository.
func (r *OtpCodeRepositoryImpl) DeleteStale(ctx context.Context, phone string, maxAttempts int) error {
	return r.db.WithContext(ctx).
		Where("phone = ? AND (expires_at < ? OR attempts >= ?)", phone, time.Now(), maxAttempts).
		Delete(&DBOtpCode{}).Error
}

// DeleteExact implements domain.OtpCodeRepository. Used to roll back a code
// whose SMS dispatch failed.
func (r *OtpCodeRepositoryImpl) DeleteExact(ctx context.Context, phone, code string) error {
	return r.db.WithContext(ctx).Where("phone = ? AND code = ?", phone, code).Delete(&DBOtpCode{}).Error
}
