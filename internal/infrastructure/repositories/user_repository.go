package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM. The
// gorm.DeletedAt column makes every query here exclude soft-deleted rows,
// which is exactly the "deleted users do not exist for authentication"
// invariant.
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository. The unique index on phone is the
// final guard against two concurrent verifications creating two users.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := userToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	return nil
}

// FindByPhone implements domain.UserRepository.
func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository.
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userToDomain(&dbUser), nil
}

// Update implements domain.UserRepository. Only profile fields are written;
// phone and role changes go through dedicated flows.
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"email":          user.Email,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"phone_verified": user.PhoneVerified,
	}).Error
}

// TouchLogin implements domain.UserRepository.
func (r *UserRepositoryImpl) TouchLogin(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_at":    now,
		"last_activity_at": now,
	}).Error
}

// TouchActivity implements domain.UserRepository.
func (r *UserRepositoryImpl) TouchActivity(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", id).
		Update("last_activity_at", time.Now()).Error
}

func userToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:             user.ID,
		Phone:          user.Phone,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           string(user.Role),
		PhoneVerified:  user.PhoneVerified,
		LastLoginAt:    user.LastLoginAt,
		LastActivityAt: user.LastActivityAt,
	}
}

func userToDomain(dbUser *DBUser) *domain.User {
	u := &domain.User{
		ID:             dbUser.ID,
		Phone:          dbUser.Phone,
		Email:          dbUser.Email,
		FirstName:      dbUser.FirstName,
		LastName:       dbUser.LastName,
		Role:           domain.UserRole(dbUser.Role),
		PhoneVerified:  dbUser.PhoneVerified,
		CreatedAt:      dbUser.CreatedAt,
		LastLoginAt:    dbUser.LastLoginAt,
		LastActivityAt: dbUser.LastActivityAt,
	}
	if dbUser.DeletedAt.Valid {
		t := dbUser.DeletedAt.Time
		u.DeletedAt = &t
	}
	return u
}
