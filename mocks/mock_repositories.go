// Package mocks provides hand-rolled test doubles for the domain
// interfaces. Each mock delegates to an optional function field and falls
// back to a benign default, so tests only wire the calls they care about.
package mocks

import (
	"context"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// MockUserRepository implements domain.UserRepository.
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *domain.User) error
	FindByPhoneFunc   func(ctx context.Context, phone string) (*domain.User, error)
	FindByIDFunc      func(ctx context.Context, id uint) (*domain.User, error)
	UpdateFunc        func(ctx context.Context, user *domain.User) error
	TouchLoginFunc    func(ctx context.Context, id uint) error
	TouchActivityFunc func(ctx context.Context, id uint) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) TouchLogin(ctx context.Context, id uint) error {
	if m.TouchLoginFunc != nil {
		return m.TouchLoginFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) TouchActivity(ctx context.Context, id uint) error {
	if m.TouchActivityFunc != nil {
		return m.TouchActivityFunc(ctx, id)
	}
	return nil
}

// MockAnonymousSessionRepository implements domain.AnonymousSessionRepository.
type MockAnonymousSessionRepository struct {
	CreateFunc          func(ctx context.Context, session *domain.AnonymousSession) error
	FindByTokenFunc     func(ctx context.Context, token string) (*domain.AnonymousSession, error)
	FindBySessionIDFunc func(ctx context.Context, sessionID string) (*domain.AnonymousSession, error)
	TouchActivityFunc   func(ctx context.Context, id uint) error
	CountLinkedToFunc   func(ctx context.Context, userID uint) (int64, error)
}

func (m *MockAnonymousSessionRepository) Create(ctx context.Context, session *domain.AnonymousSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockAnonymousSessionRepository) FindByToken(ctx context.Context, token string) (*domain.AnonymousSession, error) {
	if m.FindByTokenFunc != nil {
		return m.FindByTokenFunc(ctx, token)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockAnonymousSessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.AnonymousSession, error) {
	if m.FindBySessionIDFunc != nil {
		return m.FindBySessionIDFunc(ctx, sessionID)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockAnonymousSessionRepository) TouchActivity(ctx context.Context, id uint) error {
	if m.TouchActivityFunc != nil {
		return m.TouchActivityFunc(ctx, id)
	}
	return nil
}

func (m *MockAnonymousSessionRepository) CountLinkedTo(ctx context.Context, userID uint) (int64, error) {
	if m.CountLinkedToFunc != nil {
		return m.CountLinkedToFunc(ctx, userID)
	}
	return 0, nil
}

// MockOtpCodeRepository implements domain.OtpCodeRepository.
type MockOtpCodeRepository struct {
	CreateFunc            func(ctx context.Context, code *domain.OtpCode) error
	FindMatchFunc         func(ctx context.Context, phone, code string, maxAttempts int) (*domain.OtpCode, error)
	CountActiveFunc       func(ctx context.Context, phone string, maxAttempts int) (int64, error)
	HasExhaustedFunc      func(ctx context.Context, phone string, maxAttempts int) (bool, error)
	IncrementAttemptsFunc func(ctx context.Context, phone string) error
	DeleteByPhoneFunc     func(ctx context.Context, phone string) error
	DeleteStaleFunc       func(ctx context.Context, phone string, maxAttempts int) error
	DeleteExactFunc       func(ctx context.Context, phone, code string) error
}

func (m *MockOtpCodeRepository) Create(ctx context.Context, code *domain.OtpCode) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, code)
	}
	return nil
}

func (m *MockOtpCodeRepository) FindMatch(ctx context.Context, phone, code string, maxAttempts int) (*domain.OtpCode, error) {
	if m.FindMatchFunc != nil {
		return m.FindMatchFunc(ctx, phone, code, maxAttempts)
	}
	return nil, domain.ErrOTPNotFound
}

func (m *MockOtpCodeRepository) CountActive(ctx context.Context, phone string, maxAttempts int) (int64, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc(ctx, phone, maxAttempts)
	}
	return 0, nil
}

func (m *MockOtpCodeRepository) HasExhausted(ctx context.Context, phone string, maxAttempts int) (bool, error) {
	if m.HasExhaustedFunc != nil {
		return m.HasExhaustedFunc(ctx, phone, maxAttempts)
	}
	return false, nil
}

func (m *MockOtpCodeRepository) IncrementAttempts(ctx context.Context, phone string) error {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, phone)
	}
	return nil
}

func (m *MockOtpCodeRepository) DeleteByPhone(ctx context.Context, phone string) error {
	if m.DeleteByPhoneFunc != nil {
		return m.DeleteByPhoneFunc(ctx, phone)
	}
	return nil
}

func (m *MockOtpCodeRepository) DeleteStale(ctx context.Context, phone string, maxAttempts int) error {
	if m.DeleteStaleFunc != nil {
		return m.DeleteStaleFunc(ctx, phone, maxAttempts)
	}
	return nil
}

func (m *MockOtpCodeRepository) DeleteExact(ctx context.Context, phone, code string) error {
	if m.DeleteExactFunc != nil {
		return m.DeleteExactFunc(ctx, phone, code)
	}
	return nil
}

// MockOwnedRecordsRepository implements domain.OwnedRecordsRepository.
type MockOwnedRecordsRepository struct {
	MergeFunc         func(ctx context.Context, userID, anonymousID uint) error
	UserCountsFunc    func(ctx context.Context, userID uint) (*domain.UserCounts, error)
	SessionCountsFunc func(ctx context.Context, anonymousID uint) (*domain.SessionCounts, error)
}

func (m *MockOwnedRecordsRepository) Merge(ctx context.Context, userID, anonymousID uint) error {
	if m.MergeFunc != nil {
		return m.MergeFunc(ctx, userID, anonymousID)
	}
	return nil
}

func (m *MockOwnedRecordsRepository) UserCounts(ctx context.Context, userID uint) (*domain.UserCounts, error) {
	if m.UserCountsFunc != nil {
		return m.UserCountsFunc(ctx, userID)
	}
	return &domain.UserCounts{}, nil
}

func (m *MockOwnedRecordsRepository) SessionCounts(ctx context.Context, anonymousID uint) (*domain.SessionCounts, error) {
	if m.SessionCountsFunc != nil {
		return m.SessionCountsFunc(ctx, anonymousID)
	}
	return &domain.SessionCounts{}, nil
}
