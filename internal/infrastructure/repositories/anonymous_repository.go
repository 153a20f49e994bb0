package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// AnonymousSessionRepositoryImpl implements domain.AnonymousSessionRepository
// using GORM.
type AnonymousSessionRepositoryImpl struct {
	db *gorm.DB
}

// NewAnonymousSessionRepository creates a new anonymous session repository.
func NewAnonymousSessionRepository(db *gorm.DB) domain.AnonymousSessionRepository {
	return &AnonymousSessionRepositoryImpl{db: db}
}

// Create implements domain.AnonymousSessionRepository.
func (r *AnonymousSessionRepositoryImpl) Create(ctx context.Context, session *domain.AnonymousSession) error {
	dbSession := sessionToDB(session)
	if dbSession.LastActivityAt.IsZero() {
		dbSession.LastActivityAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(dbSession).Error; err != nil {
		return err
	}
	session.ID = dbSession.ID
	session.CreatedAt = dbSession.CreatedAt
	session.LastActivityAt = dbSession.LastActivityAt
	return nil
}

// FindByToken implements domain.AnonymousSessionRepository.
func (r *AnonymousSessionRepositoryImpl) FindByToken(ctx context.Context, token string) (*domain.AnonymousSession, error) {
	return r.findOne(ctx, "token = ?", token)
}

// FindBySessionID implements domain.AnonymousSessionRepository.
func (r *AnonymousSessionRepositoryImpl) FindBySessionID(ctx context.Context, sessionID string) (*domain.AnonymousSession, error) {
	return r.findOne(ctx, "session_id = ?", sessionID)
}

// TouchActivity implements domain.AnonymousSessionRepository.
func (r *AnonymousSessionRepositoryImpl) TouchActivity(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&DBAnonymousSession{}).Where("id = ?", id).
		Update("last_activity_at", time.Now()).Error
}

// CountLinkedTo implements domain.AnonymousSessionRepository.
func (r *AnonymousSessionRepositoryImpl) CountLinkedTo(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBAnonymousSession{}).
		Where("linked_user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *AnonymousSessionRepositoryImpl) findOne(ctx context.Context, query string, arg interface{}) (*domain.AnonymousSession, error) {
	var dbSession DBAnonymousSession
	err := r.db.WithContext(ctx).Where(query, arg).First(&dbSession).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return sessionToDomain(&dbSession), nil
}

func sessionToDB(session *domain.AnonymousSession) *DBAnonymousSession {
	return &DBAnonymousSession{
		ID:             session.ID,
		Token:          session.Token,
		SessionID:      session.SessionID,
		IPAddress:      session.IPAddress,
		UserAgent:      session.UserAgent,
		LinkedUserID:   session.LinkedUserID,
		LastActivityAt: session.LastActivityAt,
	}
}

func sessionToDomain(dbSession *DBAnonymousSession) *domain.AnonymousSession {
	return &domain.AnonymousSession{
		ID:             dbSession.ID,
		Token:          dbSession.Token,
		SessionID:      dbSession.SessionID,
		IPAddress:      dbSession.IPAddress,
		UserAgent:      dbSession.UserAgent,
		LinkedUserID:   dbSession.LinkedUserID,
		CreatedAt:      dbSession.CreatedAt,
		LastActivityAt: dbSession.LastActivityAt,
	}
}
