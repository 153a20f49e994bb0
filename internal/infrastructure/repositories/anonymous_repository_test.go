package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

func TestAnonymousRepository_CreateAndFind(t *testing.T) {
	repo := NewAnonymousSessionRepository(newTestDB(t))
	ctx := context.Background()

	session := &domain.AnonymousSession{Token: "tok-1", SessionID: "sess-1"}
	require.NoError(t, repo.Create(ctx, session))
	require.NotZero(t, session.ID)
	require.False(t, session.LastActivityAt.IsZero())

	byToken, err := repo.FindByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, byToken.ID)

	bySessionID, err := repo.FindBySessionID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, bySessionID.ID)
}

func TestAnonymousRepository_TokenAndSessionIDAreSeparateNamespaces(t *testing.T) {
	repo := NewAnonymousSessionRepository(newTestDB(t))
	ctx := context.Background()

	session := &domain.AnonymousSession{Token: "tok-1", SessionID: "sess-1"}
	require.NoError(t, repo.Create(ctx, session))

	_, err := repo.FindByToken(ctx, "sess-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = repo.FindBySessionID(ctx, "tok-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAnonymousRepository_TouchActivity(t *testing.T) {
	repo := NewAnonymousSessionRepository(newTestDB(t))
	ctx := context.Background()

	session := &domain.AnonymousSession{
		Token:          "tok-1",
		SessionID:      "sess-1",
		LastActivityAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Create(ctx, session))
	require.NoError(t, repo.TouchActivity(ctx, session.ID))

	got, err := repo.FindByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got.LastActivityAt, time.Minute)
}

func TestAnonymousRepository_CountLinkedTo(t *testing.T) {
	repo := NewAnonymousSessionRepository(newTestDB(t))
	ctx := context.Background()

	userID := uint(7)
	require.NoError(t, repo.Create(ctx, &domain.AnonymousSession{Token: "a", SessionID: "sa", LinkedUserID: &userID}))
	require.NoError(t, repo.Create(ctx, &domain.AnonymousSession{Token: "b", SessionID: "sb", LinkedUserID: &userID}))
	require.NoError(t, repo.Create(ctx, &domain.AnonymousSession{Token: "c", SessionID: "sc"}))

	count, err := repo.CountLinkedTo(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
