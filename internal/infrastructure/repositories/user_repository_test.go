package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &domain.User{
		Phone:         "+79161234567",
		FirstName:     "Ivan",
		Role:          domain.RoleCustomer,
		PhoneVerified: true,
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	byPhone, err := repo.FindByPhone(ctx, "+79161234567")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)
	assert.Equal(t, domain.RoleCustomer, byPhone.Role)
	assert.True(t, byPhone.PhoneVerified)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "+79161234567", byID.Phone)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByPhone(ctx, "+79160000000")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_SoftDeletedIsInvisible(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{Phone: "+79161234567", Role: domain.RoleCustomer}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, db.Delete(&DBUser{}, user.ID).Error)

	_, err := repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByPhone(ctx, "+79161234567")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UpdateWritesProfileFieldsOnly(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &domain.User{Phone: "+79161234567", Role: domain.RoleCustomer}
	require.NoError(t, repo.Create(ctx, user))

	user.FirstName = "Ivan"
	user.Email = "ivan@example.com"
	user.Role = domain.RoleAdmin // must not be persisted by Update
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivan", got.FirstName)
	assert.Equal(t, "ivan@example.com", got.Email)
	assert.Equal(t, domain.RoleCustomer, got.Role)
}

func TestUserRepository_TouchLogin(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &domain.User{Phone: "+79161234567", Role: domain.RoleCustomer}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.TouchLogin(ctx, user.ID))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	require.NotNil(t, got.LastActivityAt)
}
