package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
)

func TestAdminUserRepo_DepartmentsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminUserRepository(db)
	ctx := context.Background()

	admin := &entities.AdminUser{
		Email:        "ops@example.com",
		Name:         "Ops Admin",
		PasswordHash: "hash",
		AdminType:    entities.AdminTypeSub,
		Departments:  []string{entities.DepartmentWallet, entities.DepartmentReports},
		IsActive:     true,
	}
	require.NoError(t, repo.Create(ctx, admin))

	got, err := repo.GetByEmail(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{entities.DepartmentWallet, entities.DepartmentReports}, got.Departments)
	assert.True(t, got.CanAccess(entities.DepartmentWallet))
	assert.False(t, got.CanAccess(entities.DepartmentPartners))
}

func TestAdminUserRepo_UpdatePersistsDeactivation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminUserRepository(db)
	ctx := context.Background()

	admin := &entities.AdminUser{
		Email:        "sub@example.com",
		Name:         "Sub Admin",
		PasswordHash: "hash",
		AdminType:    entities.AdminTypeSub,
		Departments:  []string{entities.DepartmentAll},
		IsActive:     true,
	}
	require.NoError(t, repo.Create(ctx, admin))

	admin.IsActive = false
	require.NoError(t, repo.Update(ctx, admin))

	got, err := repo.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestAdminUserRepo_ListSubAdminsExcludesSuper(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminUserRepository(db)
	ctx := context.Background()

	super := &entities.AdminUser{
		Email: "root@example.com", Name: "Root", PasswordHash: "hash",
		AdminType: entities.AdminTypeSuper, Departments: []string{entities.DepartmentAll}, IsActive: true,
	}
	sub := &entities.AdminUser{
		Email: "sub@example.com", Name: "Sub", PasswordHash: "hash",
		AdminType: entities.AdminTypeSub, Departments: []string{entities.DepartmentPos}, IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, super))
	require.NoError(t, repo.Create(ctx, sub))

	subs, err := repo.ListSubAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "sub@example.com", subs[0].Email)
}

func TestAdminUserRepo_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminUserRepository(db)
	ctx := context.Background()

	admin := &entities.AdminUser{
		Email: "gone@example.com", Name: "Gone", PasswordHash: "hash",
		AdminType: entities.AdminTypeSub, Departments: []string{entities.DepartmentPos}, IsActive: true,
	}
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.SoftDelete(ctx, admin.ID))

	_, err := repo.GetByEmail(ctx, "gone@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
