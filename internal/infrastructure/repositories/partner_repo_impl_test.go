package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
)

func makePartner(t *testing.T, partnerType entities.PartnerType, seq int) *entities.Partner {
	t.Helper()
	return &entities.Partner{
		PartnerID:    fmt.Sprintf("TST%06d", seq),
		PartnerType:  partnerType,
		Name:         fmt.Sprintf("Partner %d", seq),
		Email:        fmt.Sprintf("partner%d@example.com", seq),
		Phone:        fmt.Sprintf("98765%05d", seq),
		Status:       entities.PartnerStatusPendingVerification,
		PasswordHash: "hash",
	}
}

func TestPartnerRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepository(db)
	ctx := context.Background()

	p := makePartner(t, entities.PartnerTypeRetailer, 1)
	require.NoError(t, repo.Create(ctx, p))
	require.NotEqual(t, p.ID.String(), "00000000-0000-0000-0000-000000000000")

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "TST000001", got.PartnerID)
	assert.Equal(t, entities.PartnerStatusPendingVerification, got.Status)

	byKey, err := repo.GetByPartnerID(ctx, "TST000001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byKey.ID)

	byEmail, err := repo.GetByEmail(ctx, "partner1@example.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byEmail.ID)
}

func TestPartnerRepo_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepository(db)
	ctx := context.Background()

	first := makePartner(t, entities.PartnerTypeRetailer, 1)
	require.NoError(t, repo.Create(ctx, first))

	dup := makePartner(t, entities.PartnerTypeRetailer, 2)
	dup.Email = first.Email
	assert.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrAlreadyExists)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: partners.email")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestPartnerRepo_ListSearchAndFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		p := makePartner(t, entities.PartnerTypeRetailer, i)
		require.NoError(t, repo.Create(ctx, p))
	}
	d := makePartner(t, entities.PartnerTypeDistributor, 10)
	d.Name = "Sharma Distribution"
	require.NoError(t, repo.Create(ctx, d))

	// Tier filter.
	retailers, total, err := repo.List(ctx, entities.PartnerListFilter{PartnerType: entities.PartnerTypeRetailer, Limit: 10, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, retailers, 3)

	// Case-insensitive name search.
	found, total, err := repo.List(ctx, entities.PartnerListFilter{Search: "sharma", Limit: 10, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, "Sharma Distribution", found[0].Name)

	// Pagination: page 2 of size 2 over 3 retailers.
	page2, total, err := repo.List(ctx, entities.PartnerListFilter{PartnerType: entities.PartnerTypeRetailer, Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page2, 1)
}

func TestPartnerRepo_UpdateStatusStampsVerifiedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepository(db)
	ctx := context.Background()

	p := makePartner(t, entities.PartnerTypeRetailer, 1)
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.UpdateStatus(ctx, p.ID, entities.PartnerStatusActive, "docs ok"))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PartnerStatusActive, got.Status)
	assert.Equal(t, "docs ok", got.VerificationRemarks.String)
	assert.True(t, got.VerifiedAt.Valid)
}

func TestPartnerRepo_PendingVerificationAcrossTiers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepository(db)
	ctx := context.Background()

	r := makePartner(t, entities.PartnerTypeRetailer, 1)
	d := makePartner(t, entities.PartnerTypeDistributor, 2)
	m := makePartner(t, entities.PartnerTypeMasterDistributor, 3)
	for _, p := range []*entities.Partner{r, d, m} {
		require.NoError(t, repo.Create(ctx, p))
	}
	require.NoError(t, repo.UpdateStatus(ctx, m.ID, entities.PartnerStatusActive, ""))

	pending, err := repo.ListPendingVerification(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	tiers := []entities.PartnerType{pending[0].Tier, pending[1].Tier}
	assert.Contains(t, tiers, entities.PartnerTypeRetailer)
	assert.Contains(t, tiers, entities.PartnerTypeDistributor)
}

func TestPartnerRepo_NextSequenceCountsSoftDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepository(db)
	ctx := context.Background()

	seq, err := repo.NextSequence(ctx, entities.PartnerTypeRetailer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	p := makePartner(t, entities.PartnerTypeRetailer, 1)
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.SoftDelete(ctx, p.ID))

	// Soft-deleted rows still occupy their sequence slot.
	seq, err = repo.NextSequence(ctx, entities.PartnerTypeRetailer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestPartnerRepo_BulkSoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPartnerRepository(db)
	ctx := context.Background()

	a := makePartner(t, entities.PartnerTypeRetailer, 1)
	b := makePartner(t, entities.PartnerTypeRetailer, 2)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	count, err := repo.BulkSoftDelete(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
