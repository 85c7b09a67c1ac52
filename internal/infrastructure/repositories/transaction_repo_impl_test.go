package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevapay.backend/internal/domain/entities"
)

func TestTransactionRepo_CreateAndStatusRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	txn := &entities.BbpsTransaction{
		PartnerID:    uuid.New(),
		BillerID:     "MSEDCL00000NAT01",
		BillerName:   "Maharashtra State Electricity",
		CategoryName: "Electricity",
		Params:       map[string]string{"Consumer Number": "170012345678"},
		AmountPaise:  100_00,
		ChargePaise:  5_00,
		Status:       entities.TransactionStatusPending,
	}
	require.NoError(t, repo.Create(ctx, txn))

	got, err := repo.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "170012345678", got.Params["Consumer Number"])
	assert.Equal(t, entities.TransactionStatusPending, got.Status)

	require.NoError(t, repo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusSuccess, "VND123", `{"status":"SUCCESS"}`))

	got, err = repo.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusSuccess, got.Status)
	assert.Equal(t, "VND123", got.VendorTxnID.String)
}

func TestTransactionRepo_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	partnerA := uuid.New()
	partnerB := uuid.New()
	for i, p := range []uuid.UUID{partnerA, partnerA, partnerB} {
		txn := &entities.BbpsTransaction{
			PartnerID:   p,
			BillerID:    "B1",
			BillerName:  "Biller",
			AmountPaise: int64(i+1) * 10_00,
			Status:      entities.TransactionStatusSuccess,
		}
		require.NoError(t, repo.Create(ctx, txn))
	}

	txns, total, err := repo.List(ctx, entities.TransactionListFilter{PartnerID: partnerA, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, txns, 2)
}

func TestTransactionRepo_ListStalePending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	stale := &entities.BbpsTransaction{PartnerID: uuid.New(), BillerID: "B1", Status: entities.TransactionStatusPending}
	require.NoError(t, repo.Create(ctx, stale))
	done := &entities.BbpsTransaction{PartnerID: uuid.New(), BillerID: "B2", Status: entities.TransactionStatusSuccess}
	require.NoError(t, repo.Create(ctx, done))

	// Only pending rows older than the cutoff qualify.
	got, err := repo.ListStalePending(ctx, time.Now().Add(time.Second), 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stale.ID, got[0].ID)

	got, err = repo.ListStalePending(ctx, time.Now().Add(-time.Hour), 50)
	require.NoError(t, err)
	assert.Empty(t, got)
}
