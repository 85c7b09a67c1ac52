package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"sevapay.backend/internal/domain/entities"
)

// TransactionRepository defines bill-payment transaction data operations
type TransactionRepository interface {
	Create(ctx context.Context, txn *entities.BbpsTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.BbpsTransaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, vendorTxnID, vendorRaw string) error
	List(ctx context.Context, filter entities.TransactionListFilter) ([]*entities.BbpsTransaction, int64, error)
	// ListStalePending returns pending transactions older than the cutoff,
	// for the status re-poll job.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.BbpsTransaction, error)
}
