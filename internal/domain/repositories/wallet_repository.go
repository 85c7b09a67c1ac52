package repositories

import (
	"context"

	"github.com/google/uuid"
	"sevapay.backend/internal/domain/entities"
)

// WalletRepository defines wallet data operations. Credit and Debit must be
// atomic with their ledger entry; Debit fails with ErrInsufficientBalance
// when the wallet would overdraw.
type WalletRepository interface {
	CreateForPartner(ctx context.Context, partnerID uuid.UUID) (*entities.Wallet, error)
	GetByPartnerID(ctx context.Context, partnerID uuid.UUID) (*entities.Wallet, error)
	Credit(ctx context.Context, partnerID uuid.UUID, amountPaise int64, reference, remarks, adminID string) (*entities.Wallet, error)
	Debit(ctx context.Context, partnerID uuid.UUID, amountPaise int64, reference, remarks, adminID string) (*entities.Wallet, error)
	ListLedger(ctx context.Context, partnerID uuid.UUID, limit int) ([]*entities.LedgerEntry, error)
}
