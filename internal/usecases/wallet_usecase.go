package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/pkg/logger"
	"sevapay.backend/pkg/utils"
)

// WalletUsecase handles admin wallet adjustments and balance lookups
type WalletUsecase struct {
	walletRepo  repositories.WalletRepository
	partnerRepo repositories.PartnerRepository
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(walletRepo repositories.WalletRepository, partnerRepo repositories.PartnerRepository) *WalletUsecase {
	return &WalletUsecase{walletRepo: walletRepo, partnerRepo: partnerRepo}
}

// Balance returns a partner's current balance
func (u *WalletUsecase) Balance(ctx context.Context, partnerID uuid.UUID) (*entities.WalletBalanceResponse, error) {
	wallet, err := u.walletRepo.GetByPartnerID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	return &entities.WalletBalanceResponse{
		PartnerID:    partnerID,
		BalancePaise: wallet.BalancePaise,
		Balance:      utils.FormatRupees(wallet.BalancePaise),
	}, nil
}

// Push credits a partner's wallet on behalf of an admin
func (u *WalletUsecase) Push(ctx context.Context, adminID uuid.UUID, input *entities.WalletAdjustInput) (*entities.Wallet, error) {
	if err := u.validateAdjustment(ctx, input); err != nil {
		return nil, err
	}
	wallet, err := u.walletRepo.Credit(ctx, input.PartnerID, input.AmountPaise, adjustmentReference("PUSH"), input.Remarks, adminID.String())
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "wallet push",
		zap.String("partnerId", input.PartnerID.String()),
		zap.Int64("amountPaise", input.AmountPaise),
		zap.String("adminId", adminID.String()),
	)
	return wallet, nil
}

// Pull debits a partner's wallet on behalf of an admin. Fails with the
// standard insufficient-balance message when the balance cannot cover it.
func (u *WalletUsecase) Pull(ctx context.Context, adminID uuid.UUID, input *entities.WalletAdjustInput) (*entities.Wallet, error) {
	if err := u.validateAdjustment(ctx, input); err != nil {
		return nil, err
	}
	wallet, err := u.walletRepo.Debit(ctx, input.PartnerID, input.AmountPaise, adjustmentReference("PULL"), input.Remarks, adminID.String())
	if err != nil {
		if err == domainerrors.ErrInsufficientBalance {
			balance := int64(0)
			if w, berr := u.walletRepo.GetByPartnerID(ctx, input.PartnerID); berr == nil {
				balance = w.BalancePaise
			}
			return nil, insufficientBalanceError(input.AmountPaise, balance)
		}
		return nil, err
	}
	logger.Info(ctx, "wallet pull",
		zap.String("partnerId", input.PartnerID.String()),
		zap.Int64("amountPaise", input.AmountPaise),
		zap.String("adminId", adminID.String()),
	)
	return wallet, nil
}

// Ledger returns the most recent wallet movements for a partner
func (u *WalletUsecase) Ledger(ctx context.Context, partnerID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return u.walletRepo.ListLedger(ctx, partnerID, limit)
}

func (u *WalletUsecase) validateAdjustment(ctx context.Context, input *entities.WalletAdjustInput) error {
	if input.AmountPaise <= 0 {
		return domainerrors.BadRequest("Amount must be positive")
	}
	partner, err := u.partnerRepo.GetByID(ctx, input.PartnerID)
	if err != nil {
		return err
	}
	if partner.Status != entities.PartnerStatusActive {
		return domainerrors.NewAppError(400, "Partner is not active", domainerrors.ErrPartnerNotActive)
	}
	return nil
}

func adjustmentReference(kind string) string {
	return fmt.Sprintf("ADMIN:%s:%s", kind, uuid.New().String())
}
