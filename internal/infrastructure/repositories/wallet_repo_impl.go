package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/internal/infrastructure/models"
)

// walletRepo implements repositories.WalletRepository
type walletRepo struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) repositories.WalletRepository {
	return &walletRepo{db: db}
}

func (r *walletRepo) CreateForPartner(ctx context.Context, partnerID uuid.UUID) (*entities.Wallet, error) {
	m := &models.Wallet{
		ID:           uuid.New(),
		PartnerID:    partnerID,
		BalancePaise: 0,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domainerrors.ErrAlreadyExists
		}
		return nil, err
	}
	return r.toEntity(m), nil
}

func (r *walletRepo) GetByPartnerID(ctx context.Context, partnerID uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	if err := r.db.WithContext(ctx).Where("partner_id = ?", partnerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Credit adds funds and writes the ledger entry in one transaction
func (r *walletRepo) Credit(ctx context.Context, partnerID uuid.UUID, amountPaise int64, reference, remarks, adminID string) (*entities.Wallet, error) {
	return r.adjust(ctx, partnerID, amountPaise, entities.LedgerEntryCredit, reference, remarks, adminID)
}

// Debit removes funds; the guarded UPDATE refuses an overdraw without
// needing a row lock, which keeps it portable across postgres and sqlite.
func (r *walletRepo) Debit(ctx context.Context, partnerID uuid.UUID, amountPaise int64, reference, remarks, adminID string) (*entities.Wallet, error) {
	return r.adjust(ctx, partnerID, -amountPaise, entities.LedgerEntryDebit, reference, remarks, adminID)
}

func (r *walletRepo) adjust(ctx context.Context, partnerID uuid.UUID, deltaPaise int64, entryType entities.LedgerEntryType, reference, remarks, adminID string) (*entities.Wallet, error) {
	if deltaPaise == 0 {
		return nil, domainerrors.ErrInvalidInput
	}

	var updated models.Wallet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Wallet{}).Where("partner_id = ?", partnerID)
		if deltaPaise < 0 {
			q = q.Where("balance_paise >= ?", -deltaPaise)
		}
		result := q.Updates(map[string]interface{}{
			"balance_paise": gorm.Expr("balance_paise + ?", deltaPaise),
			"updated_at":    time.Now(),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Either the wallet is missing or the balance guard refused.
			var exists int64
			if err := tx.Model(&models.Wallet{}).Where("partner_id = ?", partnerID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return domainerrors.ErrNotFound
			}
			return domainerrors.ErrInsufficientBalance
		}

		if err := tx.Where("partner_id = ?", partnerID).First(&updated).Error; err != nil {
			return err
		}

		amount := deltaPaise
		if amount < 0 {
			amount = -amount
		}
		entry := &models.LedgerEntry{
			ID:           uuid.New(),
			WalletID:     updated.ID,
			Type:         string(entryType),
			AmountPaise:  amount,
			BalanceAfter: updated.BalancePaise,
			Reference:    reference,
			Remarks:      remarks,
			AdminID:      adminID,
			CreatedAt:    time.Now(),
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return r.toEntity(&updated), nil
}

func (r *walletRepo) ListLedger(ctx context.Context, partnerID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	wallet, err := r.GetByPartnerID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Where("wallet_id = ?", wallet.ID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.LedgerEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*entities.LedgerEntry, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		entry := &entities.LedgerEntry{
			ID:           m.ID,
			WalletID:     m.WalletID,
			Type:         entities.LedgerEntryType(m.Type),
			AmountPaise:  m.AmountPaise,
			BalanceAfter: m.BalanceAfter,
			Reference:    m.Reference,
			Remarks:      nullStringFrom(m.Remarks),
			AdminID:      nullStringFrom(m.AdminID),
			CreatedAt:    m.CreatedAt,
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *walletRepo) toEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:           m.ID,
		PartnerID:    m.PartnerID,
		BalancePaise: m.BalancePaise,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
