package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/internal/infrastructure/models"
)

// transactionRepo implements repositories.TransactionRepository
type transactionRepo struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) repositories.TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, txn *entities.BbpsTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt

	m, err := r.toModel(txn)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *transactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.BbpsTransaction, error) {
	var m models.BbpsTransaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, vendorTxnID, vendorRaw string) error {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if vendorTxnID != "" {
		updates["vendor_txn_id"] = vendorTxnID
	}
	if vendorRaw != "" {
		updates["vendor_raw"] = vendorRaw
	}

	result := r.db.WithContext(ctx).Model(&models.BbpsTransaction{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *transactionRepo) List(ctx context.Context, filter entities.TransactionListFilter) ([]*entities.BbpsTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.BbpsTransaction{})

	if filter.PartnerID != uuid.Nil {
		q = q.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at <= ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("created_at DESC")
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		q = q.Limit(filter.Limit).Offset(offset)
	}

	var rows []models.BbpsTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	txns := make([]*entities.BbpsTransaction, 0, len(rows))
	for i := range rows {
		e, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, e)
	}
	return txns, total, nil
}

func (r *transactionRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.BbpsTransaction, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", string(entities.TransactionStatusPending)).
		Where("updated_at < ?", olderThan).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.BbpsTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	txns := make([]*entities.BbpsTransaction, 0, len(rows))
	for i := range rows {
		e, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		txns = append(txns, e)
	}
	return txns, nil
}

func (r *transactionRepo) toModel(e *entities.BbpsTransaction) (*models.BbpsTransaction, error) {
	params := e.Params
	if params == nil {
		params = map[string]string{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	return &models.BbpsTransaction{
		ID:           e.ID,
		PartnerID:    e.PartnerID,
		BillerID:     e.BillerID,
		BillerName:   e.BillerName,
		CategoryName: e.CategoryName,
		Params:       string(paramsJSON),
		AmountPaise:  e.AmountPaise,
		ChargePaise:  e.ChargePaise,
		ReqID:        e.ReqID.String,
		VendorTxnID:  e.VendorTxnID.String,
		Status:       string(e.Status),
		VendorRaw:    e.VendorRaw.String,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}, nil
}

func (r *transactionRepo) toEntity(m *models.BbpsTransaction) (*entities.BbpsTransaction, error) {
	var params map[string]string
	if m.Params != "" {
		if err := json.Unmarshal([]byte(m.Params), &params); err != nil {
			return nil, err
		}
	}

	return &entities.BbpsTransaction{
		ID:           m.ID,
		PartnerID:    m.PartnerID,
		BillerID:     m.BillerID,
		BillerName:   m.BillerName,
		CategoryName: m.CategoryName,
		Params:       params,
		AmountPaise:  m.AmountPaise,
		ChargePaise:  m.ChargePaise,
		ReqID:        nullStringFrom(m.ReqID),
		VendorTxnID:  nullStringFrom(m.VendorTxnID),
		Status:       entities.TransactionStatus(m.Status),
		VendorRaw:    nullStringFrom(m.VendorRaw),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
