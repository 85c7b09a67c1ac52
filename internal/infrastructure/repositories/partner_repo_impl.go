package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/internal/infrastructure/models"
)

// partnerSortColumns whitelists sortable columns for the directory views.
var partnerSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"partnerId":  "partner_id",
	"status":     "status",
	"createdAt":  "created_at",
	"commission": "commission_rate",
}

// partnerRepo implements repositories.PartnerRepository
type partnerRepo struct {
	db *gorm.DB
}

// NewPartnerRepository creates a new partner repository
func NewPartnerRepository(db *gorm.DB) repositories.PartnerRepository {
	return &partnerRepo{db: db}
}

// Create creates a new partner
func (r *partnerRepo) Create(ctx context.Context, partner *entities.Partner) error {
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	partner.CreatedAt = time.Now()
	partner.UpdatedAt = partner.CreatedAt

	m := r.toModel(partner)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a partner by storage key
func (r *partnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Partner, error) {
	var m models.Partner
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByPartnerID gets a partner by business key
func (r *partnerRepo) GetByPartnerID(ctx context.Context, partnerID string) (*entities.Partner, error) {
	var m models.Partner
	if err := r.db.WithContext(ctx).Where("partner_id = ?", partnerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByEmail gets a partner by email
func (r *partnerRepo) GetByEmail(ctx context.Context, email string) (*entities.Partner, error) {
	var m models.Partner
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Update updates a partner
func (r *partnerRepo) Update(ctx context.Context, partner *entities.Partner) error {
	partner.UpdatedAt = time.Now()
	m := r.toModel(partner)

	result := r.db.WithContext(ctx).Model(&models.Partner{}).Where("id = ?", partner.ID).Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus updates partner status and verification remarks. Moving to
// active stamps verified_at.
func (r *partnerRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PartnerStatus, remarks string) error {
	updates := map[string]interface{}{
		"status":               string(status),
		"verification_remarks": remarks,
		"updated_at":           time.Now(),
	}
	if status == entities.PartnerStatusActive {
		updates["verified_at"] = time.Now()
	}

	result := r.db.WithContext(ctx).Model(&models.Partner{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces a partner's password hash
func (r *partnerRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&models.Partner{}).Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": passwordHash, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a partner
func (r *partnerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Partner{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// BulkSoftDelete soft deletes partners by id list and reports how many went
func (r *partnerRepo) BulkSoftDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Delete(&models.Partner{}, "id IN ?", ids)
	return result.RowsAffected, result.Error
}

// List returns a filtered, sorted, paginated page plus the total count
func (r *partnerRepo) List(ctx context.Context, filter entities.PartnerListFilter) ([]*entities.Partner, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Partner{})

	if filter.PartnerType != "" {
		q = q.Where("partner_type = ?", string(filter.PartnerType))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"lower(name) LIKE ? OR lower(email) LIKE ? OR lower(partner_id) LIKE ? OR phone LIKE ?",
			like, like, like, "%"+s+"%",
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := partnerSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	q = q.Order(column + " " + direction)

	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		q = q.Limit(filter.Limit).Offset(offset)
	}

	var rows []models.Partner
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	partners := make([]*entities.Partner, 0, len(rows))
	for i := range rows {
		partners = append(partners, r.toEntity(&rows[i]))
	}
	return partners, total, nil
}

// ListPendingVerification returns all tiers awaiting verification
func (r *partnerRepo) ListPendingVerification(ctx context.Context) ([]*entities.PendingPartner, error) {
	var rows []models.Partner
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.PartnerStatusPendingVerification)).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	pending := make([]*entities.PendingPartner, 0, len(rows))
	for i := range rows {
		e := r.toEntity(&rows[i])
		pending = append(pending, &entities.PendingPartner{Partner: *e, Tier: e.PartnerType})
	}
	return pending, nil
}

// NextSequence returns the next per-tier sequence for partner id generation.
// Count-based: partner ids are generated once at create and never reused
// within a tier because rows are soft deleted.
func (r *partnerRepo) NextSequence(ctx context.Context, partnerType entities.PartnerType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Partner{}).Unscoped().
		Where("partner_type = ?", string(partnerType)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

func (r *partnerRepo) toModel(e *entities.Partner) *models.Partner {
	m := &models.Partner{
		ID:                   e.ID,
		PartnerID:            e.PartnerID,
		PartnerType:          string(e.PartnerType),
		Name:                 e.Name,
		Email:                e.Email,
		Phone:                e.Phone,
		Address:              e.Address.String,
		Status:               string(e.Status),
		DistributorID:        e.DistributorID.String,
		MasterDistributorID:  e.MasterDistributorID.String,
		CommissionRate:       e.CommissionRate,
		BankAccountNumber:    e.BankAccountNumber.String,
		BankIFSC:             e.BankIFSC.String,
		BankName:             e.BankName.String,
		PanDocumentURL:       e.PanDocumentURL.String,
		AadhaarDocumentURL:   e.AadhaarDocumentURL.String,
		BankProofDocumentURL: e.BankProofDocumentURL.String,
		PasswordHash:         e.PasswordHash,
		TpinHash:             e.TpinHash.String,
		VerificationRemarks:  e.VerificationRemarks.String,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
	if e.VerifiedAt.Valid {
		t := e.VerifiedAt.Time
		m.VerifiedAt = &t
	}
	return m
}

func (r *partnerRepo) toEntity(m *models.Partner) *entities.Partner {
	e := &entities.Partner{
		ID:             m.ID,
		PartnerID:      m.PartnerID,
		PartnerType:    entities.PartnerType(m.PartnerType),
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		Status:         entities.PartnerStatus(m.Status),
		CommissionRate: m.CommissionRate,
		PasswordHash:   m.PasswordHash,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	e.Address = nullStringFrom(m.Address)
	e.DistributorID = nullStringFrom(m.DistributorID)
	e.MasterDistributorID = nullStringFrom(m.MasterDistributorID)
	e.BankAccountNumber = nullStringFrom(m.BankAccountNumber)
	e.BankIFSC = nullStringFrom(m.BankIFSC)
	e.BankName = nullStringFrom(m.BankName)
	e.PanDocumentURL = nullStringFrom(m.PanDocumentURL)
	e.AadhaarDocumentURL = nullStringFrom(m.AadhaarDocumentURL)
	e.BankProofDocumentURL = nullStringFrom(m.BankProofDocumentURL)
	e.TpinHash = nullStringFrom(m.TpinHash)
	e.VerificationRemarks = nullStringFrom(m.VerificationRemarks)
	if m.VerifiedAt != nil {
		e.VerifiedAt = null.TimeFrom(*m.VerifiedAt)
	}
	return e
}

func nullStringFrom(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

// isUniqueViolation matches both postgres and sqlite unique-constraint errors
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
