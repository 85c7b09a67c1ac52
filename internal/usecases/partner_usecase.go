package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/pkg/crypto"
	"sevapay.backend/pkg/logger"
	"sevapay.backend/pkg/utils"
)

// PartnerUsecase handles partner onboarding and directory management
type PartnerUsecase struct {
	partnerRepo repositories.PartnerRepository
	walletRepo  repositories.WalletRepository
}

// NewPartnerUsecase creates a new partner usecase
func NewPartnerUsecase(partnerRepo repositories.PartnerRepository, walletRepo repositories.WalletRepository) *PartnerUsecase {
	return &PartnerUsecase{partnerRepo: partnerRepo, walletRepo: walletRepo}
}

// Create onboards a partner: validates the hierarchy, assigns the business
// key, hashes credentials and opens a zero-balance wallet. The partner
// starts in pending_verification.
func (u *PartnerUsecase) Create(ctx context.Context, input *entities.PartnerCreateInput) (*entities.Partner, error) {
	if err := u.validateHierarchy(ctx, input.PartnerType, input.DistributorID, input.MasterDistributorID); err != nil {
		return nil, err
	}

	if _, err := u.partnerRepo.GetByEmail(ctx, strings.ToLower(input.Email)); err == nil {
		return nil, domainerrors.Conflict("A partner with this email already exists")
	} else if err != domainerrors.ErrNotFound {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	businessID, err := u.nextPartnerID(ctx, input.PartnerType)
	if err != nil {
		return nil, err
	}

	partner := &entities.Partner{
		PartnerID:      businessID,
		PartnerType:    input.PartnerType,
		Name:           input.Name,
		Email:          strings.ToLower(input.Email),
		Phone:          input.Phone,
		Status:         entities.PartnerStatusPendingVerification,
		CommissionRate: input.CommissionRate,
		PasswordHash:   passwordHash,
	}
	setNullString(&partner.Address, input.Address)
	setNullString(&partner.DistributorID, input.DistributorID)
	setNullString(&partner.MasterDistributorID, input.MasterDistributorID)
	setNullString(&partner.BankAccountNumber, input.BankAccountNumber)
	setNullString(&partner.BankIFSC, strings.ToUpper(input.BankIFSC))
	setNullString(&partner.BankName, input.BankName)
	setNullString(&partner.PanDocumentURL, input.PanDocumentURL)
	setNullString(&partner.AadhaarDocumentURL, input.AadhaarDocumentURL)
	setNullString(&partner.BankProofDocumentURL, input.BankProofDocumentURL)

	if err := u.partnerRepo.Create(ctx, partner); err != nil {
		return nil, err
	}

	if _, err := u.walletRepo.CreateForPartner(ctx, partner.ID); err != nil {
		// A partner without a wallet is unusable; undo the create.
		if delErr := u.partnerRepo.SoftDelete(ctx, partner.ID); delErr != nil {
			logger.Error(ctx, "failed to roll back partner after wallet create failure",
				zap.String("partnerId", partner.PartnerID), zap.Error(delErr))
		}
		return nil, err
	}

	logger.Info(ctx, "partner created",
		zap.String("partnerId", partner.PartnerID),
		zap.String("partnerType", string(partner.PartnerType)),
	)
	return partner, nil
}

// GetByID fetches a partner by storage key
func (u *PartnerUsecase) GetByID(ctx context.Context, id uuid.UUID) (*entities.Partner, error) {
	return u.partnerRepo.GetByID(ctx, id)
}

// List returns a filtered, paginated partner page with pagination metadata
func (u *PartnerUsecase) List(ctx context.Context, filter entities.PartnerListFilter) ([]*entities.Partner, utils.PaginationMeta, error) {
	partners, total, err := u.partnerRepo.List(ctx, filter)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return partners, utils.CalculateMeta(total, filter.Page, filter.Limit), nil
}

// Update applies partial changes to a partner. Hierarchy changes are
// re-validated against the partner's tier.
func (u *PartnerUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.PartnerUpdateInput) (*entities.Partner, error) {
	partner, err := u.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DistributorID != "" || input.MasterDistributorID != "" {
		distID := valueOr(input.DistributorID, partner.DistributorID.String)
		mdID := valueOr(input.MasterDistributorID, partner.MasterDistributorID.String)
		if err := u.validateHierarchy(ctx, partner.PartnerType, distID, mdID); err != nil {
			return nil, err
		}
		setNullString(&partner.DistributorID, distID)
		setNullString(&partner.MasterDistributorID, mdID)
	}

	if input.Name != "" {
		partner.Name = input.Name
	}
	if input.Email != "" {
		partner.Email = strings.ToLower(input.Email)
	}
	if input.Phone != "" {
		partner.Phone = input.Phone
	}
	if input.Address != "" {
		partner.Address = null.StringFrom(input.Address)
	}
	if input.Status != "" {
		status := entities.PartnerStatus(input.Status)
		switch status {
		case entities.PartnerStatusActive, entities.PartnerStatusInactive, entities.PartnerStatusSuspended:
			partner.Status = status
		default:
			return nil, domainerrors.BadRequest("Invalid partner status")
		}
	}
	if input.CommissionRate != 0 {
		partner.CommissionRate = input.CommissionRate
	}
	if input.BankAccountNumber != "" {
		partner.BankAccountNumber = null.StringFrom(input.BankAccountNumber)
	}
	if input.BankIFSC != "" {
		partner.BankIFSC = null.StringFrom(strings.ToUpper(input.BankIFSC))
	}
	if input.BankName != "" {
		partner.BankName = null.StringFrom(input.BankName)
	}

	if err := u.partnerRepo.Update(ctx, partner); err != nil {
		return nil, err
	}
	return partner, nil
}

// Delete soft-deletes a single partner
func (u *PartnerUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	return u.partnerRepo.SoftDelete(ctx, id)
}

// BulkDelete soft-deletes a batch of partners and returns the affected count
func (u *PartnerUsecase) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, domainerrors.BadRequest("No partner IDs supplied")
	}
	return u.partnerRepo.BulkSoftDelete(ctx, ids)
}

// SetTpin sets or replaces a partner's transaction PIN
func (u *PartnerUsecase) SetTpin(ctx context.Context, id uuid.UUID, tpin string) error {
	if len(tpin) < 4 || len(tpin) > 6 || !numericParamPattern.MatchString(tpin) {
		return domainerrors.BadRequest("T-PIN must be 4 to 6 digits")
	}
	partner, err := u.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	hash, err := crypto.HashTpin(tpin)
	if err != nil {
		return domainerrors.InternalError(err)
	}
	partner.TpinHash = null.StringFrom(hash)
	return u.partnerRepo.Update(ctx, partner)
}

// ExportCSV renders the filtered directory as CSV
func (u *PartnerUsecase) ExportCSV(ctx context.Context, filter entities.PartnerListFilter) (string, error) {
	filter.Page = 0
	filter.Limit = 0
	partners, _, err := u.partnerRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}
	header := []string{"Partner ID", "Type", "Name", "Email", "Phone", "Status", "Distributor", "Master Distributor", "Created At"}
	rows := make([][]string, 0, len(partners))
	for _, p := range partners {
		rows = append(rows, []string{
			p.PartnerID,
			string(p.PartnerType),
			p.Name,
			p.Email,
			p.Phone,
			string(p.Status),
			p.DistributorID.String,
			p.MasterDistributorID.String,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return utils.ExportCSV(header, rows), nil
}

// ExportJSON renders the filtered directory as pretty-printed JSON
func (u *PartnerUsecase) ExportJSON(ctx context.Context, filter entities.PartnerListFilter) (string, error) {
	filter.Page = 0
	filter.Limit = 0
	partners, _, err := u.partnerRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}
	return utils.ExportJSON(partners)
}

// validateHierarchy enforces the tier parent rules: a retailer needs an
// active distributor and master distributor, a distributor needs an active
// master distributor, and a master distributor stands alone.
func (u *PartnerUsecase) validateHierarchy(ctx context.Context, partnerType entities.PartnerType, distributorID, masterDistributorID string) error {
	switch partnerType {
	case entities.PartnerTypeRetailer:
		if distributorID == "" || masterDistributorID == "" {
			return domainerrors.BadRequest("A retailer requires both a distributor and a master distributor")
		}
		if err := u.requireActiveParent(ctx, distributorID, entities.PartnerTypeDistributor); err != nil {
			return err
		}
		return u.requireActiveParent(ctx, masterDistributorID, entities.PartnerTypeMasterDistributor)
	case entities.PartnerTypeDistributor:
		if masterDistributorID == "" {
			return domainerrors.BadRequest("A distributor requires a master distributor")
		}
		if distributorID != "" {
			return domainerrors.BadRequest("A distributor cannot have a distributor parent")
		}
		return u.requireActiveParent(ctx, masterDistributorID, entities.PartnerTypeMasterDistributor)
	case entities.PartnerTypeMasterDistributor:
		if distributorID != "" || masterDistributorID != "" {
			return domainerrors.BadRequest("A master distributor cannot have hierarchy parents")
		}
		return nil
	default:
		return domainerrors.BadRequest("Invalid partner type")
	}
}

func (u *PartnerUsecase) requireActiveParent(ctx context.Context, businessID string, wantType entities.PartnerType) error {
	parent, err := u.partnerRepo.GetByPartnerID(ctx, businessID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return domainerrors.BadRequest(fmt.Sprintf("%s %s not found", tierLabel(wantType), businessID))
		}
		return err
	}
	if parent.PartnerType != wantType {
		return domainerrors.BadRequest(fmt.Sprintf("%s is not a %s", businessID, tierLabel(wantType)))
	}
	if parent.Status != entities.PartnerStatusActive {
		return domainerrors.BadRequest(fmt.Sprintf("%s %s is not active", tierLabel(wantType), businessID))
	}
	return nil
}

func (u *PartnerUsecase) nextPartnerID(ctx context.Context, partnerType entities.PartnerType) (string, error) {
	prefix, ok := partnerIDPrefixes[string(partnerType)]
	if !ok {
		return "", domainerrors.BadRequest("Invalid partner type")
	}
	seq, err := u.partnerRepo.NextSequence(ctx, partnerType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, seq), nil
}

func tierLabel(t entities.PartnerType) string {
	switch t {
	case entities.PartnerTypeRetailer:
		return "Retailer"
	case entities.PartnerTypeDistributor:
		return "Distributor"
	case entities.PartnerTypeMasterDistributor:
		return "Master distributor"
	}
	return string(t)
}

func setNullString(dst *null.String, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = null.StringFrom(value)
	}
}

func valueOr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
