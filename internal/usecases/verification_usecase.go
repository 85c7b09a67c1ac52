package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/pkg/logger"
)

// VerificationUsecase runs the onboarding verification queue
type VerificationUsecase struct {
	partnerRepo repositories.PartnerRepository
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(partnerRepo repositories.PartnerRepository) *VerificationUsecase {
	return &VerificationUsecase{partnerRepo: partnerRepo}
}

// ListPending returns every partner awaiting verification, across all tiers
func (u *VerificationUsecase) ListPending(ctx context.Context) ([]*entities.PendingPartner, error) {
	return u.partnerRepo.ListPendingVerification(ctx)
}

// GetPending fetches one pending partner, document URLs included, for the
// review screen.
func (u *VerificationUsecase) GetPending(ctx context.Context, id uuid.UUID) (*entities.Partner, error) {
	partner, err := u.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if partner.Status != entities.PartnerStatusPendingVerification {
		return nil, domainerrors.BadRequest("Partner is not awaiting verification")
	}
	return partner, nil
}

// Approve activates a pending partner. Approval stamps verified_at.
func (u *VerificationUsecase) Approve(ctx context.Context, id uuid.UUID, remarks string) error {
	partner, err := u.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if partner.Status != entities.PartnerStatusPendingVerification {
		return domainerrors.BadRequest("Partner is not awaiting verification")
	}
	if err := u.partnerRepo.UpdateStatus(ctx, id, entities.PartnerStatusActive, remarks); err != nil {
		return err
	}
	logger.Info(ctx, "partner verified", zap.String("partnerId", partner.PartnerID))
	return nil
}

// Reject declines a pending partner. Remarks are mandatory so the partner
// knows what to fix.
func (u *VerificationUsecase) Reject(ctx context.Context, id uuid.UUID, remarks string) error {
	if remarks == "" {
		return domainerrors.BadRequest("Rejection remarks are required")
	}
	partner, err := u.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if partner.Status != entities.PartnerStatusPendingVerification {
		return domainerrors.BadRequest("Partner is not awaiting verification")
	}
	if err := u.partnerRepo.UpdateStatus(ctx, id, entities.PartnerStatusInactive, remarks); err != nil {
		return err
	}
	logger.Info(ctx, "partner verification rejected", zap.String("partnerId", partner.PartnerID))
	return nil
}
