package repositories

import (
	"context"

	"github.com/google/uuid"
	"sevapay.backend/internal/domain/entities"
)

// PartnerRepository defines partner data operations
type PartnerRepository interface {
	Create(ctx context.Context, partner *entities.Partner) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Partner, error)
	GetByPartnerID(ctx context.Context, partnerID string) (*entities.Partner, error)
	GetByEmail(ctx context.Context, email string) (*entities.Partner, error)
	Update(ctx context.Context, partner *entities.Partner) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PartnerStatus, remarks string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	BulkSoftDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
	List(ctx context.Context, filter entities.PartnerListFilter) ([]*entities.Partner, int64, error)
	ListPendingVerification(ctx context.Context) ([]*entities.PendingPartner, error)
	// NextSequence returns the next value of the per-tier partner id sequence.
	NextSequence(ctx context.Context, partnerType entities.PartnerType) (int64, error)
}
