package repositories

import (
	"context"

	"github.com/google/uuid"
	"sevapay.backend/internal/domain/entities"
)

// AdminUserRepository defines admin account data operations
type AdminUserRepository interface {
	Create(ctx context.Context, admin *entities.AdminUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error)
	Update(ctx context.Context, admin *entities.AdminUser) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListSubAdmins(ctx context.Context) ([]*entities.AdminUser, error)
}
