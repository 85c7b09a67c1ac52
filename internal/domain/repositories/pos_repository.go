package repositories

import (
	"context"

	"github.com/google/uuid"
	"sevapay.backend/internal/domain/entities"
)

// PosMachineRepository defines POS device data operations
type PosMachineRepository interface {
	Create(ctx context.Context, machine *entities.PosMachine) error
	CreateBatch(ctx context.Context, machines []*entities.PosMachine) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PosMachine, error)
	GetBySerial(ctx context.Context, serial string) (*entities.PosMachine, error)
	Update(ctx context.Context, machine *entities.PosMachine) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter entities.PosMachineListFilter) ([]*entities.PosMachine, int64, error)
}

// PosMappingRepository defines device-mapping data operations
type PosMappingRepository interface {
	Create(ctx context.Context, mapping *entities.PosDeviceMapping) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PosDeviceMapping, error)
	Update(ctx context.Context, mapping *entities.PosDeviceMapping) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*entities.PosDeviceMapping, error)
}
