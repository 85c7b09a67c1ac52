package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/internal/infrastructure/models"
)

var posSortColumns = map[string]string{
	"serialNumber":    "serial_number",
	"model":           "model",
	"status":          "status",
	"inventoryStatus": "inventory_status",
	"createdAt":       "created_at",
}

// posMachineRepo implements repositories.PosMachineRepository
type posMachineRepo struct {
	db *gorm.DB
}

// NewPosMachineRepository creates a new POS machine repository
func NewPosMachineRepository(db *gorm.DB) repositories.PosMachineRepository {
	return &posMachineRepo{db: db}
}

func (r *posMachineRepo) Create(ctx context.Context, machine *entities.PosMachine) error {
	if machine.ID == uuid.Nil {
		machine.ID = uuid.New()
	}
	machine.CreatedAt = time.Now()
	machine.UpdatedAt = machine.CreatedAt

	if err := r.db.WithContext(ctx).Create(r.toModel(machine)).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// CreateBatch inserts the given machines in one statement. The bulk-upload
// usecase validates rows first, so a failure here rejects the whole batch.
func (r *posMachineRepo) CreateBatch(ctx context.Context, machines []*entities.PosMachine) error {
	if len(machines) == 0 {
		return nil
	}
	rows := make([]*models.PosMachine, 0, len(machines))
	now := time.Now()
	for _, machine := range machines {
		if machine.ID == uuid.Nil {
			machine.ID = uuid.New()
		}
		machine.CreatedAt = now
		machine.UpdatedAt = now
		rows = append(rows, r.toModel(machine))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *posMachineRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.PosMachine, error) {
	var m models.PosMachine
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *posMachineRepo) GetBySerial(ctx context.Context, serial string) (*entities.PosMachine, error) {
	var m models.PosMachine
	if err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *posMachineRepo) Update(ctx context.Context, machine *entities.PosMachine) error {
	machine.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&models.PosMachine{}).
		Where("id = ?", machine.ID).Updates(r.toModel(machine))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *posMachineRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PosMachine{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *posMachineRepo) List(ctx context.Context, filter entities.PosMachineListFilter) ([]*entities.PosMachine, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PosMachine{})

	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"lower(serial_number) LIKE ? OR lower(model) LIKE ? OR lower(retailer_id) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := posSortColumns[filter.SortBy]
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

	var rows []models.PosMachine
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	machines := make([]*entities.PosMachine, 0, len(rows))
	for i := range rows {
		machines = append(machines, r.toEntity(&rows[i]))
	}
	return machines, total, nil
}

func (r *posMachineRepo) toModel(e *entities.PosMachine) *models.PosMachine {
	return &models.PosMachine{
		ID:                  e.ID,
		SerialNumber:        e.SerialNumber,
		Model:               e.Model,
		RetailerID:          e.RetailerID.String,
		DistributorID:       e.DistributorID.String,
		MasterDistributorID: e.MasterDistributorID.String,
		Status:              string(e.Status),
		InventoryStatus:     string(e.InventoryStatus),
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func (r *posMachineRepo) toEntity(m *models.PosMachine) *entities.PosMachine {
	return &entities.PosMachine{
		ID:                  m.ID,
		SerialNumber:        m.SerialNumber,
		Model:               m.Model,
		RetailerID:          nullStringFrom(m.RetailerID),
		DistributorID:       nullStringFrom(m.DistributorID),
		MasterDistributorID: nullStringFrom(m.MasterDistributorID),
		Status:              entities.PosMachineStatus(m.Status),
		InventoryStatus:     entities.PosInventoryStatus(m.InventoryStatus),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// posMappingRepo implements repositories.PosMappingRepository
type posMappingRepo struct {
	db *gorm.DB
}

// NewPosMappingRepository creates a new device-mapping repository
func NewPosMappingRepository(db *gorm.DB) repositories.PosMappingRepository {
	return &posMappingRepo{db: db}
}

func (r *posMappingRepo) Create(ctx context.Context, mapping *entities.PosDeviceMapping) error {
	if mapping.ID == uuid.Nil {
		mapping.ID = uuid.New()
	}
	mapping.CreatedAt = time.Now()
	mapping.UpdatedAt = mapping.CreatedAt
	return r.db.WithContext(ctx).Create(r.toModel(mapping)).Error
}

func (r *posMappingRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.PosDeviceMapping, error) {
	var m models.PosDeviceMapping
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *posMappingRepo) Update(ctx context.Context, mapping *entities.PosDeviceMapping) error {
	mapping.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&models.PosDeviceMapping{}).
		Where("id = ?", mapping.ID).Updates(r.toModel(mapping))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *posMappingRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PosDeviceMapping{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *posMappingRepo) List(ctx context.Context) ([]*entities.PosDeviceMapping, error) {
	var rows []models.PosDeviceMapping
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	mappings := make([]*entities.PosDeviceMapping, 0, len(rows))
	for i := range rows {
		mappings = append(mappings, r.toEntity(&rows[i]))
	}
	return mappings, nil
}

func (r *posMappingRepo) toModel(e *entities.PosDeviceMapping) *models.PosDeviceMapping {
	return &models.PosDeviceMapping{
		ID:                  e.ID,
		DeviceSerial:        e.DeviceSerial,
		TerminalID:          e.TerminalID.String,
		RetailerID:          e.RetailerID.String,
		DistributorID:       e.DistributorID.String,
		MasterDistributorID: e.MasterDistributorID.String,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func (r *posMappingRepo) toEntity(m *models.PosDeviceMapping) *entities.PosDeviceMapping {
	return &entities.PosDeviceMapping{
		ID:                  m.ID,
		DeviceSerial:        m.DeviceSerial,
		TerminalID:          nullStringFrom(m.TerminalID),
		RetailerID:          nullStringFrom(m.RetailerID),
		DistributorID:       nullStringFrom(m.DistributorID),
		MasterDistributorID: nullStringFrom(m.MasterDistributorID),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
