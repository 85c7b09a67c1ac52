package repositories

import (
	"context"
	"errors"
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

// adminUserRepo implements repositories.AdminUserRepository
type adminUserRepo struct {
	db *gorm.DB
}

// NewAdminUserRepository creates a new admin user repository
func NewAdminUserRepository(db *gorm.DB) repositories.AdminUserRepository {
	return &adminUserRepo{db: db}
}

func (r *adminUserRepo) Create(ctx context.Context, admin *entities.AdminUser) error {
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt

	m := r.toModel(admin)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *adminUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.AdminUser, error) {
	var m models.AdminUser
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *adminUserRepo) GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error) {
	var m models.AdminUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *adminUserRepo) Update(ctx context.Context, admin *entities.AdminUser) error {
	admin.UpdatedAt = time.Now()
	m := r.toModel(admin)

	// Updates with a map so IsActive=false is not dropped as a zero value.
	result := r.db.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", admin.ID).
		Updates(map[string]interface{}{
			"email":       m.Email,
			"name":        m.Name,
			"admin_type":  m.AdminType,
			"departments": m.Departments,
			"is_active":   m.IsActive,
			"updated_at":  m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *adminUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": passwordHash, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *adminUserRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AdminUser{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *adminUserRepo) ListSubAdmins(ctx context.Context) ([]*entities.AdminUser, error) {
	var rows []models.AdminUser
	err := r.db.WithContext(ctx).
		Where("admin_type = ?", string(entities.AdminTypeSub)).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	admins := make([]*entities.AdminUser, 0, len(rows))
	for i := range rows {
		admins = append(admins, r.toEntity(&rows[i]))
	}
	return admins, nil
}

func (r *adminUserRepo) toModel(e *entities.AdminUser) *models.AdminUser {
	departments := e.Departments
	if departments == nil {
		departments = []string{}
	}

	m := &models.AdminUser{
		ID:           e.ID,
		Email:        e.Email,
		Name:         e.Name,
		PasswordHash: e.PasswordHash,
		AdminType:    string(e.AdminType),
		Departments:  pq.StringArray(departments),
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.LastLoginAt.Valid {
		t := e.LastLoginAt.Time
		m.LastLoginAt = &t
	}
	return m
}

func (r *adminUserRepo) toEntity(m *models.AdminUser) *entities.AdminUser {
	e := &entities.AdminUser{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		AdminType:    entities.AdminType(m.AdminType),
		Departments:  []string(m.Departments),
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.LastLoginAt != nil {
		e.LastLoginAt = null.TimeFrom(*m.LastLoginAt)
	}
	return e
}
