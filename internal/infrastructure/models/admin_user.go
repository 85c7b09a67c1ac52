package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type AdminUser struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name         string         `gorm:"type:varchar(255);not null"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	AdminType    string         `gorm:"type:varchar(30);not null;default:'sub_admin'"`
	Departments  pq.StringArray `gorm:"type:text[]"`
	IsActive     bool           `gorm:"not null;default:true"`
	LastLoginAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
