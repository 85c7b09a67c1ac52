package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PosMachine struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SerialNumber string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Model        string    `gorm:"type:varchar(100);not null"`

	RetailerID          string `gorm:"type:varchar(20);index"`
	DistributorID       string `gorm:"type:varchar(20);index"`
	MasterDistributorID string `gorm:"type:varchar(20);index"`

	Status          string `gorm:"type:varchar(30);not null;default:'inactive'"`
	InventoryStatus string `gorm:"type:varchar(40);not null;default:'in_stock'"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PosMachine) TableName() string {
	return "pos_machines"
}

type PosDeviceMapping struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeviceSerial string    `gorm:"type:varchar(50);not null;index"`
	TerminalID   string    `gorm:"type:varchar(50)"`

	RetailerID          string `gorm:"type:varchar(20);index"`
	DistributorID       string `gorm:"type:varchar(20);index"`
	MasterDistributorID string `gorm:"type:varchar(20);index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PosDeviceMapping) TableName() string {
	return "pos_device_mappings"
}
