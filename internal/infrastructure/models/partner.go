package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Partner is the storage row shared by all three tiers. TableName is fixed
// to one table; partner_type discriminates tiers.
type Partner struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartnerID   string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	PartnerType string    `gorm:"type:varchar(30);not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Email       string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone       string    `gorm:"type:varchar(20);not null"`
	Address     string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(30);not null;default:'pending_verification';index"`

	DistributorID       string `gorm:"type:varchar(20);index"`
	MasterDistributorID string `gorm:"type:varchar(20);index"`

	CommissionRate float64 `gorm:"type:decimal(5,2);default:0"`

	BankAccountNumber string `gorm:"type:varchar(30)"`
	BankIFSC          string `gorm:"type:varchar(15)"`
	BankName          string `gorm:"type:varchar(255)"`

	PanDocumentURL       string `gorm:"type:text"`
	AadhaarDocumentURL   string `gorm:"type:text"`
	BankProofDocumentURL string `gorm:"type:text"`

	PasswordHash string `gorm:"type:varchar(255);not null"`
	TpinHash     string `gorm:"type:varchar(255)"`

	VerificationRemarks string `gorm:"type:text"`
	VerifiedAt          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Partner) TableName() string {
	return "partners"
}
