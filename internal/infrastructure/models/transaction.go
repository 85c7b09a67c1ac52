package models

import (
	"time"

	"github.com/google/uuid"
)

type BbpsTransaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartnerID uuid.UUID `gorm:"type:uuid;not null;index"`

	BillerID     string `gorm:"type:varchar(50);not null"`
	BillerName   string `gorm:"type:varchar(255);not null"`
	CategoryName string `gorm:"type:varchar(100);not null"`
	// Params is the consumer-parameter snapshot as a JSON object string.
	Params string `gorm:"type:jsonb;default:'{}'"`

	AmountPaise int64 `gorm:"not null"`
	ChargePaise int64 `gorm:"not null"`

	ReqID       string `gorm:"type:varchar(100)"`
	VendorTxnID string `gorm:"type:varchar(100);index"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending';index"`
	VendorRaw   string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (BbpsTransaction) TableName() string {
	return "bbps_transactions"
}
