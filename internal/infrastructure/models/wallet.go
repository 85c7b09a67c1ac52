package models

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartnerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	BalancePaise int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Wallet) TableName() string {
	return "wallets"
}

type LedgerEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	WalletID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Type         string    `gorm:"type:varchar(10);not null"`
	AmountPaise  int64     `gorm:"not null"`
	BalanceAfter int64     `gorm:"not null"`
	Reference    string    `gorm:"type:varchar(100);not null"`
	Remarks      string    `gorm:"type:text"`
	AdminID      string    `gorm:"type:varchar(40)"`
	CreatedAt    time.Time
}

func (LedgerEntry) TableName() string {
	return "wallet_ledger_entries"
}
