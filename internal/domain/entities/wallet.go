package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// LedgerEntryType marks the direction of a wallet movement
type LedgerEntryType string

const (
	LedgerEntryCredit LedgerEntryType = "credit"
	LedgerEntryDebit  LedgerEntryType = "debit"
)

// Wallet holds a partner's balance in paise
type Wallet struct {
	ID           uuid.UUID `json:"id"`
	PartnerID    uuid.UUID `json:"partnerId"`
	BalancePaise int64     `json:"balancePaise"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LedgerEntry records a single wallet movement. Every adjustment, charge and
// bill payment writes one.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id"`
	WalletID     uuid.UUID       `json:"walletId"`
	Type         LedgerEntryType `json:"type"`
	AmountPaise  int64           `json:"amountPaise"`
	BalanceAfter int64           `json:"balanceAfter"`
	Reference    string          `json:"reference"`
	Remarks      null.String     `json:"remarks,omitempty"`
	// AdminID is set for admin-initiated push/pull adjustments.
	AdminID   null.String `json:"adminId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// WalletAdjustInput carries an admin push (credit) or pull (debit)
type WalletAdjustInput struct {
	PartnerID   uuid.UUID `json:"partnerId" binding:"required"`
	AmountPaise int64     `json:"amountPaise" binding:"required"`
	Remarks     string    `json:"remarks" binding:"required"`
}

// WalletBalanceResponse is the balance lookup projection
type WalletBalanceResponse struct {
	PartnerID    uuid.UUID `json:"partnerId"`
	BalancePaise int64     `json:"balancePaise"`
	Balance      string    `json:"balance"`
}
