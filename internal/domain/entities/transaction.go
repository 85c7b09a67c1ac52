package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionStatus tracks a bill payment's lifecycle
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// BbpsTransaction records one bill payment attempt
type BbpsTransaction struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partnerId"`

	BillerID     string            `json:"billerId"`
	BillerName   string            `json:"billerName"`
	CategoryName string            `json:"categoryName"`
	Params       map[string]string `json:"params"`

	AmountPaise int64 `json:"amountPaise"`
	ChargePaise int64 `json:"chargePaise"`

	// ReqID correlates the pay call with the preceding bill fetch.
	ReqID       null.String       `json:"reqId,omitempty"`
	VendorTxnID null.String       `json:"vendorTxnId,omitempty"`
	Status      TransactionStatus `json:"status"`
	VendorRaw   null.String       `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransactionListFilter captures report filters
type TransactionListFilter struct {
	PartnerID uuid.UUID
	Status    TransactionStatus
	From      time.Time
	To        time.Time
	Page      int
	Limit     int
}
