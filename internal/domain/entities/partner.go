package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PartnerType represents the tier of a partner in the reseller hierarchy
type PartnerType string

const (
	PartnerTypeRetailer          PartnerType = "retailer"
	PartnerTypeDistributor       PartnerType = "distributor"
	PartnerTypeMasterDistributor PartnerType = "master_distributor"
)

// PartnerStatus represents partner lifecycle status
type PartnerStatus string

const (
	PartnerStatusActive              PartnerStatus = "active"
	PartnerStatusInactive            PartnerStatus = "inactive"
	PartnerStatusSuspended           PartnerStatus = "suspended"
	PartnerStatusPendingVerification PartnerStatus = "pending_verification"
)

// Partner represents a retailer, distributor or master distributor.
// PartnerID is the external business key ("RET000123"), ID the storage key.
type Partner struct {
	ID          uuid.UUID     `json:"id"`
	PartnerID   string        `json:"partnerId"`
	PartnerType PartnerType   `json:"partnerType"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	Address     null.String   `json:"address,omitempty"`
	Status      PartnerStatus `json:"status"`

	// Hierarchy pointers hold parent business keys. A retailer carries both,
	// a distributor only the master distributor, a master distributor none.
	DistributorID       null.String `json:"distributorId,omitempty"`
	MasterDistributorID null.String `json:"masterDistributorId,omitempty"`

	CommissionRate float64 `json:"commissionRate"`

	BankAccountNumber null.String `json:"bankAccountNumber,omitempty"`
	BankIFSC          null.String `json:"bankIfsc,omitempty"`
	BankName          null.String `json:"bankName,omitempty"`

	PanDocumentURL       null.String `json:"panDocumentUrl,omitempty"`
	AadhaarDocumentURL   null.String `json:"aadhaarDocumentUrl,omitempty"`
	BankProofDocumentURL null.String `json:"bankProofDocumentUrl,omitempty"`

	PasswordHash string      `json:"-"`
	TpinHash     null.String `json:"-"`

	VerificationRemarks null.String `json:"verificationRemarks,omitempty"`
	VerifiedAt          null.Time   `json:"verifiedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt null.Time `json:"-"`
}

// PartnerCreateInput carries the create form: basic details plus the
// mandatory bank and KYC step.
type PartnerCreateInput struct {
	PartnerType PartnerType `json:"partnerType" binding:"required"`
	Name        string      `json:"name" binding:"required,min=2,max=255"`
	Email       string      `json:"email" binding:"required,email"`
	Phone       string      `json:"phone" binding:"required,min=10,max=15"`
	Address     string      `json:"address,omitempty"`
	Password    string      `json:"password" binding:"required,min=8"`

	DistributorID       string `json:"distributorId,omitempty"`
	MasterDistributorID string `json:"masterDistributorId,omitempty"`

	CommissionRate float64 `json:"commissionRate"`

	BankAccountNumber string `json:"bankAccountNumber" binding:"required"`
	BankIFSC          string `json:"bankIfsc" binding:"required"`
	BankName          string `json:"bankName" binding:"required"`

	PanDocumentURL       string `json:"panDocumentUrl" binding:"required"`
	AadhaarDocumentURL   string `json:"aadhaarDocumentUrl" binding:"required"`
	BankProofDocumentURL string `json:"bankProofDocumentUrl,omitempty"`
}

// PartnerUpdateInput carries updatable fields; zero values are skipped.
type PartnerUpdateInput struct {
	Name                string  `json:"name,omitempty"`
	Email               string  `json:"email,omitempty"`
	Phone               string  `json:"phone,omitempty"`
	Address             string  `json:"address,omitempty"`
	Status              string  `json:"status,omitempty"`
	DistributorID       string  `json:"distributorId,omitempty"`
	MasterDistributorID string  `json:"masterDistributorId,omitempty"`
	CommissionRate      float64 `json:"commissionRate,omitempty"`
	BankAccountNumber   string  `json:"bankAccountNumber,omitempty"`
	BankIFSC            string  `json:"bankIfsc,omitempty"`
	BankName            string  `json:"bankName,omitempty"`
}

/// PartnerListFilter captures the dashboard's list controls: free-text search
// across name/email/partner id/phone, a status filter and a sortable column.
type PartnerListFilter struct {
	PartnerType PartnerType
	Search      string
	Status      PartnerStatus
	SortBy      string
	SortDesc    bool
	Page        int
	Limit       int
}

// PendingPartner is a verification-queue row, annotated with its tier.
type PendingPartner struct {
	Partner
	Tier PartnerType `json:"tier"`
}
