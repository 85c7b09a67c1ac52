package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PosMachineStatus tracks operational health of a device
type PosMachineStatus string

const (
	PosMachineStatusActive      PosMachineStatus = "active"
	PosMachineStatusInactive    PosMachineStatus = "inactive"
	PosMachineStatusMaintenance PosMachineStatus = "maintenance"
	PosMachineStatusDamaged     PosMachineStatus = "damaged"
	PosMachineStatusReturned    PosMachineStatus = "returned"
)

// PosInventoryStatus tracks custody independently of operational status
type PosInventoryStatus string

const (
	PosInventoryInStock               PosInventoryStatus = "in_stock"
	PosInventoryReceivedFromBank      PosInventoryStatus = "received_from_bank"
	PosInventoryAssignedToRetailer    PosInventoryStatus = "assigned_to_retailer"
	PosInventoryAssignedToDistributor PosInventoryStatus = "assigned_to_distributor"
	PosInventoryAssignedToMaster      PosInventoryStatus = "assigned_to_master_distributor"
	PosInventoryDamagedFromBank       PosInventoryStatus = "damaged_from_bank"
)

// PosMachine represents a POS terminal device. The assigned hierarchy is
// denormalized from the retailer at assignment time.
type PosMachine struct {
	ID           uuid.UUID `json:"id"`
	SerialNumber string    `json:"serialNumber"`
	Model        string    `json:"model"`

	RetailerID          null.String `json:"retailerId,omitempty"`
	DistributorID       null.String `json:"distributorId,omitempty"`
	MasterDistributorID null.String `json:"masterDistributorId,omitempty"`

	Status          PosMachineStatus   `json:"status"`
	InventoryStatus PosInventoryStatus `json:"inventoryStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt null.Time `json:"-"`
}

// PosMachineInput carries create/update fields for a device
type PosMachineInput struct {
	SerialNumber    string `json:"serialNumber" binding:"required"`
	Model           string `json:"model" binding:"required"`
	RetailerID      string `json:"retailerId,omitempty"`
	Status          string `json:"status,omitempty"`
	InventoryStatus string `json:"inventoryStatus,omitempty"`
}

// PosMachineListFilter mirrors PartnerListFilter for the device directory
type PosMachineListFilter struct {
	Search   string
	Status   PosMachineStatus
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

// BulkUploadRowError reports a rejected row from a bulk CSV upload
type BulkUploadRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BulkUploadResult summarizes a bulk CSV upload
type BulkUploadResult struct {
	Inserted int                  `json:"inserted"`
	Errors   []BulkUploadRowError `json:"errors"`
}

// PosDeviceMapping scopes transaction visibility of a device serial to one
// or more parties. At least one party must be set.
type PosDeviceMapping struct {
	ID           uuid.UUID   `json:"id"`
	DeviceSerial string      `json:"deviceSerial"`
	TerminalID   null.String `json:"terminalId,omitempty"`

	RetailerID          null.String `json:"retailerId,omitempty"`
	DistributorID       null.String `json:"distributorId,omitempty"`
	MasterDistributorID null.String `json:"masterDistributorId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt null.Time `json:"-"`
}

// PosDeviceMappingInput carries create/update fields for a mapping
type PosDeviceMappingInput struct {
	DeviceSerial        string `json:"deviceSerial" binding:"required"`
	TerminalID          string `json:"terminalId,omitempty"`
	RetailerID          string `json:"retailerId,omitempty"`
	DistributorID       string `json:"distributorId,omitempty"`
	MasterDistributorID string `json:"masterDistributorId,omitempty"`
}

// HasParty reports whether any visibility party is set
func (in *PosDeviceMappingInput) HasParty() bool {
	return in.RetailerID != "" || in.DistributorID != "" || in.MasterDistributorID != ""
}
