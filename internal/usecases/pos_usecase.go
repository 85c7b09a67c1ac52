package usecases

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/pkg/logger"
	"sevapay.backend/pkg/utils"
)

// PosUsecase manages the POS device inventory and visibility mappings
type PosUsecase struct {
	machineRepo repositories.PosMachineRepository
	mappingRepo repositories.PosMappingRepository
	partnerRepo repositories.PartnerRepository
}

// NewPosUsecase creates a new POS usecase
func NewPosUsecase(
	machineRepo repositories.PosMachineRepository,
	mappingRepo repositories.PosMappingRepository,
	partnerRepo repositories.PartnerRepository,
) *PosUsecase {
	return &PosUsecase{machineRepo: machineRepo, mappingRepo: mappingRepo, partnerRepo: partnerRepo}
}

// CreateMachine registers a device. Assigning a retailer denormalizes the
// retailer's hierarchy onto the device and flips the inventory status.
func (u *PosUsecase) CreateMachine(ctx context.Context, input *entities.PosMachineInput) (*entities.PosMachine, error) {
	machine, err := u.machineFromInput(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := u.machineRepo.Create(ctx, machine); err != nil {
		return nil, err
	}
	logger.Info(ctx, "pos machine created", zap.String("serial", machine.SerialNumber))
	return machine, nil
}

// GetMachine fetches a device by ID
func (u *PosUsecase) GetMachine(ctx context.Context, id uuid.UUID) (*entities.PosMachine, error) {
	return u.machineRepo.GetByID(ctx, id)
}

// ListMachines returns a filtered, paginated device page
func (u *PosUsecase) ListMachines(ctx context.Context, filter entities.PosMachineListFilter) ([]*entities.PosMachine, utils.PaginationMeta, error) {
	machines, total, err := u.machineRepo.List(ctx, filter)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return machines, utils.CalculateMeta(total, filter.Page, filter.Limit), nil
}

// UpdateMachine applies changes to a device, re-deriving the hierarchy when
// the retailer assignment changes.
func (u *PosUsecase) UpdateMachine(ctx context.Context, id uuid.UUID, input *entities.PosMachineInput) (*entities.PosMachine, error) {
	machine, err := u.machineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SerialNumber != "" {
		machine.SerialNumber = input.SerialNumber
	}
	if input.Model != "" {
		machine.Model = input.Model
	}
	if input.Status != "" {
		status := entities.PosMachineStatus(input.Status)
		if !validMachineStatus(status) {
			return nil, domainerrors.BadRequest("Invalid machine status")
		}
		machine.Status = status
	}
	if input.InventoryStatus != "" {
		inv := entities.PosInventoryStatus(input.InventoryStatus)
		if !validInventoryStatus(inv) {
			return nil, domainerrors.BadRequest("Invalid inventory status")
		}
		machine.InventoryStatus = inv
	}
	if input.RetailerID != "" {
		if err := u.assignRetailer(ctx, machine, input.RetailerID); err != nil {
			return nil, err
		}
	}

	if err := u.machineRepo.Update(ctx, machine); err != nil {
		return nil, err
	}
	return machine, nil
}

// DeleteMachine soft-deletes a device
func (u *PosUsecase) DeleteMachine(ctx context.Context, id uuid.UUID) error {
	return u.machineRepo.SoftDelete(ctx, id)
}

// bulkUploadHeader is the required CSV column order for bulk device upload
var bulkUploadHeader = []string{"serial_number", "model", "retailer_id", "status", "inventory_status"}

// BulkUploadTemplate returns the CSV template partners download before a
// bulk upload.
func (u *PosUsecase) BulkUploadTemplate() string {
	return utils.ExportCSV(bulkUploadHeader, [][]string{
		{"SN0001234", "PAX A920", "RET000001", "active", "assigned_to_retailer"},
	})
}

// BulkUpload parses a device CSV and inserts the valid rows in one batch.
// Row failures are collected per row, not fatal to the batch.
func (u *PosUsecase) BulkUpload(ctx context.Context, r io.Reader) (*entities.BulkUploadResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, domainerrors.BadRequest("Could not read CSV header")
	}
	if !matchesHeader(header, bulkUploadHeader) {
		return nil, domainerrors.BadRequest("CSV header must be: " + strings.Join(bulkUploadHeader, ","))
	}

	result := &entities.BulkUploadResult{}
	var machines []*entities.PosMachine
	seen := map[string]bool{}

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, entities.BulkUploadRowError{Row: row, Message: "Unreadable row"})
			continue
		}
		input := &entities.PosMachineInput{
			SerialNumber: strings.TrimSpace(record[0]),
			Model:        strings.TrimSpace(record[1]),
		}
		if len(record) > 2 {
			input.RetailerID = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			input.Status = strings.TrimSpace(record[3])
		}
		if len(record) > 4 {
			input.InventoryStatus = strings.TrimSpace(record[4])
		}

		if input.SerialNumber == "" || input.Model == "" {
			result.Errors = append(result.Errors, entities.BulkUploadRowError{Row: row, Message: "serial_number and model are required"})
			continue
		}
		if seen[input.SerialNumber] {
			result.Errors = append(result.Errors, entities.BulkUploadRowError{Row: row, Message: fmt.Sprintf("Duplicate serial %s in file", input.SerialNumber)})
			continue
		}
		if _, err := u.machineRepo.GetBySerial(ctx, input.SerialNumber); err == nil {
			result.Errors = append(result.Errors, entities.BulkUploadRowError{Row: row, Message: fmt.Sprintf("Serial %s already exists", input.SerialNumber)})
			continue
		} else if err != domainerrors.ErrNotFound {
			return nil, err
		}

		machine, err := u.machineFromInput(ctx, input)
		if err != nil {
			result.Errors = append(result.Errors, entities.BulkUploadRowError{Row: row, Message: err.Error()})
			continue
		}
		seen[input.SerialNumber] = true
		machines = append(machines, machine)
	}

	if len(machines) > 0 {
		if err := u.machineRepo.CreateBatch(ctx, machines); err != nil {
			return nil, err
		}
	}
	result.Inserted = len(machines)
	logger.Info(ctx, "pos bulk upload",
		zap.Int("inserted", result.Inserted), zap.Int("rejected", len(result.Errors)))
	return result, nil
}

// ExportMachinesCSV renders the filtered device directory as CSV
func (u *PosUsecase) ExportMachinesCSV(ctx context.Context, filter entities.PosMachineListFilter) (string, error) {
	filter.Page = 0
	filter.Limit = 0
	machines, _, err := u.machineRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}
	header := []string{"Serial Number", "Model", "Status", "Inventory Status", "Retailer", "Distributor", "Master Distributor", "Created At"}
	rows := make([][]string, 0, len(machines))
	for _, m := range machines {
		rows = append(rows, []string{
			m.SerialNumber,
			m.Model,
			string(m.Status),
			string(m.InventoryStatus),
			m.RetailerID.String,
			m.DistributorID.String,
			m.MasterDistributorID.String,
			m.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return utils.ExportCSV(header, rows), nil
}

// ExportMachinesJSON renders the filtered device directory as pretty-printed JSON
func (u *PosUsecase) ExportMachinesJSON(ctx context.Context, filter entities.PosMachineListFilter) (string, error) {
	filter.Page = 0
	filter.Limit = 0
	machines, _, err := u.machineRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}
	return utils.ExportJSON(machines)
}

// CreateMapping creates a device visibility mapping. At least one party is
// required; each named party must exist at its tier.
func (u *PosUsecase) CreateMapping(ctx context.Context, input *entities.PosDeviceMappingInput) (*entities.PosDeviceMapping, error) {
	mapping, err := u.mappingFromInput(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := u.mappingRepo.Create(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// UpdateMapping replaces a mapping's parties and terminal
func (u *PosUsecase) UpdateMapping(ctx context.Context, id uuid.UUID, input *entities.PosDeviceMappingInput) (*entities.PosDeviceMapping, error) {
	existing, err := u.mappingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mapping, err := u.mappingFromInput(ctx, input)
	if err != nil {
		return nil, err
	}
	mapping.ID = existing.ID
	mapping.CreatedAt = existing.CreatedAt
	if err := u.mappingRepo.Update(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// DeleteMapping soft-deletes a mapping
func (u *PosUsecase) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	return u.mappingRepo.SoftDelete(ctx, id)
}

// ListMappings returns all mappings
func (u *PosUsecase) ListMappings(ctx context.Context) ([]*entities.PosDeviceMapping, error) {
	return u.mappingRepo.List(ctx)
}

func (u *PosUsecase) machineFromInput(ctx context.Context, input *entities.PosMachineInput) (*entities.PosMachine, error) {
	machine := &entities.PosMachine{
		SerialNumber:    input.SerialNumber,
		Model:           input.Model,
		Status:          entities.PosMachineStatusActive,
		InventoryStatus: entities.PosInventoryInStock,
	}
	if input.Status != "" {
		status := entities.PosMachineStatus(input.Status)
		if !validMachineStatus(status) {
			return nil, domainerrors.BadRequest("Invalid machine status")
		}
		machine.Status = status
	}
	if input.InventoryStatus != "" {
		inv := entities.PosInventoryStatus(input.InventoryStatus)
		if !validInventoryStatus(inv) {
			return nil, domainerrors.BadRequest("Invalid inventory status")
		}
		machine.InventoryStatus = inv
	}
	if input.RetailerID != "" {
		if err := u.assignRetailer(ctx, machine, input.RetailerID); err != nil {
			return nil, err
		}
	}
	return machine, nil
}

func (u *PosUsecase) assignRetailer(ctx context.Context, machine *entities.PosMachine, retailerID string) error {
	retailer, err := u.partnerRepo.GetByPartnerID(ctx, retailerID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return domainerrors.BadRequest(fmt.Sprintf("Retailer %s not found", retailerID))
		}
		return err
	}
	if retailer.PartnerType != entities.PartnerTypeRetailer {
		return domainerrors.BadRequest(fmt.Sprintf("%s is not a retailer", retailerID))
	}
	machine.RetailerID = null.StringFrom(retailer.PartnerID)
	machine.DistributorID = retailer.DistributorID
	machine.MasterDistributorID = retailer.MasterDistributorID
	if machine.InventoryStatus == entities.PosInventoryInStock {
		machine.InventoryStatus = entities.PosInventoryAssignedToRetailer
	}
	return nil
}

func (u *PosUsecase) mappingFromInput(ctx context.Context, input *entities.PosDeviceMappingInput) (*entities.PosDeviceMapping, error) {
	if !input.HasParty() {
		return nil, domainerrors.BadRequest("At least one of retailer, distributor or master distributor is required")
	}

	mapping := &entities.PosDeviceMapping{DeviceSerial: input.DeviceSerial}
	setNullString(&mapping.TerminalID, input.TerminalID)

	checks := []struct {
		id   string
		want entities.PartnerType
		dst  *null.String
	}{
		{input.RetailerID, entities.PartnerTypeRetailer, &mapping.RetailerID},
		{input.DistributorID, entities.PartnerTypeDistributor, &mapping.DistributorID},
		{input.MasterDistributorID, entities.PartnerTypeMasterDistributor, &mapping.MasterDistributorID},
	}
	for _, c := range checks {
		if c.id == "" {
			continue
		}
		party, err := u.partnerRepo.GetByPartnerID(ctx, c.id)
		if err != nil {
			if err == domainerrors.ErrNotFound {
				return nil, domainerrors.BadRequest(fmt.Sprintf("%s %s not found", tierLabel(c.want), c.id))
			}
			return nil, err
		}
		if party.PartnerType != c.want {
			return nil, domainerrors.BadRequest(fmt.Sprintf("%s is not a %s", c.id, tierLabel(c.want)))
		}
		*c.dst = null.StringFrom(party.PartnerID)
	}
	return mapping, nil
}

func validMachineStatus(s entities.PosMachineStatus) bool {
	switch s {
	case entities.PosMachineStatusActive, entities.PosMachineStatusInactive,
		entities.PosMachineStatusMaintenance, entities.PosMachineStatusDamaged,
		entities.PosMachineStatusReturned:
		return true
	}
	return false
}

func validInventoryStatus(s entities.PosInventoryStatus) bool {
	switch s {
	case entities.PosInventoryInStock, entities.PosInventoryReceivedFromBank,
		entities.PosInventoryAssignedToRetailer, entities.PosInventoryAssignedToDistributor,
		entities.PosInventoryAssignedToMaster, entities.PosInventoryDamagedFromBank:
		return true
	}
	return false
}

func matchesHeader(got, want []string) bool {
	if len(got) < len(want) {
		return false
	}
	for i, col := range want {
		if !strings.EqualFold(strings.TrimSpace(got[i]), col) {
			return false
		}
	}
	return true
}
