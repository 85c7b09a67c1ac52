package usecases

import (
	"context"

	"github.com/google/uuid"

	"sevapay.backend/internal/domain/entities"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/pkg/utils"
)

// ReportUsecase serves transaction reports and exports
type ReportUsecase struct {
	txnRepo repositories.TransactionRepository
}

// NewReportUsecase creates a new report usecase
func NewReportUsecase(txnRepo repositories.TransactionRepository) *ReportUsecase {
	return &ReportUsecase{txnRepo: txnRepo}
}

// List returns a filtered, paginated transaction page
func (u *ReportUsecase) List(ctx context.Context, filter entities.TransactionListFilter) ([]*entities.BbpsTransaction, utils.PaginationMeta, error) {
	txns, total, err := u.txnRepo.List(ctx, filter)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return txns, utils.CalculateMeta(total, filter.Page, filter.Limit), nil
}

// Get fetches a single transaction
func (u *ReportUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.BbpsTransaction, error) {
	return u.txnRepo.GetByID(ctx, id)
}

// ExportCSV renders the filtered transactions as CSV
func (u *ReportUsecase) ExportCSV(ctx context.Context, filter entities.TransactionListFilter) (string, error) {
	filter.Page = 0
	filter.Limit = 0
	txns, _, err := u.txnRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}
	header := []string{"Transaction ID", "Partner ID", "Biller", "Category", "Amount", "Charge", "Status", "Vendor Ref", "Created At"}
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{
			t.ID.String(),
			t.PartnerID.String(),
			t.BillerName,
			t.CategoryName,
			utils.FormatRupees(t.AmountPaise),
			utils.FormatRupees(t.ChargePaise),
			string(t.Status),
			t.VendorTxnID.String,
			t.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return utils.ExportCSV(header, rows), nil
}

// ExportJSON renders the filtered transactions as pretty-printed JSON
func (u *ReportUsecase) ExportJSON(ctx context.Context, filter entities.TransactionListFilter) (string, error) {
	filter.Page = 0
	filter.Limit = 0
	txns, _, err := u.txnRepo.List(ctx, filter)
	if err != nil {
		return "", err
	}
	return utils.ExportJSON(txns)
}
