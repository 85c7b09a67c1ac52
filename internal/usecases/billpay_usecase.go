package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/internal/infrastructure/bbps"
	"sevapay.backend/pkg/logger"
	"sevapay.backend/pkg/redis"
	"sevapay.backend/pkg/utils"
)

var billPaymentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sevapay_bill_payment_outcomes_total",
	Help: "Bill payment outcomes by terminal state",
}, []string{"outcome"})

// billAggregator is the slice of the BBPS client the usecase needs
type billAggregator interface {
	GetCategories(ctx context.Context) ([]bbps.Category, error)
	GetBillers(ctx context.Context, categoryName string) ([]bbps.Biller, error)
	FetchBill(ctx context.Context, billerID string, params map[string]string) (*bbps.FetchBillResponse, error)
	Pay(ctx context.Context, req *bbps.PayRequest) (*bbps.PayResponse, error)
	TransactionStatus(ctx context.Context, txnID string) (*bbps.StatusResponse, error)
	RegisterComplaint(ctx context.Context, req *bbps.ComplaintRequest) (*bbps.ComplaintResponse, error)
}

var (
	sessionSetValue = redis.Set
	sessionGetValue = redis.Get
	sessionDelValue = redis.Del
)

// BillpayUsecase drives the bill-payment state machine. Sessions live in
// Redis so a chargeable pay call is only reachable through the staged
// amount/charge/balance checks.
type BillpayUsecase struct {
	aggregator     billAggregator
	partnerRepo    repositories.PartnerRepository
	walletRepo     repositories.WalletRepository
	txnRepo        repositories.TransactionRepository
	statusPollWait time.Duration
}

// NewBillpayUsecase creates a new billpay usecase
func NewBillpayUsecase(
	aggregator billAggregator,
	partnerRepo repositories.PartnerRepository,
	walletRepo repositories.WalletRepository,
	txnRepo repositories.TransactionRepository,
	statusPollWait time.Duration,
) *BillpayUsecase {
	return &BillpayUsecase{
		aggregator:     aggregator,
		partnerRepo:    partnerRepo,
		walletRepo:     walletRepo,
		txnRepo:        txnRepo,
		statusPollWait: statusPollWait,
	}
}

// ListCategories lists bill categories from the aggregator
func (u *BillpayUsecase) ListCategories(ctx context.Context) ([]entities.BillCategory, error) {
	cats, err := u.aggregator.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.BillCategory, 0, len(cats))
	for _, c := range cats {
		out = append(out, entities.BillCategory{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

// ListBillers lists billers for a category with their input schemas
func (u *BillpayUsecase) ListBillers(ctx context.Context, categoryName string) ([]entities.Biller, error) {
	billers, err := u.aggregator.GetBillers(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Biller, 0, len(billers))
	for i := range billers {
		out = append(out, toBillerEntity(&billers[i]))
	}
	return out, nil
}

// StartSessionInput carries the first stage of a payment attempt
type StartSessionInput struct {
	BillerID     string            `json:"billerId" binding:"required"`
	CategoryName string            `json:"categoryName" binding:"required"`
	Params       map[string]string `json:"params"`
	// AmountPaise is only read on the prepaid fast path.
	AmountPaise int64 `json:"amountPaise,omitempty"`
}

// StartSession validates consumer parameters, fetches the bill and opens a
// payment session. Prepaid categories skip the fetch and land directly in
// the confirm stage with the caller's amount.
func (u *BillpayUsecase) StartSession(ctx context.Context, partnerID uuid.UUID, input *StartSessionInput) (*entities.PaymentSession, error) {
	billers, err := u.aggregator.GetBillers(ctx, input.CategoryName)
	if err != nil {
		return nil, err
	}
	var biller *entities.Biller
	for i := range billers {
		if billers[i].BillerID == input.BillerID {
			b := toBillerEntity(&billers[i])
			biller = &b
			break
		}
	}
	if biller == nil {
		return nil, domainerrors.NotFound("Biller not found in category")
	}

	if err := validateBillerParams(input.Params, biller.Params); err != nil {
		return nil, err
	}

	session := &entities.PaymentSession{
		SessionID:       uuid.New().String(),
		PartnerID:       partnerID,
		BillerID:        biller.BillerID,
		BillerName:      biller.Name,
		CategoryName:    input.CategoryName,
		AmountExactness: biller.AmountExactness,
		Params:          input.Params,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if IsPrepaidCategory(input.CategoryName) {
		session.Prepaid = true
		if input.AmountPaise < prepaidMinPaise || input.AmountPaise > prepaidMaxPaise {
			return nil, domainerrors.BadRequest(fmt.Sprintf(
				"Recharge amount must be between %s and %s",
				utils.FormatRupees(prepaidMinPaise), utils.FormatRupees(prepaidMaxPaise),
			))
		}
		session.AmountPaise = input.AmountPaise
		session.SelectedOption = entities.AmountOptionCustom
		session.ChargePaise = CalculateChargePaise(input.AmountPaise)
		if err := u.checkBalance(ctx, partnerID, session.TotalPaise()); err != nil {
			return nil, err
		}
		session.Stage = entities.StageConfirm
		return session, u.saveSession(ctx, session)
	}

	bill, err := u.aggregator.FetchBill(ctx, biller.BillerID, input.Params)
	if err != nil {
		return nil, err
	}

	if isNoBillDue(bill.Message) {
		// Nothing to pay is a soft outcome, not an error.
		session.Stage = entities.StageSuccess
		session.NoBillDue = true
		session.VendorMessage = bill.Message
		billPaymentOutcomes.WithLabelValues("no_bill_due").Inc()
		return session, u.saveSession(ctx, session)
	}

	amountPaise, err := parsePaise(bill.Amount)
	if err != nil {
		return nil, domainerrors.BadRequest("Aggregator returned an unreadable bill amount")
	}

	if bill.ReqID == "" {
		// Pay is rejected downstream without the correlation token; this
		// must be loud in the logs.
		logger.Error(ctx, "CRITICAL: bill fetch returned no reqId, payment will be rejected",
			zap.String("billerId", biller.BillerID),
			zap.String("category", input.CategoryName),
		)
	}

	snapshot := &entities.BillSnapshot{
		AmountPaise:  amountPaise,
		DueDate:      firstNonEmpty(bill.DueDate, bill.BillerResponse.DueDate),
		ConsumerName: firstNonEmpty(bill.CustomerName, bill.BillerResponse.CustomerName),
		ReqID:        bill.ReqID,
	}
	if minDue, ok := minimumDuePaise(bill); ok {
		snapshot.AdditionalInfo = map[string]string{"minimumDuePaise": strconv.FormatInt(minDue, 10)}
	}

	session.Bill = snapshot
	session.Stage = entities.StageAmount
	return session, u.saveSession(ctx, session)
}

// AmountOptions reports which selection controls are available for a
// session: minimum only when 0 < minDue < full, nothing but full for
// EXACT billers.
func (u *BillpayUsecase) AmountOptions(session *entities.PaymentSession) (full bool, minimum bool, custom bool) {
	if session.Bill == nil {
		return false, false, false
	}
	full = true
	if session.AmountExactness == entities.AmountExact {
		return full, false, false
	}
	minDue, ok := sessionMinimumDue(session)
	minimum = ok && minDue > 0 && minDue < session.Bill.AmountPaise
	return full, minimum, true
}

// SelectAmount picks the payment amount, computes the charge and gates on
// the wallet balance. On an insufficient balance the session stays in the
// amount stage so the caller can retry with a different amount.
func (u *BillpayUsecase) SelectAmount(ctx context.Context, partnerID uuid.UUID, sessionID string, option entities.AmountOption, customPaise int64) (*entities.PaymentSession, error) {
	session, err := u.loadSession(ctx, partnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != entities.StageAmount {
		return nil, domainerrors.BadRequest("Session is not at the amount-selection stage")
	}

	full := session.Bill.AmountPaise
	minDue, hasMinDue := sessionMinimumDue(session)

	var amount int64
	switch option {
	case entities.AmountOptionFull:
		amount = full
	case entities.AmountOptionMinimum:
		if session.AmountExactness == entities.AmountExact {
			return nil, domainerrors.BadRequest("This biller only accepts the exact bill amount")
		}
		if !hasMinDue || minDue <= 0 || minDue >= full {
			return nil, domainerrors.BadRequest("No minimum-due amount is available for this bill")
		}
		amount = minDue
	case entities.AmountOptionCustom:
		if session.AmountExactness == entities.AmountExact {
			return nil, domainerrors.BadRequest("This biller only accepts the exact bill amount")
		}
		lower := int64(1_00)
		if hasMinDue && minDue > lower {
			lower = minDue
		}
		if customPaise < lower || customPaise > full {
			return nil, domainerrors.BadRequest(fmt.Sprintf(
				"Amount must be between %s and %s",
				utils.FormatRupees(lower), utils.FormatRupees(full),
			))
		}
		amount = customPaise
	default:
		return nil, domainerrors.BadRequest("Unknown amount option")
	}

	charge := CalculateChargePaise(amount)
	if err := u.checkBalance(ctx, partnerID, amount+charge); err != nil {
		return nil, err
	}

	session.SelectedOption = option
	session.AmountPaise = amount
	session.ChargePaise = charge
	session.Stage = entities.StageConfirm
	return session, u.saveSession(ctx, session)
}

// Breakdown returns the confirm-stage deduction summary
func (u *BillpayUsecase) Breakdown(session *entities.PaymentSession) entities.DeductionBreakdown {
	total := session.TotalPaise()
	return entities.DeductionBreakdown{
		AmountPaise: session.AmountPaise,
		ChargePaise: session.ChargePaise,
		TotalPaise:  total,
		Amount:      utils.FormatRupees(session.AmountPaise),
		Charge:      utils.FormatRupees(session.ChargePaise),
		Total:       utils.FormatRupees(total),
	}
}

// ConfirmResult is the outcome of a confirmed payment
type ConfirmResult struct {
	Session       *entities.PaymentSession    `json:"session"`
	Breakdown     entities.DeductionBreakdown `json:"breakdown"`
	TransactionID uuid.UUID                   `json:"transactionId"`
	VendorTxnID   string                      `json:"vendorTxnId,omitempty"`
	BalancePaise  int64                       `json:"balancePaise"`
}

// Confirm executes the payment: verifies the T-PIN, debits the wallet,
// calls the aggregator and records the transaction. A vendor failure
// refunds the debit and leaves the session in the confirm stage for retry.
func (u *BillpayUsecase) Confirm(ctx context.Context, partnerID uuid.UUID, sessionID, tpin string) (*ConfirmResult, error) {
	session, err := u.loadSession(ctx, partnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != entities.StageConfirm {
		return nil, domainerrors.BadRequest("Session is not at the confirm stage")
	}

	partner, err := u.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if err := verifyTpin(partner, tpin); err != nil {
		return nil, err
	}

	reqID := ""
	if session.Bill != nil {
		reqID = session.Bill.ReqID
	}
	if !session.Prepaid && reqID == "" {
		logger.Error(ctx, "CRITICAL: rejecting payment, session has no reqId",
			zap.String("sessionId", session.SessionID),
			zap.String("billerId", session.BillerID),
		)
		return nil, domainerrors.NewAppError(400, "Bill reference is missing, please fetch the bill again", domainerrors.ErrMissingReqID)
	}

	txn := &entities.BbpsTransaction{
		PartnerID:    partnerID,
		BillerID:     session.BillerID,
		BillerName:   session.BillerName,
		CategoryName: session.CategoryName,
		Params:       session.Params,
		AmountPaise:  session.AmountPaise,
		ChargePaise:  session.ChargePaise,
		Status:       entities.TransactionStatusPending,
	}
	if reqID != "" {
		txn.ReqID = null.StringFrom(reqID)
	}
	if err := u.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	total := session.TotalPaise()
	reference := "BBPS:" + txn.ID.String()
	wallet, err := u.walletRepo.Debit(ctx, partnerID, total, reference, "Bill payment "+session.BillerName, "")
	if err != nil {
		// Close the pending row, otherwise the status poller re-selects
		// it forever.
		_ = u.txnRepo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusFailed, "", err.Error())
		if err == domainerrors.ErrInsufficientBalance {
			balance := int64(0)
			if w, berr := u.walletRepo.GetByPartnerID(ctx, partnerID); berr == nil {
				balance = w.BalancePaise
			}
			return nil, insufficientBalanceError(total, balance)
		}
		return nil, err
	}

	payResp, err := u.aggregator.Pay(ctx, &bbps.PayRequest{
		BillerID: session.BillerID,
		Params:   session.Params,
		Amount:   strconv.FormatInt(session.AmountPaise, 10),
		ReqID:    reqID,
		Tpin:     tpin,
	})
	if err != nil {
		// Refund the reserved amount; the session stays at confirm so the
		// partner can retry.
		if _, refundErr := u.walletRepo.Credit(ctx, partnerID, total, reference+":refund", "Refund for failed bill payment", ""); refundErr != nil {
			logger.Error(ctx, "refund after failed pay call failed",
				zap.String("transactionId", txn.ID.String()), zap.Error(refundErr))
		}
		_ = u.txnRepo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusFailed, "", err.Error())
		billPaymentOutcomes.WithLabelValues("failed").Inc()
		return nil, err
	}

	raw, _ := json.Marshal(payResp)
	if !strings.EqualFold(payResp.Status, "SUCCESS") {
		// A definitive vendor rejection is terminal, unlike a transport
		// failure: refund and close the session as failed.
		if _, refundErr := u.walletRepo.Credit(ctx, partnerID, total, reference+":refund", "Refund for declined bill payment", ""); refundErr != nil {
			logger.Error(ctx, "refund after declined payment failed",
				zap.String("transactionId", txn.ID.String()), zap.Error(refundErr))
		}
		_ = u.txnRepo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusFailed, payResp.TxnID, string(raw))
		session.Stage = entities.StageFailed
		session.TransactionID = txn.ID.String()
		session.UpdatedAt = time.Now()
		if err := u.saveSession(ctx, session); err != nil {
			logger.Warn(ctx, "failed to persist terminal session", zap.Error(err))
		}
		billPaymentOutcomes.WithLabelValues("failed").Inc()
		msg := firstNonEmpty(payResp.Message, "Payment was declined by the biller")
		return nil, domainerrors.NewAppError(400, msg, domainerrors.ErrPaymentFailed)
	}

	if err := u.txnRepo.UpdateStatus(ctx, txn.ID, entities.TransactionStatusSuccess, payResp.TxnID, string(raw)); err != nil {
		logger.Error(ctx, "failed to record pay result", zap.String("transactionId", txn.ID.String()), zap.Error(err))
	}

	session.Stage = entities.StageSuccess
	session.TransactionID = txn.ID.String()
	if err := u.saveSession(ctx, session); err != nil {
		logger.Warn(ctx, "failed to persist terminal session", zap.Error(err))
	}
	billPaymentOutcomes.WithLabelValues("success").Inc()

	// Fire-and-forget status poll after a fixed delay. Errors are logged,
	// never surfaced.
	go u.delayedStatusPoll(txn.ID)

	return &ConfirmResult{
		Session:       session,
		Breakdown:     u.Breakdown(session),
		TransactionID: txn.ID,
		VendorTxnID:   payResp.TxnID,
		BalancePaise:  wallet.BalancePaise,
	}, nil
}

// Back rewinds a session one stage, clearing downstream data: confirm to
// amount drops the selection and charge, amount to bill drops the snapshot.
func (u *BillpayUsecase) Back(ctx context.Context, partnerID uuid.UUID, sessionID string) (*entities.PaymentSession, error) {
	session, err := u.loadSession(ctx, partnerID, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Stage {
	case entities.StageConfirm:
		if session.Prepaid {
			return nil, domainerrors.BadRequest("Prepaid sessions cannot go back")
		}
		session.SelectedOption = ""
		session.AmountPaise = 0
		session.ChargePaise = 0
		session.Stage = entities.StageAmount
	case entities.StageAmount:
		session.Bill = nil
		session.Stage = entities.StageBill
	default:
		return nil, domainerrors.BadRequest("Session cannot go back from its current stage")
	}

	session.UpdatedAt = time.Now()
	return session, u.saveSession(ctx, session)
}

// GetSession loads a session owned by the partner
func (u *BillpayUsecase) GetSession(ctx context.Context, partnerID uuid.UUID, sessionID string) (*entities.PaymentSession, error) {
	return u.loadSession(ctx, partnerID, sessionID)
}

// PollStatus re-queries the vendor for a transaction and records the result
func (u *BillpayUsecase) PollStatus(ctx context.Context, txnID uuid.UUID) error {
	txn, err := u.txnRepo.GetByID(ctx, txnID)
	if err != nil {
		return err
	}
	if !txn.VendorTxnID.Valid || txn.VendorTxnID.String == "" {
		return domainerrors.ErrNotFound
	}

	status, err := u.aggregator.TransactionStatus(ctx, txn.VendorTxnID.String)
	if err != nil {
		return err
	}

	raw, _ := json.Marshal(status)
	next := txn.Status
	switch strings.ToUpper(status.TxnStatus) {
	case "SUCCESS":
		next = entities.TransactionStatusSuccess
	case "FAILED", "FAILURE":
		next = entities.TransactionStatusFailed
	}
	return u.txnRepo.UpdateStatus(ctx, txnID, next, status.TxnID, string(raw))
}

// RegisterComplaint registers a vendor complaint for a partner's transaction
func (u *BillpayUsecase) RegisterComplaint(ctx context.Context, partnerID uuid.UUID, input *entities.ComplaintInput) (string, error) {
	txnID, err := uuid.Parse(input.TransactionID)
	if err != nil {
		return "", domainerrors.BadRequest("Invalid transaction ID")
	}
	txn, err := u.txnRepo.GetByID(ctx, txnID)
	if err != nil {
		return "", err
	}
	if txn.PartnerID != partnerID {
		return "", domainerrors.Forbidden("Transaction belongs to another partner")
	}
	if !txn.VendorTxnID.Valid {
		return "", domainerrors.BadRequest("Transaction has no vendor reference yet")
	}

	resp, err := u.aggregator.RegisterComplaint(ctx, &bbps.ComplaintRequest{
		TxnID:       txn.VendorTxnID.String,
		Description: input.Description,
		Disposition: input.Disposition,
	})
	if err != nil {
		return "", err
	}
	return resp.ComplaintID, nil
}

func (u *BillpayUsecase) delayedStatusPoll(txnID uuid.UUID) {
	time.Sleep(u.statusPollWait)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := u.PollStatus(ctx, txnID); err != nil {
		logger.Warn(ctx, "post-payment status poll failed",
			zap.String("transactionId", txnID.String()), zap.Error(err))
	}
}

func (u *BillpayUsecase) checkBalance(ctx context.Context, partnerID uuid.UUID, requiredPaise int64) error {
	wallet, err := u.walletRepo.GetByPartnerID(ctx, partnerID)
	if err != nil {
		return err
	}
	if wallet.BalancePaise < requiredPaise {
		return insufficientBalanceError(requiredPaise, wallet.BalancePaise)
	}
	return nil
}

func insufficientBalanceError(requiredPaise, availablePaise int64) *domainerrors.AppError {
	return domainerrors.BadRequest(fmt.Sprintf(
		"Insufficient balance. Required: %s, Available: %s",
		utils.FormatRupees(requiredPaise), utils.FormatRupees(availablePaise),
	))
}

func (u *BillpayUsecase) saveSession(ctx context.Context, session *entities.PaymentSession) error {
	session.UpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return sessionSetValue(ctx, sessionKey(session.PartnerID, session.SessionID), data, paymentSessionTTL)
}

func (u *BillpayUsecase) loadSession(ctx context.Context, partnerID uuid.UUID, sessionID string) (*entities.PaymentSession, error) {
	data, err := sessionGetValue(ctx, sessionKey(partnerID, sessionID))
	if err != nil {
		return nil, domainerrors.NewAppError(404, "Payment session not found or expired", domainerrors.ErrSessionExpired)
	}
	var session entities.PaymentSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func sessionKey(partnerID uuid.UUID, sessionID string) string {
	return "billpay:session:" + partnerID.String() + ":" + sessionID
}
