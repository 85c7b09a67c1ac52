package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/infrastructure/bbps"
	"sevapay.backend/pkg/crypto"
)

const testTpin = "1234"

func electricityBiller(exactness string) bbps.Biller {
	return bbps.Biller{
		BillerID:        "MSEDCL01",
		BillerName:      "State Electricity Board",
		CategoryName:    "Electricity",
		AmountExactness: exactness,
		FetchRequired:   "MANDATORY",
		ParamInfo: []bbps.ParamInfo{
			{ParamName: "Consumer Number", DataType: "NUMERIC", Optional: "false", MinLength: "12", MaxLength: "12"},
		},
	}
}

func billResponse(amount string, extras ...bbps.InfoEntry) *bbps.FetchBillResponse {
	return &bbps.FetchBillResponse{
		Status:       "SUCCESS",
		ReqID:        "REQ-123",
		Amount:       amount,
		DueDate:      "2026-09-15",
		CustomerName: "R Sharma",
		AdditionalInfo: bbps.AdditionalInfo{Info: extras},
	}
}

type billpayFixture struct {
	usecase   *BillpayUsecase
	agg       *stubAggregator
	wallets   *stubWalletRepo
	txns      *stubTxnRepo
	partners  *stubPartnerRepo
	partnerID uuid.UUID
}

func setupBillpay(t *testing.T, balancePaise int64, exactness string) *billpayFixture {
	t.Helper()
	setupRedis(t)

	tpinHash, err := crypto.HashTpin(testTpin)
	require.NoError(t, err)

	partners := newStubPartnerRepo()
	partner := partners.add(&entities.Partner{
		PartnerID:   "RET000001",
		PartnerType: entities.PartnerTypeRetailer,
		Name:        "Retail Shop",
		Email:       "retail@example.com",
		Status:      entities.PartnerStatusActive,
		TpinHash:    null.StringFrom(tpinHash),
	})

	wallets := newStubWalletRepo()
	wallets.balances[partner.ID] = balancePaise

	txns := newStubTxnRepo()
	agg := &stubAggregator{
		billers:   []bbps.Biller{electricityBiller(exactness)},
		fetchResp: billResponse("10000"),
	}

	// A long poll wait keeps the fire-and-forget status goroutine asleep for
	// the duration of the test.
	return &billpayFixture{
		usecase:   NewBillpayUsecase(agg, partners, wallets, txns, time.Minute),
		agg:       agg,
		wallets:   wallets,
		txns:      txns,
		partners:  partners,
		partnerID: partner.ID,
	}
}

func (f *billpayFixture) start(t *testing.T) *entities.PaymentSession {
	t.Helper()
	session, err := f.usecase.StartSession(context.Background(), f.partnerID, &StartSessionInput{
		BillerID:     "MSEDCL01",
		CategoryName: "Electricity",
		Params:       map[string]string{"Consumer Number": "170012345678"},
	})
	require.NoError(t, err)
	return session
}

func TestStartSession_FetchesBillIntoAmountStage(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")

	session := f.start(t)
	assert.Equal(t, entities.StageAmount, session.Stage)
	require.NotNil(t, session.Bill)
	assert.Equal(t, int64(100_00), session.Bill.AmountPaise)
	assert.Equal(t, "REQ-123", session.Bill.ReqID)
	assert.Equal(t, "R Sharma", session.Bill.ConsumerName)
}

func TestStartSession_ParamValidation(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	ctx := context.Background()

	cases := []struct {
		name   string
		params map[string]string
		errSub string
	}{
		{"missing", map[string]string{}, "required"},
		{"nine digits against exact twelve", map[string]string{"Consumer Number": "170012345"}, "exactly 12 characters"},
		{"non numeric", map[string]string{"Consumer Number": "17001234567a"}, "only digits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.usecase.StartSession(ctx, f.partnerID, &StartSessionInput{
				BillerID: "MSEDCL01", CategoryName: "Electricity", Params: tc.params,
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSub)
		})
	}
}

func TestStartSession_NoBillDueIsSoftOutcome(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	f.agg.fetchResp = &bbps.FetchBillResponse{Status: "FAILURE", Message: "No Bill Due for this consumer"}

	session := f.start(t)
	assert.Equal(t, entities.StageSuccess, session.Stage)
	assert.True(t, session.NoBillDue)
	assert.Equal(t, int64(0), session.AmountPaise)
}

func TestSelectAmount_FullComputesTierCharge(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	session := f.start(t)

	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)
	assert.Equal(t, entities.StageConfirm, session.Stage)
	assert.Equal(t, int64(100_00), session.AmountPaise)
	// A 100 rupee bill has a 5 rupee charge.
	assert.Equal(t, int64(5_00), session.ChargePaise)
	assert.Equal(t, int64(105_00), session.TotalPaise())
}

func TestSelectAmount_InsufficientBalanceExactMessage(t *testing.T) {
	f := setupBillpay(t, 100_00, "ANY")
	session := f.start(t)

	_, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.Error(t, err)
	assert.EqualError(t, err, "Insufficient balance. Required: ₹105.00, Available: ₹100.00")

	// The session stays at the amount stage for retry.
	got, err := f.usecase.GetSession(context.Background(), f.partnerID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageAmount, got.Stage)
}

func TestSelectAmount_ExactBillerDisablesOptions(t *testing.T) {
	f := setupBillpay(t, 500_00, "EXACT")
	f.agg.fetchResp = billResponse("10000", bbps.InfoEntry{InfoName: "Minimum Due Amount", InfoValue: "5000"})
	session := f.start(t)

	full, minimum, custom := f.usecase.AmountOptions(session)
	assert.True(t, full)
	assert.False(t, minimum)
	assert.False(t, custom)

	_, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionMinimum, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exact bill amount")

	_, err = f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionCustom, 50_00)
	require.Error(t, err)

	session, err = f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(100_00), session.AmountPaise)
}

func TestSelectAmount_MinimumDueFromAdditionalInfo(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	f.agg.fetchResp = billResponse("10000", bbps.InfoEntry{InfoName: "minimum due", InfoValue: "4000"})
	session := f.start(t)

	full, minimum, custom := f.usecase.AmountOptions(session)
	assert.True(t, full)
	assert.True(t, minimum)
	assert.True(t, custom)

	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionMinimum, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(40_00), session.AmountPaise)
	assert.Equal(t, int64(5_00), session.ChargePaise)
}

func TestSelectAmount_CustomBounds(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	f.agg.fetchResp = billResponse("10000", bbps.InfoEntry{InfoName: "Min Due", InfoValue: "4000"})

	// Below the minimum due.
	session := f.start(t)
	_, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionCustom, 30_00)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between ₹40.00 and ₹100.00")

	// Above the bill amount.
	_, err = f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionCustom, 150_00)
	require.Error(t, err)

	// In range.
	got, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionCustom, 60_00)
	require.NoError(t, err)
	assert.Equal(t, int64(60_00), got.AmountPaise)
}

func TestConfirm_DebitsAmountPlusCharge(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	session := f.start(t)
	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)

	result, err := f.usecase.Confirm(context.Background(), f.partnerID, session.SessionID, testTpin)
	require.NoError(t, err)

	assert.Equal(t, int64(395_00), result.BalancePaise)
	assert.Equal(t, "VND-1", result.VendorTxnID)
	assert.Equal(t, entities.StageSuccess, result.Session.Stage)
	assert.Equal(t, int64(105_00), result.Breakdown.TotalPaise)
	assert.Equal(t, "₹105.00", result.Breakdown.Total)

	txn, err := f.txns.GetByID(context.Background(), result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusSuccess, txn.Status)
	assert.Equal(t, "REQ-123", txn.ReqID.String)
}

func TestConfirm_WrongTpin(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	session := f.start(t)
	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)

	_, err = f.usecase.Confirm(context.Background(), f.partnerID, session.SessionID, "9999")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTpin)
	assert.Equal(t, 0, f.agg.payCalls)
	assert.Equal(t, int64(500_00), f.wallets.balances[f.partnerID])
}

func TestConfirm_TpinOptionalUntilConfigured(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	f.partners.byID[f.partnerID].TpinHash = null.String{}

	session := f.start(t)
	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)

	// Supplying a T-PIN before one is configured is an error.
	_, err = f.usecase.Confirm(context.Background(), f.partnerID, session.SessionID, testTpin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "T-PIN is not set")
	assert.Equal(t, 0, f.agg.payCalls)

	// An empty T-PIN pays through.
	result, err := f.usecase.Confirm(context.Background(), f.partnerID, session.SessionID, "")
	require.NoError(t, err)
	assert.Equal(t, entities.StageSuccess, result.Session.Stage)
	assert.Equal(t, int64(395_00), result.BalancePaise)
}

func TestConfirm_DebitFailureClosesTransaction(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	session := f.start(t)
	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)

	// The balance drains between amount selection and confirm.
	f.wallets.balances[f.partnerID] = 0

	_, err = f.usecase.Confirm(context.Background(), f.partnerID, session.SessionID, testTpin)
	require.Error(t, err)
	assert.EqualError(t, err, "Insufficient balance. Required: ₹105.00, Available: ₹0.00")

	// The pending row is closed, so the status poller has nothing to pick up.
	require.Len(t, f.txns.txns, 1)
	for _, txn := range f.txns.txns {
		assert.Equal(t, entities.TransactionStatusFailed, txn.Status)
	}
	stale, err := f.txns.ListStalePending(context.Background(), time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestConfirm_VendorDeclineTerminatesSession(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	f.agg.payResp = &bbps.PayResponse{Status: "FAILURE", Message: "Payment declined by biller float limits"}

	session := f.start(t)
	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)

	_, err = f.usecase.Confirm(context.Background(), f.partnerID, session.SessionID, testTpin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Payment declined by biller float limits")

	// Refunded in full and the transaction is closed as failed.
	assert.Equal(t, int64(500_00), f.wallets.balances[f.partnerID])
	require.Len(t, f.txns.txns, 1)
	for _, txn := range f.txns.txns {
		assert.Equal(t, entities.TransactionStatusFailed, txn.Status)
	}

	// Unlike a transport failure, a decline is terminal for the session.
	got, err := f.usecase.GetSession(context.Background(), f.partnerID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageFailed, got.Stage)
}

func TestConfirm_MissingReqIDRejectsPayment(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	f.agg.fetchResp = billResponse("10000")
	f.agg.fetchResp.ReqID = ""

	session := f.start(t)
	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)

	_, err = f.usecase.Confirm(context.Background(), f.partnerID, session.SessionID, testTpin)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrMissingReqID)
	assert.Equal(t, 0, f.agg.payCalls)
	assert.Equal(t, int64(500_00), f.wallets.balances[f.partnerID])
}

func TestConfirm_VendorFailureRefundsDebit(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	f.agg.payErr = domainerrors.BadRequest("Biller unreachable")

	session := f.start(t)
	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)

	_, err = f.usecase.Confirm(context.Background(), f.partnerID, session.SessionID, testTpin)
	require.Error(t, err)
	assert.Equal(t, 1, f.agg.payCalls)
	// Refunded in full.
	assert.Equal(t, int64(500_00), f.wallets.balances[f.partnerID])

	// Session stays at confirm for retry.
	got, err := f.usecase.GetSession(context.Background(), f.partnerID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageConfirm, got.Stage)
}

func TestBack_ClearsDownstreamState(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	session := f.start(t)
	session, err := f.usecase.SelectAmount(context.Background(), f.partnerID, session.SessionID, entities.AmountOptionFull, 0)
	require.NoError(t, err)

	session, err = f.usecase.Back(context.Background(), f.partnerID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageAmount, session.Stage)
	assert.Equal(t, int64(0), session.AmountPaise)
	assert.Equal(t, int64(0), session.ChargePaise)
	assert.Empty(t, session.SelectedOption)
	assert.NotNil(t, session.Bill)

	session, err = f.usecase.Back(context.Background(), f.partnerID, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageBill, session.Stage)
	assert.Nil(t, session.Bill)

	_, err = f.usecase.Back(context.Background(), f.partnerID, session.SessionID)
	require.Error(t, err)
}

func TestPrepaid_FastPathSkipsFetch(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	f.agg.billers = append(f.agg.billers, bbps.Biller{
		BillerID: "AIRTEL01", BillerName: "Airtel", CategoryName: "Mobile Prepaid", AmountExactness: "ANY",
	})

	session, err := f.usecase.StartSession(context.Background(), f.partnerID, &StartSessionInput{
		BillerID:     "AIRTEL01",
		CategoryName: "Mobile Prepaid",
		Params:       map[string]string{"Mobile Number": "9876543210"},
		AmountPaise:  199_00,
	})
	require.NoError(t, err)
	assert.True(t, session.Prepaid)
	assert.Equal(t, entities.StageConfirm, session.Stage)
	assert.Equal(t, int64(199_00), session.AmountPaise)
	assert.Equal(t, int64(5_00), session.ChargePaise)
}

func TestPrepaid_AmountBounds(t *testing.T) {
	f := setupBillpay(t, 50000_00, "ANY")
	f.agg.billers = append(f.agg.billers, bbps.Biller{
		BillerID: "AIRTEL01", BillerName: "Airtel", CategoryName: "Mobile Prepaid", AmountExactness: "ANY",
	})

	for _, amount := range []int64{5_00, 10001_00} {
		_, err := f.usecase.StartSession(context.Background(), f.partnerID, &StartSessionInput{
			BillerID: "AIRTEL01", CategoryName: "Mobile Prepaid", AmountPaise: amount,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "between ₹10.00 and ₹10000.00")
	}
}

func TestSession_ExpiredOrForeign(t *testing.T) {
	f := setupBillpay(t, 500_00, "ANY")
	session := f.start(t)

	// A different partner cannot see the session.
	_, err := f.usecase.GetSession(context.Background(), uuid.New(), session.SessionID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrSessionExpired)

	_, err = f.usecase.GetSession(context.Background(), f.partnerID, "no-such-session")
	require.Error(t, err)
}
