package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/infrastructure/bbps"
	"sevapay.backend/pkg/logger"
	"sevapay.backend/pkg/redis"
)

func setupRedis(t *testing.T) {
	t.Helper()
	logger.Init("development")

	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
}

// stubPartnerRepo is an in-memory PartnerRepository
type stubPartnerRepo struct {
	byID    map[uuid.UUID]*entities.Partner
	byKey   map[string]*entities.Partner
	byEmail map[string]*entities.Partner

	createErr  error
	deletedIDs []uuid.UUID
}

func newStubPartnerRepo() *stubPartnerRepo {
	return &stubPartnerRepo{
		byID:    map[uuid.UUID]*entities.Partner{},
		byKey:   map[string]*entities.Partner{},
		byEmail: map[string]*entities.Partner{},
	}
}

func (s *stubPartnerRepo) add(p *entities.Partner) *entities.Partner {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.byID[p.ID] = p
	if p.PartnerID != "" {
		s.byKey[p.PartnerID] = p
	}
	if p.Email != "" {
		s.byEmail[p.Email] = p
	}
	return p
}

func (s *stubPartnerRepo) Create(ctx context.Context, partner *entities.Partner) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.add(partner)
	return nil
}

func (s *stubPartnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Partner, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return p, nil
}

func (s *stubPartnerRepo) GetByPartnerID(ctx context.Context, partnerID string) (*entities.Partner, error) {
	p, ok := s.byKey[partnerID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return p, nil
}

func (s *stubPartnerRepo) GetByEmail(ctx context.Context, email string) (*entities.Partner, error) {
	p, ok := s.byEmail[email]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return p, nil
}

func (s *stubPartnerRepo) Update(ctx context.Context, partner *entities.Partner) error {
	if _, ok := s.byID[partner.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	s.byID[partner.ID] = partner
	return nil
}

func (s *stubPartnerRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.PartnerStatus, remarks string) error {
	p, ok := s.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	p.Status = status
	return nil
}

func (s *stubPartnerRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	p, ok := s.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	p.PasswordHash = passwordHash
	return nil
}

func (s *stubPartnerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.byID[id]; !ok {
		return domainerrors.ErrNotFound
	}
	delete(s.byID, id)
	s.deletedIDs = append(s.deletedIDs, id)
	return nil
}

func (s *stubPartnerRepo) BulkSoftDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if s.SoftDelete(ctx, id) == nil {
			n++
		}
	}
	return n, nil
}

func (s *stubPartnerRepo) List(ctx context.Context, filter entities.PartnerListFilter) ([]*entities.Partner, int64, error) {
	var out []*entities.Partner
	for _, p := range s.byID {
		if filter.PartnerType != "" && p.PartnerType != filter.PartnerType {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (s *stubPartnerRepo) ListPendingVerification(ctx context.Context) ([]*entities.PendingPartner, error) {
	var out []*entities.PendingPartner
	for _, p := range s.byID {
		if p.Status == entities.PartnerStatusPendingVerification {
			out = append(out, &entities.PendingPartner{Partner: *p, Tier: p.PartnerType})
		}
	}
	return out, nil
}

func (s *stubPartnerRepo) NextSequence(ctx context.Context, partnerType entities.PartnerType) (int64, error) {
	var n int64 = 1
	for _, p := range s.byID {
		if p.PartnerType == partnerType {
			n++
		}
	}
	return n, nil
}

// stubWalletRepo is an in-memory WalletRepository
type stubWalletRepo struct {
	balances  map[uuid.UUID]int64
	ledger    []*entities.LedgerEntry
	createErr error
}

func newStubWalletRepo() *stubWalletRepo {
	return &stubWalletRepo{balances: map[uuid.UUID]int64{}}
}

func (s *stubWalletRepo) wallet(partnerID uuid.UUID) *entities.Wallet {
	return &entities.Wallet{ID: uuid.New(), PartnerID: partnerID, BalancePaise: s.balances[partnerID]}
}

func (s *stubWalletRepo) CreateForPartner(ctx context.Context, partnerID uuid.UUID) (*entities.Wallet, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, ok := s.balances[partnerID]; ok {
		return nil, domainerrors.ErrAlreadyExists
	}
	s.balances[partnerID] = 0
	return s.wallet(partnerID), nil
}

func (s *stubWalletRepo) GetByPartnerID(ctx context.Context, partnerID uuid.UUID) (*entities.Wallet, error) {
	if _, ok := s.balances[partnerID]; !ok {
		return nil, domainerrors.ErrNotFound
	}
	return s.wallet(partnerID), nil
}

func (s *stubWalletRepo) Credit(ctx context.Context, partnerID uuid.UUID, amountPaise int64, reference, remarks, adminID string) (*entities.Wallet, error) {
	if _, ok := s.balances[partnerID]; !ok {
		return nil, domainerrors.ErrNotFound
	}
	s.balances[partnerID] += amountPaise
	s.record(entities.LedgerEntryCredit, amountPaise, s.balances[partnerID], reference)
	return s.wallet(partnerID), nil
}

func (s *stubWalletRepo) Debit(ctx context.Context, partnerID uuid.UUID, amountPaise int64, reference, remarks, adminID string) (*entities.Wallet, error) {
	balance, ok := s.balances[partnerID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	if balance < amountPaise {
		return nil, domainerrors.ErrInsufficientBalance
	}
	s.balances[partnerID] -= amountPaise
	s.record(entities.LedgerEntryDebit, amountPaise, s.balances[partnerID], reference)
	return s.wallet(partnerID), nil
}

func (s *stubWalletRepo) record(entryType entities.LedgerEntryType, amount, after int64, reference string) {
	s.ledger = append(s.ledger, &entities.LedgerEntry{
		ID: uuid.New(), Type: entryType, AmountPaise: amount, BalanceAfter: after,
		Reference: reference, CreatedAt: time.Now(),
	})
}

func (s *stubWalletRepo) ListLedger(ctx context.Context, partnerID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	return s.ledger, nil
}

// stubTxnRepo is an in-memory TransactionRepository
type stubTxnRepo struct {
	txns map[uuid.UUID]*entities.BbpsTransaction
}

func newStubTxnRepo() *stubTxnRepo {
	return &stubTxnRepo{txns: map[uuid.UUID]*entities.BbpsTransaction{}}
}

func (s *stubTxnRepo) Create(ctx context.Context, txn *entities.BbpsTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	s.txns[txn.ID] = txn
	return nil
}

func (s *stubTxnRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.BbpsTransaction, error) {
	txn, ok := s.txns[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return txn, nil
}

func (s *stubTxnRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, vendorTxnID, vendorRaw string) error {
	txn, ok := s.txns[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	txn.Status = status
	if vendorTxnID != "" {
		txn.VendorTxnID.SetValid(vendorTxnID)
	}
	return nil
}

func (s *stubTxnRepo) List(ctx context.Context, filter entities.TransactionListFilter) ([]*entities.BbpsTransaction, int64, error) {
	var out []*entities.BbpsTransaction
	for _, t := range s.txns {
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (s *stubTxnRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.BbpsTransaction, error) {
	var out []*entities.BbpsTransaction
	for _, t := range s.txns {
		if t.Status == entities.TransactionStatusPending {
			out = append(out, t)
		}
	}
	return out, nil
}

// stubAggregator is a scriptable billAggregator
type stubAggregator struct {
	billers   []bbps.Biller
	fetchResp *bbps.FetchBillResponse
	fetchErr  error
	payResp   *bbps.PayResponse
	payErr    error
	payCalls  int
}

func (s *stubAggregator) GetCategories(ctx context.Context) ([]bbps.Category, error) {
	return []bbps.Category{{ID: "1", Name: "Electricity"}}, nil
}

func (s *stubAggregator) GetBillers(ctx context.Context, categoryName string) ([]bbps.Biller, error) {
	var out []bbps.Biller
	for _, b := range s.billers {
		if strings.EqualFold(b.CategoryName, categoryName) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubAggregator) FetchBill(ctx context.Context, billerID string, params map[string]string) (*bbps.FetchBillResponse, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.fetchResp, nil
}

func (s *stubAggregator) Pay(ctx context.Context, req *bbps.PayRequest) (*bbps.PayResponse, error) {
	s.payCalls++
	if s.payErr != nil {
		return nil, s.payErr
	}
	if s.payResp != nil {
		return s.payResp, nil
	}
	return &bbps.PayResponse{Status: "SUCCESS", TxnID: "VND-1"}, nil
}

func (s *stubAggregator) TransactionStatus(ctx context.Context, txnID string) (*bbps.StatusResponse, error) {
	return &bbps.StatusResponse{Status: "SUCCESS", TxnStatus: "SUCCESS", TxnID: txnID}, nil
}

func (s *stubAggregator) RegisterComplaint(ctx context.Context, req *bbps.ComplaintRequest) (*bbps.ComplaintResponse, error) {
	return &bbps.ComplaintResponse{Status: "SUCCESS", ComplaintID: "CMP-1"}, nil
}
