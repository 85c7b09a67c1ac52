package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/pkg/crypto"
	"sevapay.backend/pkg/jwt"
	"sevapay.backend/pkg/redis"
)

// 32-byte AES key as 64 hex chars
var testEncryptionKey = strings.Repeat("ab", 32)

type stubAdminRepo struct {
	byID    map[uuid.UUID]*entities.AdminUser
	byEmail map[string]*entities.AdminUser
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{byID: map[uuid.UUID]*entities.AdminUser{}, byEmail: map[string]*entities.AdminUser{}}
}

func (s *stubAdminRepo) add(a *entities.AdminUser) *entities.AdminUser {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.byID[a.ID] = a
	s.byEmail[a.Email] = a
	return a
}

func (s *stubAdminRepo) Create(ctx context.Context, admin *entities.AdminUser) error {
	s.add(admin)
	return nil
}

func (s *stubAdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.AdminUser, error) {
	a, ok := s.byID[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return a, nil
}

func (s *stubAdminRepo) GetByEmail(ctx context.Context, email string) (*entities.AdminUser, error) {
	a, ok := s.byEmail[email]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return a, nil
}

func (s *stubAdminRepo) Update(ctx context.Context, admin *entities.AdminUser) error {
	s.byID[admin.ID] = admin
	return nil
}

func (s *stubAdminRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	a, ok := s.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (s *stubAdminRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	a, ok := s.byID[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, a.Email)
	return nil
}

func (s *stubAdminRepo) ListSubAdmins(ctx context.Context) ([]*entities.AdminUser, error) {
	var out []*entities.AdminUser
	for _, a := range s.byID {
		if a.AdminType == entities.AdminTypeSub {
			out = append(out, a)
		}
	}
	return out, nil
}

func setupAdmin(t *testing.T) (*AdminUsecase, *stubAdminRepo, *stubPartnerRepo) {
	t.Helper()
	setupRedis(t)

	admins := newStubAdminRepo()
	partners := newStubPartnerRepo()
	jwtService := jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)
	sessionStore, err := redis.NewSessionStore(testEncryptionKey)
	require.NoError(t, err)
	return NewAdminUsecase(admins, partners, jwtService, sessionStore), admins, partners
}

func seedSuperAdmin(t *testing.T, admins *stubAdminRepo, password string) *entities.AdminUser {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)
	return admins.add(&entities.AdminUser{
		Email:        "root@sevapay.in",
		Name:         "Root",
		PasswordHash: hash,
		AdminType:    entities.AdminTypeSuper,
		Departments:  []string{entities.DepartmentAll},
		IsActive:     true,
	})
}

func TestAdminLogin_IdenticalErrorForMissingAndWrongPassword(t *testing.T) {
	u, admins, _ := setupAdmin(t)
	seedSuperAdmin(t, admins, "correct-horse-1")
	ctx := context.Background()

	_, missingErr := u.Login(ctx, &entities.AdminLoginInput{Email: "nobody@sevapay.in", Password: "whatever"})
	_, wrongErr := u.Login(ctx, &entities.AdminLoginInput{Email: "root@sevapay.in", Password: "wrong"})

	require.Error(t, missingErr)
	require.Error(t, wrongErr)
	assert.Equal(t, missingErr.Error(), wrongErr.Error())
}

func TestAdminLogin_SuccessIssuesTokens(t *testing.T) {
	u, admins, _ := setupAdmin(t)
	admin := seedSuperAdmin(t, admins, "correct-horse-1")

	result, err := u.Login(context.Background(), &entities.AdminLoginInput{Email: "Root@Sevapay.in", Password: "correct-horse-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.True(t, admin.LastLoginAt.Valid)
}

func TestAdminLogin_DisabledAccount(t *testing.T) {
	u, admins, _ := setupAdmin(t)
	admin := seedSuperAdmin(t, admins, "correct-horse-1")
	admin.IsActive = false

	_, err := u.Login(context.Background(), &entities.AdminLoginInput{Email: "root@sevapay.in", Password: "correct-horse-1"})
	assert.EqualError(t, err, "Account is disabled")
}

func TestSubAdmin_DepartmentValidation(t *testing.T) {
	u, _, _ := setupAdmin(t)
	ctx := context.Background()

	_, err := u.CreateSubAdmin(ctx, &entities.SubAdminInput{
		Email: "ops@sevapay.in", Name: "Ops", Password: "ops-pass-123",
		Departments: []string{"payroll"},
	})
	assert.ErrorContains(t, err, "Unknown department: payroll")

	_, err = u.CreateSubAdmin(ctx, &entities.SubAdminInput{
		Email: "ops@sevapay.in", Name: "Ops", Password: "ops-pass-123",
	})
	assert.ErrorContains(t, err, "At least one department is required")

	sub, err := u.CreateSubAdmin(ctx, &entities.SubAdminInput{
		Email: "Ops@Sevapay.in", Name: "Ops", Password: "ops-pass-123",
		Departments: []string{entities.DepartmentWallet, entities.DepartmentReports},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.AdminTypeSub, sub.AdminType)
	assert.Equal(t, "ops@sevapay.in", sub.Email)
	assert.True(t, sub.IsActive)
}

func TestSubAdmin_SuperAccountsProtected(t *testing.T) {
	u, admins, _ := setupAdmin(t)
	super := seedSuperAdmin(t, admins, "correct-horse-1")

	err := u.DeleteSubAdmin(context.Background(), super.ID)
	assert.ErrorContains(t, err, "cannot be deleted")

	_, err = u.UpdateSubAdmin(context.Background(), super.ID, &entities.SubAdminInput{
		Email: super.Email, Name: super.Name, Departments: []string{entities.DepartmentAll},
	})
	assert.ErrorContains(t, err, "Only sub-admin accounts")
}

func TestImpersonation_RoundTrip(t *testing.T) {
	u, _, partners := setupAdmin(t)
	partner := activePartner(partners, entities.PartnerTypeRetailer, "RET000001")
	adminID := uuid.New()
	ctx := context.Background()

	result, err := u.StartImpersonation(ctx, adminID, partner.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, adminID, result.Session.AdminID)
	assert.Equal(t, partner.ID, result.Session.PartnerID)

	// A different admin cannot stop the session.
	err = u.StopImpersonation(ctx, uuid.New(), result.Session.SessionID)
	assert.ErrorContains(t, err, "belongs to another admin")

	require.NoError(t, u.StopImpersonation(ctx, adminID, result.Session.SessionID))
	err = u.StopImpersonation(ctx, adminID, result.Session.SessionID)
	assert.ErrorContains(t, err, "not found")
}

func TestImpersonation_InactivePartnerRefused(t *testing.T) {
	u, _, partners := setupAdmin(t)
	partner := activePartner(partners, entities.PartnerTypeRetailer, "RET000001")
	partner.Status = entities.PartnerStatusPendingVerification

	_, err := u.StartImpersonation(context.Background(), uuid.New(), partner.ID)
	assert.ErrorIs(t, err, domainerrors.ErrPartnerNotActive)
}

func TestResetPartnerPassword_ReturnsTempPassword(t *testing.T) {
	u, _, partners := setupAdmin(t)
	partner := activePartner(partners, entities.PartnerTypeRetailer, "RET000001")
	oldHash := partner.PasswordHash

	temp, err := u.ResetPartnerPassword(context.Background(), partner.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, temp)
	assert.NotEqual(t, oldHash, partner.PasswordHash)
	assert.True(t, crypto.CheckPassword(temp, partner.PasswordHash))
}
