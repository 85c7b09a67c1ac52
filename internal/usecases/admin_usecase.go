package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/domain/repositories"
	"sevapay.backend/pkg/crypto"
	"sevapay.backend/pkg/jwt"
	"sevapay.backend/pkg/logger"
	"sevapay.backend/pkg/redis"
)

const impersonationExpiry = 30 * time.Minute

// AdminUsecase handles admin authentication, sub-admin management and
// partner impersonation.
type AdminUsecase struct {
	adminRepo    repositories.AdminUserRepository
	partnerRepo  repositories.PartnerRepository
	jwtService   *jwt.JWTService
	sessionStore *redis.SessionStore
}

// NewAdminUsecase creates a new admin usecase
func NewAdminUsecase(
	adminRepo repositories.AdminUserRepository,
	partnerRepo repositories.PartnerRepository,
	jwtService *jwt.JWTService,
	sessionStore *redis.SessionStore,
) *AdminUsecase {
	return &AdminUsecase{
		adminRepo:    adminRepo,
		partnerRepo:  partnerRepo,
		jwtService:   jwtService,
		sessionStore: sessionStore,
	}
}

// LoginResult carries the authenticated admin and its token pair
type LoginResult struct {
	Admin  *entities.AdminUser `json:"admin"`
	Tokens *jwt.TokenPair      `json:"tokens"`
}

// Login authenticates an admin by email and password. The error is
// deliberately identical for a missing account and a wrong password.
func (u *AdminUsecase) Login(ctx context.Context, input *entities.AdminLoginInput) (*LoginResult, error) {
	admin, err := u.adminRepo.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, domainerrors.Unauthorized("Account is disabled")
	}
	if !crypto.CheckPassword(input.Password, admin.PasswordHash) {
		return nil, domainerrors.Unauthorized("Invalid email or password")
	}

	tokens, err := u.jwtService.GenerateTokenPair(admin.ID, admin.Email, string(admin.AdminType), admin.Departments)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	admin.LastLoginAt = null.TimeFrom(time.Now())
	if err := u.adminRepo.Update(ctx, admin); err != nil {
		logger.Warn(ctx, "failed to stamp last login", zap.String("adminId", admin.ID.String()), zap.Error(err))
	}

	logger.Info(ctx, "admin login", zap.String("adminId", admin.ID.String()), zap.String("adminType", string(admin.AdminType)))
	return &LoginResult{Admin: admin, Tokens: tokens}, nil
}

// ChangePassword rotates an admin's own password after verifying the
// current one.
func (u *AdminUsecase) ChangePassword(ctx context.Context, adminID uuid.UUID, input *entities.ChangePasswordInput) error {
	admin, err := u.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !crypto.CheckPassword(input.CurrentPassword, admin.PasswordHash) {
		return domainerrors.Unauthorized("Current password is incorrect")
	}
	hash, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return domainerrors.InternalError(err)
	}
	return u.adminRepo.UpdatePassword(ctx, adminID, hash)
}

// CreateSubAdmin creates a department-scoped sub_admin. Only super_admin
// routes reach this.
func (u *AdminUsecase) CreateSubAdmin(ctx context.Context, input *entities.SubAdminInput) (*entities.AdminUser, error) {
	if input.Password == "" {
		return nil, domainerrors.BadRequest("Password is required")
	}
	if err := validateDepartments(input.Departments); err != nil {
		return nil, err
	}
	if _, err := u.adminRepo.GetByEmail(ctx, strings.ToLower(input.Email)); err == nil {
		return nil, domainerrors.Conflict("An admin with this email already exists")
	} else if err != domainerrors.ErrNotFound {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	admin := &entities.AdminUser{
		Email:        strings.ToLower(input.Email),
		Name:         input.Name,
		PasswordHash: hash,
		AdminType:    entities.AdminTypeSub,
		Departments:  input.Departments,
		IsActive:     true,
	}
	if input.IsActive != nil {
		admin.IsActive = *input.IsActive
	}
	if err := u.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	logger.Info(ctx, "sub-admin created", zap.String("email", admin.Email), zap.Strings("departments", admin.Departments))
	return admin, nil
}

// UpdateSubAdmin updates a sub_admin's profile, departments or active flag
func (u *AdminUsecase) UpdateSubAdmin(ctx context.Context, id uuid.UUID, input *entities.SubAdminInput) (*entities.AdminUser, error) {
	admin, err := u.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin.AdminType != entities.AdminTypeSub {
		return nil, domainerrors.BadRequest("Only sub-admin accounts can be managed here")
	}
	if err := validateDepartments(input.Departments); err != nil {
		return nil, err
	}

	admin.Name = input.Name
	admin.Email = strings.ToLower(input.Email)
	admin.Departments = input.Departments
	if input.IsActive != nil {
		admin.IsActive = *input.IsActive
	}
	if input.Password != "" {
		hash, err := crypto.HashPassword(input.Password)
		if err != nil {
			return nil, domainerrors.InternalError(err)
		}
		admin.PasswordHash = hash
	}

	if err := u.adminRepo.Update(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// DeleteSubAdmin soft-deletes a sub_admin account
func (u *AdminUsecase) DeleteSubAdmin(ctx context.Context, id uuid.UUID) error {
	admin, err := u.adminRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if admin.AdminType != entities.AdminTypeSub {
		return domainerrors.BadRequest("Super admin accounts cannot be deleted")
	}
	return u.adminRepo.SoftDelete(ctx, id)
}

// ListSubAdmins lists every sub_admin account
func (u *AdminUsecase) ListSubAdmins(ctx context.Context) ([]*entities.AdminUser, error) {
	return u.adminRepo.ListSubAdmins(ctx)
}

// ImpersonationResult carries the partner-scoped token and its audit session
type ImpersonationResult struct {
	Token     string                     `json:"token"`
	Session   *redis.ImpersonationSession `json:"session"`
	Partner   *entities.Partner          `json:"partner"`
	ExpiresAt time.Time                  `json:"expiresAt"`
}

// StartImpersonation issues a partner-scoped token for an admin and records
// the session for audit. Only active partners can be impersonated.
func (u *AdminUsecase) StartImpersonation(ctx context.Context, adminID, partnerID uuid.UUID) (*ImpersonationResult, error) {
	partner, err := u.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Status != entities.PartnerStatusActive {
		return nil, domainerrors.NewAppError(400, "Only active partners can be impersonated", domainerrors.ErrPartnerNotActive)
	}

	token, err := u.jwtService.GenerateImpersonationToken(partner.ID, adminID, partner.Email, impersonationExpiry)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	now := time.Now()
	session := &redis.ImpersonationSession{
		SessionID:   uuid.New().String(),
		AdminID:     adminID,
		PartnerID:   partner.ID,
		PartnerType: string(partner.PartnerType),
		StartedAt:   now,
		ExpiresAt:   now.Add(impersonationExpiry),
	}
	if err := u.sessionStore.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Info(ctx, "impersonation started",
		zap.String("adminId", adminID.String()),
		zap.String("partnerId", partner.PartnerID),
		zap.String("sessionId", session.SessionID),
	)
	return &ImpersonationResult{Token: token, Session: session, Partner: partner, ExpiresAt: session.ExpiresAt}, nil
}

// StopImpersonation ends an impersonation session early
func (u *AdminUsecase) StopImpersonation(ctx context.Context, adminID uuid.UUID, sessionID string) error {
	session, err := u.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		return domainerrors.NotFound("Impersonation session not found")
	}
	if session.AdminID != adminID {
		return domainerrors.Forbidden("Session belongs to another admin")
	}
	if err := u.sessionStore.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	logger.Info(ctx, "impersonation stopped",
		zap.String("adminId", adminID.String()), zap.String("sessionId", sessionID))
	return nil
}

// ResetPartnerPassword sets a temporary password on a partner account and
// returns it for out-of-band delivery.
func (u *AdminUsecase) ResetPartnerPassword(ctx context.Context, partnerID uuid.UUID) (string, error) {
	partner, err := u.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		return "", err
	}
	tempPassword, err := crypto.GenerateTempPassword()
	if err != nil {
		return "", domainerrors.InternalError(err)
	}
	hash, err := crypto.HashPassword(tempPassword)
	if err != nil {
		return "", domainerrors.InternalError(err)
	}
	if err := u.partnerRepo.UpdatePassword(ctx, partner.ID, hash); err != nil {
		return "", err
	}
	logger.Info(ctx, "partner password reset", zap.String("partnerId", partner.PartnerID))
	return tempPassword, nil
}

func validateDepartments(departments []string) error {
	if len(departments) == 0 {
		return domainerrors.BadRequest("At least one department is required")
	}
	valid := map[string]bool{
		entities.DepartmentAll:          true,
		entities.DepartmentPartners:     true,
		entities.DepartmentVerification: true,
		entities.DepartmentWallet:       true,
		entities.DepartmentPos:          true,
		entities.DepartmentReports:      true,
	}
	for _, d := range departments {
		if !valid[d] {
			return domainerrors.BadRequest("Unknown department: " + d)
		}
	}
	return nil
}
