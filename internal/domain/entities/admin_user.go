package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// AdminType distinguishes full admins from department-scoped ones
type AdminType string

const (
	AdminTypeSuper AdminType = "super_admin"
	AdminTypeSub   AdminType = "sub_admin"
)

// DepartmentAll is the sentinel that grants a sub_admin every department.
const DepartmentAll = "all"

// Departments used by the authorization gate.
const (
	DepartmentPartners     = "partners"
	DepartmentVerification = "verification"
	DepartmentWallet       = "wallet"
	DepartmentPos          = "pos"
	DepartmentReports      = "reports"
)

// AdminUser represents a dashboard administrator
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	AdminType    AdminType `json:"adminType"`
	// Departments a sub_admin may act in. Ignored for super_admin.
	Departments []string  `json:"departments"`
	IsActive    bool      `json:"isActive"`
	LastLoginAt null.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	DeletedAt   null.Time `json:"-"`
}

// CanAccess reports whether the admin may act in the given department.
// super_admin bypasses all checks; a sub_admin needs the department or the
// "all" sentinel in its list.
func (a *AdminUser) CanAccess(department string) bool {
	if a.AdminType == AdminTypeSuper {
		return true
	}
	for _, d := range a.Departments {
		if d == DepartmentAll || d == department {
			return true
		}
	}
	return false
}

// AdminLoginInput carries login credentials
type AdminLoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordInput carries a password change request
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// SubAdminInput carries sub_admin create/update fields
type SubAdminInput struct {
	Email       string   `json:"email" binding:"required,email"`
	Name        string   `json:"name" binding:"required,min=2,max=255"`
	Password    string   `json:"password,omitempty"`
	Departments []string `json:"departments" binding:"required"`
	IsActive    *bool    `json:"isActive,omitempty"`
}
